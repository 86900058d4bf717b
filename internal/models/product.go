package models

import "time"

// Product is a bookable catalog entry (excursion, tour, addon).
// The catalog is loaded from configuration at startup, like a price list.
type Product struct {
	ID          int64     `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Capacity    int64     `yaml:"capacity" json:"capacity"`
	Price       float64   `yaml:"price" json:"price"`
	SortOrder   int64     `yaml:"sort_order" json:"sort_order"`
	IsActive    bool      `yaml:"is_active" json:"is_active"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
}
