package models

import "time"

// Reservation is a booking draft created from an offline submission.
// OfflineID is assigned by the client before connectivity was available
// and keys idempotent replay: the same submission never produces two rows.
type Reservation struct {
	ID            int64     `json:"id"`
	OfflineID     string    `json:"offline_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Participants  int       `json:"participants"`
	Extras        []string  `json:"extras,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	Comment       string    `json:"comment,omitempty"`
	Origin        string    `json:"origin"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
