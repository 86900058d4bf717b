package models

import "time"

// Cart snapshot merge modes.
const (
	CartModeMerge   = "merge"
	CartModeReplace = "replace"
)

// CartLine is a single position in a cart: a bookable product plus
// excursion metadata for date-bound products.
type CartLine struct {
	ProductID    int64     `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Variation    string    `json:"variation,omitempty"`
	Participants int       `json:"participants,omitempty"`
	StartDate    time.Time `json:"start_date,omitempty"`
	EndDate      time.Time `json:"end_date,omitempty"`
	Price        float64   `json:"price"`
}

// Cart is the live server-side cart for a session.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Recalculate recomputes the cart total from its lines.
func (c *Cart) Recalculate() {
	total := 0.0
	for _, line := range c.Lines {
		total += line.Price * float64(line.Quantity)
	}
	c.Total = total
}
