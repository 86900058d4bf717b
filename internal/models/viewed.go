package models

import "time"

// ViewedHistoryLimit caps the per-user viewed-excursions history.
const ViewedHistoryLimit = 50

// ViewedExcursion is one entry of a user's browsing history.
type ViewedExcursion struct {
	ProductID int64     `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}
