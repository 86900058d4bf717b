package models

// Favorites merge op actions.
const (
	FavoriteAdd    = "add"
	FavoriteRemove = "remove"
)

// FavoriteOp is a single item-level favorites change in merge mode.
type FavoriteOp struct {
	ProductID int64  `json:"id"`
	Action    string `json:"action"`
}
