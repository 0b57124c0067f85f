package domain

import "github.com/shopspring/decimal"

// WishlistItem is a saved product. Size and color are not tracked, so the id alone is the identity.
type WishlistItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// FindWish returns the index of the entry with id, or -1.
func FindWish(items []WishlistItem, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
