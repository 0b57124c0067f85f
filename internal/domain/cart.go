package domain

import "github.com/shopspring/decimal"

// CartLineItem is one row of a session cart. Its identity is (ID, SelectedSize, SelectedColor).
type CartLineItem struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image"`
	Quantity        int             `json:"quantity"`
	SelectedSize    string          `json:"selected_size"`
	SelectedColor   string          `json:"selected_color"`
	AvailableSizes  []string        `json:"available_sizes"`
	AvailableColors []string        `json:"available_colors"`
}

// LineKey identifies a cart line.
type LineKey struct {
	ID    int64
	Size  string
	Color string
}

// Key returns the identity of the line.
func (i CartLineItem) Key() LineKey {
	return LineKey{ID: i.ID, Size: i.SelectedSize, Color: i.SelectedColor}
}

// LineTotal is price times quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FindLine returns the index of the line matching key, or -1.
func FindLine(items []CartLineItem, key LineKey) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

// CartSummary is the priced view of a cart.
type CartSummary struct {
	Lines     int             `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

// FlatShipping is charged once on any non-empty cart.
var FlatShipping = decimal.NewFromInt(10)

// Summarize prices items. An empty cart ships for free.
func Summarize(items []CartLineItem) CartSummary {
	s := CartSummary{
		Lines:    len(items),
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
	}
	for _, it := range items {
		s.ItemCount += it.Quantity
		s.Subtotal = s.Subtotal.Add(it.LineTotal())
	}
	if len(items) > 0 {
		s.Shipping = FlatShipping
	}
	s.Total = s.Subtotal.Add(s.Shipping)
	return s
}
