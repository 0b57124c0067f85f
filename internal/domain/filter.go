package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey orders a product listing.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// ParseSortKey maps unknown or empty input to SortDefault.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return k
	default:
		return SortDefault
	}
}

// CategoryAll disables category filtering.
const CategoryAll = "All"

// FilterSpec is the set of criteria a shop listing is derived from.
type FilterSpec struct {
	SearchText string
	Category   string
	Colors     []string
	Sizes      []string
	MaxPrice   *decimal.Decimal // nil means no ceiling
	Sort       SortKey
	Page       int
}
