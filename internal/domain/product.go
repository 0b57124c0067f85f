package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as the listing pages see it. Price is kept as
// the decimal string the backend sent.
type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Image    string   `json:"image"`
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	Category string   `json:"category,omitempty"`
}

// ParsePrice reads a display price such as "29.99" or "$ 29.99".
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ProductDetail is the full record behind a product page.
type ProductDetail struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	Availability string          `json:"availability"`
	Weight       string          `json:"weight"`
	Shipping     string          `json:"shipping"`
	Sizes        []string        `json:"sizes"`
	Colors       []string        `json:"colors"`
	Images       []string        `json:"images"`
	Tabs         ProductTabs     `json:"tabs"`
}

// ProductTabs feeds the description and information tabs of a product page.
type ProductTabs struct {
	Description []string `json:"description"`
	Information []string `json:"information"`
}

// Teaser is a compact product card used by the home page grids. Price is
// already formatted for display.
type Teaser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
}

// GridSection names one of the home page showcase grids.
type GridSection string

const (
	GridBestSelling GridSection = "bestSelling"
	GridTopRated    GridSection = "topRated"
	GridNewArrival  GridSection = "newArrival"
)

// Valid reports whether s is a known grid.
func (s GridSection) Valid() bool {
	switch s {
	case GridBestSelling, GridTopRated, GridNewArrival:
		return true
	}
	return false
}

// SearchHit is one row of a header search.
type SearchHit struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category,omitempty"`
}

// Video is the home page hero video.
type Video struct {
	Link    string `json:"link"`
	VideoID string `json:"video_id"`
}
