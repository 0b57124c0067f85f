// Package catalog derives shop listings from a fetched product list.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/pkg/pagination"
)

// PageSize is the number of products on one shop page.
const PageSize = 9

// DefaultMaxPrice is the price ceiling used when no product has a usable price.
var DefaultMaxPrice = decimal.NewFromInt(100)

// Filter applies spec to products: category, name search, colors, sizes and
// price ceiling (when set), then sort, then the page slice. It never mutates products
// and an empty result is a normal outcome.
func Filter(products []domain.Product, spec domain.FilterSpec) pagination.Result[domain.Product] {
	type priced struct {
		p     domain.Product
		price decimal.Decimal
	}

	search := strings.ToLower(spec.SearchText)
	hasSearch := strings.TrimSpace(spec.SearchText) != ""
	colors := normalize(spec.Colors, true)
	sizes := normalize(spec.Sizes, false)

	kept := make([]priced, 0, len(products))
	for _, p := range products {
		if spec.Category != "" && spec.Category != domain.CategoryAll &&
			!strings.EqualFold(p.Category, spec.Category) {
			continue
		}
		if hasSearch && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if len(colors) > 0 && !intersects(normalize(p.Colors, true), colors) {
			continue
		}
		if len(sizes) > 0 && !intersects(normalize(p.Sizes, false), sizes) {
			continue
		}
		price, ok := domain.ParsePrice(p.Price)
		if !ok || (spec.MaxPrice != nil && price.GreaterThan(*spec.MaxPrice)) {
			continue
		}
		kept = append(kept, priced{p: p, price: price})
	}

	switch spec.Sort {
	case domain.SortPriceAsc:
		slices.SortStableFunc(kept, func(a, b priced) int { return a.price.Cmp(b.price) })
	case domain.SortPriceDesc:
		slices.SortStableFunc(kept, func(a, b priced) int { return b.price.Cmp(a.price) })
	case domain.SortNameAsc, domain.SortNameDesc:
		// Collators keep per-call buffers, so each sort gets its own.
		c := collate.New(language.English)
		sign := 1
		if spec.Sort == domain.SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(kept, func(a, b priced) int { return sign * c.CompareString(a.p.Name, b.p.Name) })
	}

	out := make([]domain.Product, len(kept))
	for i, k := range kept {
		out[i] = k.p
	}
	return pagination.Paginate(out, pagination.New(spec.Page, PageSize))
}

// MaxPrice is the highest parseable price in products, the ceiling a fresh
// listing opens with.
func MaxPrice(products []domain.Product) decimal.Decimal {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, p := range products {
		price, ok := domain.ParsePrice(p.Price)
		if !ok {
			continue
		}
		if !found || price.GreaterThan(best) {
			best, found = price, true
		}
	}
	if !found {
		return DefaultMaxPrice
	}
	return best
}

// normalize lowercases values; colors are also trimmed.
func normalize(values []string, trim bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trim {
			v = strings.TrimSpace(v)
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

func intersects(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
