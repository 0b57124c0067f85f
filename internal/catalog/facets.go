package catalog

import "slices"

// Facets are the fixed filter vocabularies offered by the shop sidebar.
type Facets struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	Sizes      []string `json:"sizes"`
}

var (
	categories = []string{"All", "Hoodie", "T-Shirt", "Accessories", "Kid Sets Unisex"}
	colors     = []string{"Yellow", "Green", "Red", "Black", "White", "Pink", "Gray", "Navy", "Orange", "Maroon", "Gold"}
	sizes      = []string{"S", "M", "L", "XL", "2XL", "3XL"}
)

func FacetList() Facets {
	return Facets{
		Categories: slices.Clone(categories),
		Colors:     slices.Clone(colors),
		Sizes:      slices.Clone(sizes),
	}
}

// AllColors is the color list assumed for products the backend sends without one.
func AllColors() []string { return slices.Clone(colors) }

// AllSizes is the size list assumed for products the backend sends without one.
func AllSizes() []string { return slices.Clone(sizes) }
