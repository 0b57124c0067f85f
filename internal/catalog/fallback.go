package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// Fallback lists stand in for live catalog data when the backend fails, so
// a product grid is never empty. Each call returns fresh slices.

// FallbackShop is the stand-in for the full catalog.
func FallbackShop() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Luxury Skincare Cream", Price: "29.99", Image: "https://i.pravatar.cc/300?img=1",
			Sizes: []string{"S", "M", "L"}, Colors: AllColors(), Category: "T-Shirt"},
		{ID: 2, Name: "Organic Face Oil", Price: "39.99", Image: "https://i.pravatar.cc/300?img=3",
			Sizes: []string{"S", "M", "L", "XL"}, Colors: AllColors(), Category: "Hoodie"},
		{ID: 3, Name: "Natural Body Lotion", Price: "24.99", Image: "https://i.pravatar.cc/300?img=6",
			Sizes:  []string{"S", "M", "L", "XL", "3XL"},
			Colors: []string{"Yellow", "Green", "Black", "Red", "Pink", "Gray", "Navy", "Orange", "Maroon", "Gold"}, Category: "Accessories"},
		{ID: 4, Name: "Perfume Bottle", Price: "49.99", Image: "https://i.pravatar.cc/300?img=7",
			Sizes:  []string{"M", "L", "XL", "2XL", "3XL"},
			Colors: []string{"Red", "Yellow", "Green", "Black", "White", "Gray", "Navy", "Orange", "Maroon", "Gold"}, Category: "Kid Sets Unisex"},
		{ID: 5, Name: "Makeup Essentials", Price: "59.99", Image: "https://i.pravatar.cc/300?img=8",
			Sizes:  []string{"S", "M"},
			Colors: []string{"Red", "Yellow", "Green", "Black", "White", "Gray", "Navy", "Orange", "Maroon", "Gold"}, Category: "Hoodie"},
	}
}

// FallbackLatest is the stand-in for the latest products slider.
func FallbackLatest() []domain.Product {
	items := []struct {
		id    int64
		name  string
		price string
	}{
		{1, "Luxury Skincare Cream", "29.99"},
		{2, "Organic Face Oil", "39.99"},
		{3, "Natural Body Lotion", "24.99"},
		{4, "Perfume Bottle", "49.99"},
		{5, "Makeup Essentials", "59.99"},
		{6, "Essential Oil Pack", "25.00"},
	}
	out := make([]domain.Product, 0, len(items))
	for i, it := range items {
		out = append(out, domain.Product{
			ID:     it.id,
			Name:   it.name,
			Price:  it.price,
			Image:  "https://i.pravatar.cc/300?img=" + strconv.Itoa(10+i),
			Sizes:  AllSizes(),
			Colors: AllColors(),
		})
	}
	return out
}

// FallbackGrid is the stand-in for one home page grid. Unknown sections get nil.
func FallbackGrid(section domain.GridSection) []domain.Teaser {
	switch section {
	case domain.GridBestSelling:
		return []domain.Teaser{
			{ID: 1, Name: "Luxury Skincare Cream", Price: "$29.99", Image: "https://i.pravatar.cc/100?img=1"},
			{ID: 2, Name: "Organic Face Oil", Price: "$39.99", Image: "https://i.pravatar.cc/100?img=2"},
			{ID: 3, Name: "Natural Body Lotion", Price: "$24.99", Image: "https://i.pravatar.cc/100?img=3"},
		}
	case domain.GridTopRated:
		return []domain.Teaser{
			{ID: 4, Name: "Perfume Bottle", Price: "$49.99", Image: "https://i.pravatar.cc/100?img=4"},
			{ID: 5, Name: "Makeup Essentials", Price: "$59.99", Image: "https://i.pravatar.cc/100?img=5"},
			{ID: 6, Name: "Vitamin Serum", Price: "$45.00", Image: "https://i.pravatar.cc/100?img=6"},
		}
	case domain.GridNewArrival:
		return []domain.Teaser{
			{ID: 7, Name: "Hydrating Mask", Price: "$19.99", Image: "https://i.pravatar.cc/100?img=7"},
			{ID: 8, Name: "Glow Cleanser", Price: "$34.99", Image: "https://i.pravatar.cc/100?img=8"},
			{ID: 9, Name: "Soothing Toner", Price: "$22.00", Image: "https://i.pravatar.cc/100?img=9"},
		}
	}
	return nil
}

// FallbackDetail is the stand-in product page for id.
func FallbackDetail(id int64) domain.ProductDetail {
	return domain.ProductDetail{
		ID:           id,
		Name:         "Stylish Hoodies",
		Price:        decimal.RequireFromString("59.99"),
		Availability: "In Stock",
		Weight:       "0.5kg",
		Shipping:     "Free Shipping",
		Description:  "This hoodie is made from high-quality cotton blend fabric Perfect for casual wear and outdoor activities",
		Sizes:        AllSizes(),
		Colors:       []string{"Red", "Yellow", "Green", "Black", "White", "Pink", "Gray", "Navy", "Orange", "Maroon", "Gold"},
		Images: []string{
			"https://i.pravatar.cc/600?img=8",
			"https://i.pravatar.cc/600?img=7",
			"https://i.pravatar.cc/600?img=9",
			"https://i.pravatar.cc/600?img=10",
		},
		Tabs: domain.ProductTabs{
			Description: []string{
				"This hoodie is made from high-quality cotton blend fabric.",
				"Perfect for casual wear and outdoor activities.",
			},
			Information: []string{
				"Material: 100% Cotton",
				"Care: Machine wash cold",
				"Origin: Made in Italy",
			},
		},
	}
}
