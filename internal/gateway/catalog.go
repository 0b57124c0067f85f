package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/catalog"
	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

// AllCategories is the search dropdown value meaning "no category filter".
const AllCategories = "All Categories"

var errNotList = errors.New("message is not a list")

// wireProduct is one catalog row as the backend sends it.
type wireProduct struct {
	ID             flexInt    `json:"id"`
	Title          string     `json:"title"`
	Price          flexString `json:"price"`
	Image          string     `json:"image"`
	Sizes          flexList   `json:"sizes"`
	Colors         flexList   `json:"colors"`
	Category       string     `json:"category"`
	FilterCategory string     `json:"filter_category"`
}

func (w wireProduct) product() domain.Product {
	p := domain.Product{
		ID:     int64(w.ID),
		Name:   w.Title,
		Price:  string(w.Price),
		Image:  w.Image,
		Sizes:  []string(w.Sizes),
		Colors: []string(w.Colors),
	}
	if p.Price == "" {
		p.Price = "0"
	}
	if w.Sizes == nil {
		p.Sizes = catalog.AllSizes()
	}
	if w.Colors == nil {
		p.Colors = catalog.AllColors()
	}
	switch {
	case w.FilterCategory != "":
		p.Category = w.FilterCategory
	case w.Category != "":
		p.Category = w.Category
	default:
		p.Category = "Uncategorized"
	}
	return p
}

// flexList is a string list that reads as nil when the backend sends
// anything other than an array.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s flexString
		if err := s.UnmarshalJSON(r); err != nil {
			continue
		}
		out = append(out, string(s))
	}
	*l = out
	return nil
}

// rawList reads a list message. A message that is not a list yields an
// empty slice, matching how the storefront treats an unexpected payload.
func rawList(env envelope) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(env.Message, &items); err != nil {
		return nil
	}
	return items
}

func decodeProducts(endpoint string, env envelope) ([]domain.Product, error) {
	raw := rawList(env)
	out := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		var w wireProduct
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, &TransportError{Endpoint: endpoint, Err: err}
		}
		out = append(out, w.product())
	}
	return out, nil
}

func paging(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// LatestProducts reads the newest products.
func (g *Gateway) LatestProducts(ctx context.Context, limit, offset int) Result[[]domain.Product] {
	const endpoint = "latest_products"
	env, err := g.Authenticated.get(ctx, policyQuery, endpoint, "/latestProducts.php", paging(limit, offset))
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	items, err := decodeProducts(endpoint, env)
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	return OK(items)
}

// TodayDeals reads the deal list. It is retried once.
func (g *Gateway) TodayDeals(ctx context.Context, limit, offset int) Result[[]domain.Product] {
	const endpoint = "today_deals"
	env, err := g.Authenticated.get(ctx, policyCatalog, endpoint, "/todayDealProducts.php", paging(limit, offset))
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	items, err := decodeProducts(endpoint, env)
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	return OK(items)
}

// Products reads the full catalog. It is retried once.
func (g *Gateway) Products(ctx context.Context) Result[[]domain.Product] {
	const endpoint = "products"
	env, err := g.Authenticated.get(ctx, policyCatalog, endpoint, "/products.php", nil)
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	items, err := decodeProducts(endpoint, env)
	if err != nil {
		return Fail[[]domain.Product](err)
	}
	return OK(items)
}

// Grid reads one home page showcase. It is never retried, and a reply that
// is not an explicit success with a list counts as a failure.
func (g *Gateway) Grid(ctx context.Context, section domain.GridSection, limit int) Result[[]domain.Teaser] {
	const endpoint = "product_grid"
	q := url.Values{}
	q.Set("section", string(section))
	q.Set("limit", strconv.Itoa(limit))
	env, err := g.Authenticated.get(ctx, policyOnce, endpoint, "/productGrid.php", q)
	if err != nil {
		return Fail[[]domain.Teaser](err)
	}
	if env.Success == nil || !*env.Success {
		return Fail[[]domain.Teaser](&TransportError{Endpoint: endpoint, Err: errors.New("reply is not marked successful")})
	}
	var rows []wireProduct
	if err := json.Unmarshal(env.Message, &rows); err != nil {
		return Fail[[]domain.Teaser](&TransportError{Endpoint: endpoint, Err: errNotList})
	}
	out := make([]domain.Teaser, 0, len(rows))
	for _, w := range rows {
		out = append(out, domain.Teaser{
			ID:    int64(w.ID),
			Name:  w.Title,
			Price: "$" + string(w.Price),
			Image: w.Image,
		})
	}
	return OK(out)
}

type wireDetail struct {
	ProductID          flexInt    `json:"product_id"`
	ProductName        string     `json:"product_name"`
	ProductPrice       flexString `json:"product_price"`
	ProductDescription string     `json:"product_description"`
	Availability       string     `json:"availability"`
	Weights            flexList   `json:"weights"`
	Shipping           string     `json:"shipping"`
	Sizes              flexList   `json:"sizes"`
	Colors             flexList   `json:"colors"`
	ProductImages      flexList   `json:"product_images"`
	ProductInformation string     `json:"product_information"`
}

func (w wireDetail) detail() domain.ProductDetail {
	d := domain.ProductDetail{
		ID:           int64(w.ProductID),
		Name:         w.ProductName,
		Description:  w.ProductDescription,
		Availability: w.Availability,
		Weight:       "N/A",
		Shipping:     w.Shipping,
		Sizes:        nonNil(w.Sizes),
		Colors:       nonNil(w.Colors),
		Images:       nonNil(w.ProductImages),
		Tabs: domain.ProductTabs{
			Description: []string{"No description available"},
			Information: []string{"No info available"},
		},
	}
	if price, ok := domain.ParsePrice(string(w.ProductPrice)); ok {
		d.Price = price
	} else {
		d.Price = decimal.Zero
	}
	if len(w.Weights) > 0 {
		d.Weight = w.Weights[0]
	}
	if d.Shipping == "" {
		d.Shipping = "free shipping"
	}
	if w.ProductDescription != "" {
		d.Tabs.Description = []string{w.ProductDescription}
	}
	if w.ProductInformation != "" {
		d.Tabs.Information = []string{w.ProductInformation}
	}
	return d
}

func nonNil(l flexList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// ProductDetail reads one product page. The backend wraps the record in a
// one-element list; an empty list is a NotFound-style AppError.
func (g *Gateway) ProductDetail(ctx context.Context, id int64) Result[domain.ProductDetail] {
	const endpoint = "product_detail"
	env, err := g.Authenticated.get(ctx, policyQuery, endpoint, "/products.php/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return Fail[domain.ProductDetail](err)
	}
	var rows []wireDetail
	if err := json.Unmarshal(env.Message, &rows); err != nil {
		return Fail[domain.ProductDetail](&TransportError{Endpoint: endpoint, Err: errNotList})
	}
	if len(rows) == 0 {
		return Fail[domain.ProductDetail](&AppError{Endpoint: endpoint, Message: "Product not found"})
	}
	return OK(rows[0].detail())
}

type wireHit struct {
	ID       flexInt    `json:"id"`
	Title    string     `json:"title"`
	Price    flexString `json:"price"`
	Image    string     `json:"image"`
	Category string     `json:"category"`
}

// Search queries the backend search. Text is trimmed; "All Categories" sends
// no category; nothing is sent when neither narrows the search.
func (g *Gateway) Search(ctx context.Context, category, text string) Result[[]domain.SearchHit] {
	const endpoint = "search"
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategories
	}
	if text == "" && category == AllCategories {
		return OK([]domain.SearchHit{})
	}
	q := url.Values{}
	if category != AllCategories {
		q.Set("category", category)
	}
	if text != "" {
		q.Set("search", text)
	}
	env, err := g.Authenticated.get(ctx, policyQuery, endpoint, "/search.php", q)
	if err != nil {
		return Fail[[]domain.SearchHit](err)
	}
	raw := rawList(env)
	out := make([]domain.SearchHit, 0, len(raw))
	for _, r := range raw {
		var w wireHit
		if err := json.Unmarshal(r, &w); err != nil {
			return Fail[[]domain.SearchHit](&TransportError{Endpoint: endpoint, Err: err})
		}
		out = append(out, domain.SearchHit{
			ID:       int64(w.ID),
			Name:     w.Title,
			Price:    string(w.Price),
			Image:    w.Image,
			Category: w.Category,
		})
	}
	return OK(out)
}
