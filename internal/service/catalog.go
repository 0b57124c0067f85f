package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/catalog"
	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/gateway"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
	"github.com/FBK-Manuel/wearehfg/pkg/pagination"
)

// Page sizes the storefront asks the backend for.
const (
	LatestLimit = 10
	DealsLimit  = 8
	GridLimit   = 3
)

// DefaultCatalogTTL is how long a fetched full catalog is reused.
const DefaultCatalogTTL = 5 * time.Minute

var fallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "catalog",
		Name:      "fallbacks_total",
		Help:      "Catalog reads answered from static fallback data.",
	},
	[]string{"endpoint", "kind"},
)

// CatalogGateway is the backend surface the catalog reads need.
type CatalogGateway interface {
	LatestProducts(ctx context.Context, limit, offset int) gateway.Result[[]domain.Product]
	TodayDeals(ctx context.Context, limit, offset int) gateway.Result[[]domain.Product]
	Products(ctx context.Context) gateway.Result[[]domain.Product]
	Grid(ctx context.Context, section domain.GridSection, limit int) gateway.Result[[]domain.Teaser]
	ProductDetail(ctx context.Context, id int64) gateway.Result[domain.ProductDetail]
	Search(ctx context.Context, category, text string) gateway.Result[[]domain.SearchHit]
	HeroVideo(ctx context.Context) gateway.Result[domain.Video]
}

// Listing is a catalog read together with where it came from.
type Listing[T any] struct {
	Items    []T  `json:"items"`
	Fallback bool `json:"fallback"`
}

// ShopPage is one filtered page of the shop plus the price ceiling the
// sidebar slider starts from.
type ShopPage struct {
	pagination.Result[domain.Product]
	MaxPrice decimal.Decimal `json:"max_price"`
	Fallback bool            `json:"fallback"`
}

// CatalogService serves catalog reads. A failed backend read never reaches
// the caller: it is logged and replaced with static fallback data.
type CatalogService struct {
	gw     CatalogGateway
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	cached   []domain.Product
	cachedAt time.Time
}

func NewCatalogService(gw CatalogGateway, ttl time.Duration, logger *slog.Logger) *CatalogService {
	return &CatalogService{gw: gw, ttl: ttl, logger: logger, now: time.Now}
}

func (s *CatalogService) fallback(ctx context.Context, endpoint string, kind gateway.Kind, err error) {
	fallbacksTotal.WithLabelValues(endpoint, kind.String()).Inc()
	attrs := []any{
		slog.String("endpoint", endpoint),
		slog.String("kind", kind.String()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.WarnContext(ctx, "catalog read failed, serving fallback", attrs...)
}

func (s *CatalogService) Latest(ctx context.Context) Listing[domain.Product] {
	res := s.gw.LatestProducts(ctx, LatestLimit, 0)
	if !res.OK() {
		s.fallback(ctx, "latest_products", res.Kind(), res.Err())
		return Listing[domain.Product]{Items: catalog.FallbackLatest(), Fallback: true}
	}
	return Listing[domain.Product]{Items: res.Value()}
}

func (s *CatalogService) Deals(ctx context.Context) Listing[domain.Product] {
	res := s.gw.TodayDeals(ctx, DealsLimit, 0)
	if !res.OK() {
		s.fallback(ctx, "today_deals", res.Kind(), res.Err())
		return Listing[domain.Product]{Items: catalog.FallbackShop(), Fallback: true}
	}
	return Listing[domain.Product]{Items: res.Value()}
}

// Grid reads a home page showcase. Unknown sections are rejected before any
// backend call.
func (s *CatalogService) Grid(ctx context.Context, section domain.GridSection) (Listing[domain.Teaser], error) {
	if !section.Valid() {
		return Listing[domain.Teaser]{}, apperrors.InvalidInput("unknown grid section " + string(section))
	}
	res := s.gw.Grid(ctx, section, GridLimit)
	if !res.OK() {
		s.fallback(ctx, "product_grid", res.Kind(), res.Err())
		return Listing[domain.Teaser]{Items: catalog.FallbackGrid(section), Fallback: true}, nil
	}
	return Listing[domain.Teaser]{Items: res.Value()}, nil
}

// Products returns the full catalog, reusing a fetched copy for the cache
// TTL. Fallback data is never cached, so the next read retries the backend.
func (s *CatalogService) Products(ctx context.Context) Listing[domain.Product] {
	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.cachedAt) < s.ttl {
		items := slices.Clone(s.cached)
		s.mu.Unlock()
		return Listing[domain.Product]{Items: items}
	}
	s.mu.Unlock()

	res := s.gw.Products(ctx)
	if !res.OK() {
		s.fallback(ctx, "products", res.Kind(), res.Err())
		return Listing[domain.Product]{Items: catalog.FallbackShop(), Fallback: true}
	}

	items := res.Value()
	if s.ttl > 0 {
		s.mu.Lock()
		s.cached = slices.Clone(items)
		s.cachedAt = s.now()
		s.mu.Unlock()
	}
	return Listing[domain.Product]{Items: items}
}

// Shop applies the filter pipeline to the catalog. A nil MaxPrice leaves the
// listing fully open; MaxPrice on the page is the catalog's highest price.
func (s *CatalogService) Shop(ctx context.Context, spec domain.FilterSpec) ShopPage {
	listing := s.Products(ctx)
	ceiling := catalog.MaxPrice(listing.Items)
	return ShopPage{
		Result:   catalog.Filter(listing.Items, spec),
		MaxPrice: ceiling,
		Fallback: listing.Fallback,
	}
}

func (s *CatalogService) Detail(ctx context.Context, id int64) (domain.ProductDetail, bool) {
	res := s.gw.ProductDetail(ctx, id)
	if !res.OK() {
		s.fallback(ctx, "product_detail", res.Kind(), res.Err())
		return catalog.FallbackDetail(id), true
	}
	return res.Value(), false
}

// Search never fails; a failed search is an empty result.
func (s *CatalogService) Search(ctx context.Context, category, text string) []domain.SearchHit {
	res := s.gw.Search(ctx, category, text)
	if !res.OK() {
		s.fallback(ctx, "search", res.Kind(), res.Err())
		return []domain.SearchHit{}
	}
	return res.Value()
}

// HeroVideo returns nil when no video can be shown.
func (s *CatalogService) HeroVideo(ctx context.Context) *domain.Video {
	res := s.gw.HeroVideo(ctx)
	if !res.OK() {
		s.fallback(ctx, "hero_video", res.Kind(), res.Err())
		return nil
	}
	v := res.Value()
	return &v
}

// Invalidate drops the cached catalog.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
