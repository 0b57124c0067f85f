package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/FBK-Manuel/wearehfg/internal/catalog"
	"github.com/FBK-Manuel/wearehfg/internal/currency"
	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/pkg/httputil"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
)

// CatalogHandler serves the read-only storefront pages: shop listing,
// product reads, search, media and currency rates.
type CatalogHandler struct {
	catalog  *service.CatalogService
	search   *service.SearchDebouncer
	currency *currency.Converter
	logger   *slog.Logger
}

func NewCatalogHandler(svc *service.CatalogService, search *service.SearchDebouncer, conv *currency.Converter, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, search: search, currency: conv, logger: logger}
}

// --- Response DTOs ---

// productView is a listing product with its price rendered in the
// requested currency.
type productView struct {
	domain.Product
	DisplayPrice string `json:"display_price,omitempty"`
}

type shopMeta struct {
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
	HasNext    bool            `json:"has_next"`
	HasPrev    bool            `json:"has_prev"`
	MaxPrice   decimal.Decimal `json:"max_price"`
	Empty      bool            `json:"empty"`
	Fallback   bool            `json:"fallback"`
	Currency   string          `json:"currency,omitempty"`
}

type listingMeta struct {
	Fallback bool   `json:"fallback"`
	Currency string `json:"currency,omitempty"`
}

type facetsResponse struct {
	catalog.Facets
	MaxPrice decimal.Decimal `json:"max_price"`
}

type detailResponse struct {
	domain.ProductDetail
	DisplayPrice string `json:"display_price,omitempty"`
}

type heroVideoResponse struct {
	Video *domain.Video `json:"video"`
}

type ratesResponse struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt *time.Time                 `json:"fetched_at,omitempty"`
}

// --- Handlers ---

// Shop handles GET /api/v1/shop
// Query: category, search, colors, sizes, max_price, sort, page, currency.
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := domain.FilterSpec{
		SearchText: q.Get("search"),
		Category:   q.Get("category"),
		Colors:     listParam(r, "colors"),
		Sizes:      listParam(r, "sizes"),
		Sort:       domain.ParseSortKey(q.Get("sort")),
		Page:       1,
	}
	if spec.Category == "" {
		spec.Category = domain.CategoryAll
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			writeInvalidParam(w, "page must be an integer")
			return
		}
		spec.Page = page
	}
	if v := q.Get("max_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil || price.IsNegative() {
			writeInvalidParam(w, "max_price must be a non-negative number")
			return
		}
		spec.MaxPrice = &price
	}
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	page := h.catalog.Shop(r.Context(), spec)
	httputil.WriteData(w, http.StatusOK, h.views(page.Data, code), shopMeta{
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
		MaxPrice:   page.MaxPrice,
		Empty:      len(page.Data) == 0,
		Fallback:   page.Fallback,
		Currency:   code,
	})
}

// Facets handles GET /api/v1/shop/facets
func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	listing := h.catalog.Products(r.Context())
	httputil.WriteData(w, http.StatusOK, facetsResponse{
		Facets:   catalog.FacetList(),
		MaxPrice: catalog.MaxPrice(listing.Items),
	}, listingMeta{Fallback: listing.Fallback})
}

// Latest handles GET /api/v1/products/latest
func (h *CatalogHandler) Latest(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	listing := h.catalog.Latest(r.Context())
	httputil.WriteData(w, http.StatusOK, h.views(listing.Items, code), listingMeta{Fallback: listing.Fallback, Currency: code})
}

// Deals handles GET /api/v1/products/deals
func (h *CatalogHandler) Deals(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	listing := h.catalog.Deals(r.Context())
	httputil.WriteData(w, http.StatusOK, h.views(listing.Items, code), listingMeta{Fallback: listing.Fallback, Currency: code})
}

// Grid handles GET /api/v1/products/grid/{section}
func (h *CatalogHandler) Grid(w http.ResponseWriter, r *http.Request) {
	section := domain.GridSection(chi.URLParam(r, "section"))
	listing, err := h.catalog.Grid(r.Context(), section)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, listing.Items, listingMeta{Fallback: listing.Fallback})
}

// Detail handles GET /api/v1/products/{id}
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r, "id")
	if !ok {
		return
	}
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}

	detail, fallback := h.catalog.Detail(r.Context(), id)
	resp := detailResponse{ProductDetail: detail}
	if code != "" {
		resp.DisplayPrice = h.currency.Format(detail.Price, code)
	}
	httputil.WriteData(w, http.StatusOK, resp, listingMeta{Fallback: fallback, Currency: code})
}

// Search handles GET /api/v1/search?category=&q=
// Searches of one session are debounced; superseded requests receive the
// result of the last one.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("q")
	if text == "" {
		text = q.Get("search")
	}

	hits, err := h.search.Search(r.Context(), middleware.SessionIDFromContext(r.Context()), q.Get("category"), text)
	if err != nil {
		// The caller went away while the search was pending.
		h.logger.DebugContext(r.Context(), "search abandoned", slog.String("error", err.Error()))
		return
	}
	httputil.WriteData(w, http.StatusOK, hits, nil)
}

// HeroVideo handles GET /api/v1/media/hero-video
func (h *CatalogHandler) HeroVideo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, heroVideoResponse{Video: h.catalog.HeroVideo(r.Context())}, nil)
}

// Rates handles GET /api/v1/currency/rates. ?refresh=true refetches the
// table first; a failed refresh keeps serving the previous one.
func (h *CatalogHandler) Rates(w http.ResponseWriter, r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if err := h.currency.Refresh(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "currency refresh failed", slog.String("error", err.Error()))
		}
	}

	rates, fetchedAt := h.currency.Rates()
	resp := ratesResponse{Base: h.currency.Base(), Rates: rates}
	if !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}
	httputil.WriteData(w, http.StatusOK, resp, nil)
}

func (h *CatalogHandler) views(products []domain.Product, code string) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = productView{Product: p}
		if code == "" {
			continue
		}
		if price, ok := domain.ParsePrice(p.Price); ok {
			out[i].DisplayPrice = h.currency.Format(price, code)
		}
	}
	return out
}
