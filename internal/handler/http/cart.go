package http

import (
	"log/slog"
	"net/http"

	"github.com/FBK-Manuel/wearehfg/internal/currency"
	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/pkg/httputil"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
	"github.com/FBK-Manuel/wearehfg/pkg/validator"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service  *service.CartService
	currency *currency.Converter
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, conv *currency.Converter, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, currency: conv, logger: logger}
}

// --- Request DTOs ---

// lineQuery identifies a cart line through ?size=&color=.
type lineQuery struct {
	Size  string `json:"size" validate:"required"`
	Color string `json:"color" validate:"required"`
}

// UpdateQuantityRequest is the JSON body of PUT /cart/items/{productId}.
type UpdateQuantityRequest struct {
	Size     string `json:"size" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=100"`
}

// ChangeVariantRequest is the JSON body of PATCH /cart/items/{productId}/variant.
type ChangeVariantRequest struct {
	Size     string `json:"size" validate:"required"`
	Color    string `json:"color" validate:"required"`
	NewSize  string `json:"new_size" validate:"required"`
	NewColor string `json:"new_color" validate:"required"`
}

// cartMeta carries the summary rendered in the shopper's currency when
// ?currency= is given.
type cartMeta struct {
	Currency string `json:"currency"`
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.write(w, r, code, view, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	var req service.AddItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	view, err := h.service.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	h.write(w, r, code, view, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	id, ok := productIDParam(w, r, "productId")
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	key := domain.LineKey{ID: id, Size: req.Size, Color: req.Color}
	view, err := h.service.UpdateQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), key, req.Quantity)
	h.write(w, r, code, view, err)
}

// IncrementItem handles POST /api/v1/cart/items/{productId}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	key, ok := h.lineKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Increment(r.Context(), middleware.SessionIDFromContext(r.Context()), key)
	h.write(w, r, code, view, err)
}

// DecrementItem handles POST /api/v1/cart/items/{productId}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	key, ok := h.lineKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Decrement(r.Context(), middleware.SessionIDFromContext(r.Context()), key)
	h.write(w, r, code, view, err)
}

// ChangeVariant handles PATCH /api/v1/cart/items/{productId}/variant
func (h *CartHandler) ChangeVariant(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	id, ok := productIDParam(w, r, "productId")
	if !ok {
		return
	}

	var req ChangeVariantRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	key := domain.LineKey{ID: id, Size: req.Size, Color: req.Color}
	view, err := h.service.ChangeVariant(r.Context(), middleware.SessionIDFromContext(r.Context()), key, req.NewSize, req.NewColor)
	h.write(w, r, code, view, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}?size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	key, ok := h.lineKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), key)
	h.write(w, r, code, view, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	code, ok := displayCurrency(w, r)
	if !ok {
		return
	}
	view, err := h.service.Clear(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.write(w, r, code, view, err)
}

// --- Helpers ---

func (h *CartHandler) lineKey(w http.ResponseWriter, r *http.Request) (domain.LineKey, bool) {
	id, ok := productIDParam(w, r, "productId")
	if !ok {
		return domain.LineKey{}, false
	}
	q := lineQuery{Size: r.URL.Query().Get("size"), Color: r.URL.Query().Get("color")}
	if err := validator.Validate(q); err != nil {
		httputil.WriteValidationError(w, r, err)
		return domain.LineKey{}, false
	}
	return domain.LineKey{ID: id, Size: q.Size, Color: q.Color}, true
}

// write renders view with the summary in code, which the caller has already
// validated before touching the cart.
func (h *CartHandler) write(w http.ResponseWriter, r *http.Request, code string, view service.CartView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var meta any
	if code != "" {
		meta = cartMeta{
			Currency: code,
			Subtotal: h.currency.Format(view.Summary.Subtotal, code),
			Shipping: h.currency.Format(view.Summary.Shipping, code),
			Total:    h.currency.Format(view.Summary.Total, code),
		}
	}
	httputil.WriteData(w, http.StatusOK, view, meta)
}

// displayCurrency reads ?currency=. An empty value means no conversion; an
// unknown code is answered with 400.
func displayCurrency(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("currency")
	if raw == "" {
		return "", true
	}
	code, err := currency.ParseCode(raw)
	if err != nil {
		httputil.WriteError(w, r, err, nil)
		return "", false
	}
	return code, true
}
