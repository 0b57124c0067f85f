package http

import (
	"log/slog"
	"net/http"

	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/pkg/httputil"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
	"github.com/FBK-Manuel/wearehfg/pkg/validator"
)

type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.write(w, r, view, err)
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddWishInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	view, err := h.service.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	h.write(w, r, view, err)
}

// DecreaseItem handles POST /api/v1/wishlist/items/{productId}/decrease
func (h *WishlistHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r, "productId")
	if !ok {
		return
	}
	view, err := h.service.Decrease(r.Context(), middleware.SessionIDFromContext(r.Context()), id)
	h.write(w, r, view, err)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r, "productId")
	if !ok {
		return
	}
	view, err := h.service.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), id)
	h.write(w, r, view, err)
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Clear(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.write(w, r, view, err)
}

func (h *WishlistHandler) write(w http.ResponseWriter, r *http.Request, view service.WishlistView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view, nil)
}
