package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/pkg/httputil"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
	"github.com/FBK-Manuel/wearehfg/pkg/validator"
)

// FormHandler relays the community forms to the backend once they pass
// validation. Invalid forms never leave this service.
type FormHandler struct {
	service *service.FormService
	logger  *slog.Logger
}

func NewFormHandler(svc *service.FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{service: svc, logger: logger}
}

// submitForm decodes and validates a form of type F, hands it to submit and
// renders the outcome.
func submitForm[F any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, submit func(context.Context, string, F) (domain.SubmitResult, error)) {
	var form F
	if err := validator.DecodeAndValidate(r, &form); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	res, err := submit(r.Context(), middleware.SessionIDFromContext(r.Context()), form)
	if err != nil {
		httputil.WriteError(w, r, err, logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res, nil)
}

// Contact handles POST /api/v1/forms/contact
func (h *FormHandler) Contact(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.Contact)
}

// Newsletter handles POST /api/v1/forms/newsletter
func (h *FormHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.Newsletter)
}

// PrayerRequest handles POST /api/v1/forms/prayer-request
func (h *FormHandler) PrayerRequest(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.PrayerRequest)
}

// Testimony handles POST /api/v1/forms/testimony
func (h *FormHandler) Testimony(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.Testimony)
}

// Evangelism handles POST /api/v1/forms/evangelism
func (h *FormHandler) Evangelism(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.Evangelism)
}

// Salvation handles POST /api/v1/forms/salvation
func (h *FormHandler) Salvation(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, h.service.Salvation)
}

// ============================================================================
// Auth
// ============================================================================

type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// identityView is the signed-in user as the browser sees it. The backend
// token stays server side.
type identityView struct {
	Message string `json:"message,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	UserID  string `json:"user_id"`
}

func newIdentityView(id domain.Identity, message string) identityView {
	return identityView{Message: message, Name: id.Name, Email: id.Email, UserID: id.UserID}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form domain.LoginForm
	if err := validator.DecodeAndValidate(r, &form); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), middleware.SessionIDFromContext(r.Context()), form)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newIdentityView(res.Identity, res.Message), nil)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, func(ctx context.Context, _ string, f domain.RegistrationForm) (domain.SubmitResult, error) {
		return h.service.Register(ctx, f)
	})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, func(ctx context.Context, _ string, f domain.ForgotPasswordForm) (domain.SubmitResult, error) {
		return h.service.ForgotPassword(ctx, f)
	})
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	submitForm(w, r, h.logger, func(ctx context.Context, _ string, f domain.ChangePasswordForm) (domain.SubmitResult, error) {
		return h.service.ChangePassword(ctx, f)
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Me(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newIdentityView(id, ""), nil)
}

// Logout handles POST /api/v1/auth/logout. Cart and wishlist survive it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Checkout
// ============================================================================

type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// Review handles POST /api/v1/checkout
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	var form domain.CheckoutForm
	if err := validator.DecodeAndValidate(r, &form); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	summary, err := h.service.Review(r.Context(), middleware.SessionIDFromContext(r.Context()), form)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary, nil)
}
