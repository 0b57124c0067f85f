package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
	"github.com/FBK-Manuel/wearehfg/internal/gateway"
	"github.com/FBK-Manuel/wearehfg/internal/store"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
	"github.com/FBK-Manuel/wearehfg/pkg/logger"
)

// AuthGateway is the backend surface of the account flows.
type AuthGateway interface {
	Login(ctx context.Context, form domain.LoginForm) gateway.Result[domain.LoginResult]
	Register(ctx context.Context, form domain.RegistrationForm) gateway.Result[domain.SubmitResult]
	ForgotPassword(ctx context.Context, form domain.ForgotPasswordForm) gateway.Result[domain.SubmitResult]
	ChangePassword(ctx context.Context, form domain.ChangePasswordForm) gateway.Result[domain.SubmitResult]
}

// AuthService keeps the signed-in identity of each session under
// auth:<session> and hands its token to the authenticated backend client.
type AuthService struct {
	gw      AuthGateway
	storage store.Storage
	logger  *slog.Logger
}

func NewAuthService(gw AuthGateway, storage store.Storage, logger *slog.Logger) *AuthService {
	return &AuthService{gw: gw, storage: storage, logger: logger}
}

// SetGateway breaks the construction cycle between the service, which is
// the gateway's token source, and the gateway itself.
func (s *AuthService) SetGateway(gw AuthGateway) {
	s.gw = gw
}

// Login signs in and stores the identity for the session.
func (s *AuthService) Login(ctx context.Context, sessionID string, form domain.LoginForm) (domain.LoginResult, error) {
	res := s.gw.Login(ctx, form)
	switch res.Kind() {
	case gateway.KindOK:
	case gateway.KindAppError:
		return domain.LoginResult{}, apperrors.Unauthorized(res.Message())
	default:
		s.logger.WarnContext(ctx, "login failed", slog.String("error", res.Err().Error()))
		return domain.LoginResult{}, apperrors.Upstream(res.Message(), res.Err())
	}

	result := res.Value()
	raw, err := json.Marshal(result.Identity)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("encode identity: %w", err)
	}
	if err := s.storage.Save(ctx, store.AuthKey(sessionID), raw); err != nil {
		return domain.LoginResult{}, fmt.Errorf("save identity: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed in",
		slog.String("session_id", sessionID),
		slog.String("user_id", result.Identity.UserID),
	)
	return result, nil
}

func (s *AuthService) Register(ctx context.Context, form domain.RegistrationForm) (domain.SubmitResult, error) {
	return submission(ctx, s.logger, "registration", s.gw.Register(ctx, form))
}

func (s *AuthService) ForgotPassword(ctx context.Context, form domain.ForgotPasswordForm) (domain.SubmitResult, error) {
	return submission(ctx, s.logger, "forgot_password", s.gw.ForgotPassword(ctx, form))
}

func (s *AuthService) ChangePassword(ctx context.Context, form domain.ChangePasswordForm) (domain.SubmitResult, error) {
	return submission(ctx, s.logger, "change_password", s.gw.ChangePassword(ctx, form))
}

// Me returns the stored identity, or an Unauthorized error when the session
// is not signed in.
func (s *AuthService) Me(ctx context.Context, sessionID string) (domain.Identity, error) {
	raw, err := s.storage.Load(ctx, store.AuthKey(sessionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Identity{}, apperrors.Unauthorized("not signed in")
		}
		return domain.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.Token == "" {
		s.logger.WarnContext(ctx, "discarding unreadable identity", slog.String("session_id", sessionID))
		return domain.Identity{}, apperrors.Unauthorized("not signed in")
	}
	return id, nil
}

// Logout forgets the identity. Cart and wishlist stay with the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.storage.Delete(ctx, store.AuthKey(sessionID)); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete identity: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed out", slog.String("session_id", sessionID))
	return nil
}

// Token implements gateway.TokenSource for the session bound to ctx.
func (s *AuthService) Token(ctx context.Context) string {
	sessionID := logger.SessionIDFromContext(ctx)
	if sessionID == "" {
		return ""
	}
	id, err := s.Me(ctx, sessionID)
	if err != nil {
		return ""
	}
	return id.Token
}

var _ gateway.TokenSource = (*AuthService)(nil)
