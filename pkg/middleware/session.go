package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/FBK-Manuel/wearehfg/pkg/logger"
)

const (
	// SessionHeader lets non-browser clients pin a session explicitly.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the cookie browsers keep the session id in.
	SessionCookie = "hfg_session"
)

// Session ids become part of storage keys, so only a safe alphabet is accepted.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session resolves the storefront session of the request: the X-Session-ID
// header wins, then the session cookie; a malformed or missing id is replaced
// with a fresh UUID. The id is echoed back in both header and cookie.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = SessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestSessionID(r, cfg.CookieName)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(SessionHeader, id)
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
		})
	}
}

// OptionalSession binds the session the client already holds, if any, without
// issuing one. Shared reads use it so backend calls still carry the
// shopper's credentials.
func OptionalSession(cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = SessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := requestSessionID(r, cookieName); id != "" {
				r = r.WithContext(logger.WithSessionID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestSessionID returns the header or cookie session id, or "" when
// neither holds a valid one.
func requestSessionID(r *http.Request, cookieName string) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(cookieName); err == nil {
			id = c.Value
		}
	}
	if !ValidSessionID(id) {
		return ""
	}
	return id
}

// ValidSessionID reports whether id may be used as a session key.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// SessionIDFromContext returns the id resolved by Session.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}
