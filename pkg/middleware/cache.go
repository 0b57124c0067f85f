package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks GET responses as cacheable for maxAge seconds: public
// for anonymous requests, private once a session is bound to the request.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	public := fmt.Sprintf("public, max-age=%d", maxAge)
	private := fmt.Sprintf("private, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if SessionIDFromContext(r.Context()) != "" {
					w.Header().Set("Cache-Control", private)
				} else {
					w.Header().Set("Cache-Control", public)
				}
				w.Header().Add("Vary", SessionHeader)
				w.Header().Add("Vary", "Cookie")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore keeps session-specific responses (cart, wishlist, auth) out of shared caches.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
