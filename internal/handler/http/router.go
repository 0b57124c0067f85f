package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FBK-Manuel/wearehfg/internal/currency"
	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/pkg/health"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
)

// Services are the storefront use cases the router exposes.
type Services struct {
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Catalog  *service.CatalogService
	Search   *service.SearchDebouncer
	Forms    *service.FormService
	Auth     *service.AuthService
	Checkout *service.CheckoutService
	Currency *currency.Converter
}

// RouterConfig holds the HTTP-facing knobs of the service.
type RouterConfig struct {
	CORSOrigins        []string
	PprofCIDRs         []string
	Session            middleware.SessionConfig
	FormRateLimitRPS   float64
	FormRateLimitBurst int
	// CatalogMaxAge is the Cache-Control max-age of catalog reads, in seconds.
	CatalogMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cartHandler := NewCartHandler(svc.Cart, svc.Currency, logger)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Search, svc.Currency, logger)
	formHandler := NewFormHandler(svc.Forms, logger)
	authHandler := NewAuthHandler(svc.Auth, logger)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, logger)

	formLimit := middleware.RateLimit(cfg.FormRateLimitRPS, cfg.FormRateLimitBurst, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog reads are the same for every shopper. An existing session
		// is bound so signed-in shoppers' backend calls carry their token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalSession(cfg.Session.CookieName))
			if cfg.CatalogMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			}

			r.Get("/shop", catalogHandler.Shop)
			r.Get("/shop/facets", catalogHandler.Facets)
			r.Get("/products/latest", catalogHandler.Latest)
			r.Get("/products/deals", catalogHandler.Deals)
			r.Get("/products/grid/{section}", catalogHandler.Grid)
			r.Get("/products/{id}", catalogHandler.Detail)
			r.Get("/media/hero-video", catalogHandler.HeroVideo)
			r.Get("/currency/rates", catalogHandler.Rates)
		})

		// Everything below is scoped to the shopper's session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session))
			r.Use(middleware.NoStore)

			r.Get("/search", catalogHandler.Search)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
				r.Post("/items/{productId}/increment", cartHandler.IncrementItem)
				r.Post("/items/{productId}/decrement", cartHandler.DecrementItem)
				r.Patch("/items/{productId}/variant", cartHandler.ChangeVariant)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Delete("/", wishlistHandler.ClearWishlist)

				r.Post("/items", wishlistHandler.AddItem)
				r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
				r.Post("/items/{productId}/decrease", wishlistHandler.DecreaseItem)
			})

			r.Post("/checkout", checkoutHandler.Review)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)

				r.Group(func(r chi.Router) {
					r.Use(formLimit)
					r.Post("/login", authHandler.Login)
					r.Post("/register", authHandler.Register)
					r.Post("/forgot-password", authHandler.ForgotPassword)
					r.Post("/change-password", authHandler.ChangePassword)
				})
			})

			r.Route("/forms", func(r chi.Router) {
				r.Use(formLimit)

				r.Post("/contact", formHandler.Contact)
				r.Post("/newsletter", formHandler.Newsletter)
				r.Post("/prayer-request", formHandler.PrayerRequest)
				r.Post("/testimony", formHandler.Testimony)
				r.Post("/evangelism", formHandler.Evangelism)
				r.Post("/salvation", formHandler.Salvation)
			})
		})
	})

	return r
}
