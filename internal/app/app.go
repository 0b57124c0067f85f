package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/FBK-Manuel/wearehfg/internal/config"
	"github.com/FBK-Manuel/wearehfg/internal/currency"
	"github.com/FBK-Manuel/wearehfg/internal/event"
	"github.com/FBK-Manuel/wearehfg/internal/gateway"
	handler "github.com/FBK-Manuel/wearehfg/internal/handler/http"
	"github.com/FBK-Manuel/wearehfg/internal/repository/memory"
	pgrepo "github.com/FBK-Manuel/wearehfg/internal/repository/postgres"
	redisrepo "github.com/FBK-Manuel/wearehfg/internal/repository/redis"
	"github.com/FBK-Manuel/wearehfg/internal/service"
	"github.com/FBK-Manuel/wearehfg/internal/store"
	"github.com/FBK-Manuel/wearehfg/pkg/database"
	"github.com/FBK-Manuel/wearehfg/pkg/health"
	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
	pkgkafka "github.com/FBK-Manuel/wearehfg/pkg/kafka"
	"github.com/FBK-Manuel/wearehfg/pkg/middleware"
	"github.com/FBK-Manuel/wearehfg/pkg/tracing"
)

// stateStorage is a session storage backend that can report its health.
type stateStorage interface {
	store.Storage
	Ping(ctx context.Context) error
}

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	pool       *pgxpool.Pool
	pgState    *pgrepo.StateRepository
	producer   *pkgkafka.Producer
	converter  *currency.Converter
	shutdownTr tracing.ShutdownFunc
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdownTr, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTr = shutdownTr

	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	// Kafka is optional; without brokers events are dropped.
	var publisher event.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	// The gateway reads the bearer token through the auth service, which in
	// turn needs the gateway to sign in.
	authService := service.NewAuthService(nil, storage, logger)
	gwCfg := gateway.DefaultConfig(cfg.BackendBaseURL)
	gwCfg.HTTP.Timeout = cfg.GatewayTimeout
	gwCfg.QueryRetries = cfg.GatewayQueryRetries
	gwCfg.BreakerEnabled = cfg.GatewayBreakerEnabled
	gw := gateway.New(gwCfg, authService, logger)
	authService.SetGateway(gw)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.GatewayTimeout
	a.converter = currency.NewConverter(cfg.CurrencyBase, cfg.CurrencyRatesURL, httpclient.New(httpCfg), logger)
	if err := a.converter.Refresh(ctx); err != nil {
		// Conversions stay 1:1 until a later refresh succeeds.
		logger.Warn("initial currency refresh failed", slog.String("error", err.Error()))
	}

	carts := store.NewRegistry(cfg.SessionIdle, func(ctx context.Context, sessionID string) (*store.CartStore, error) {
		return store.NewCartStore(ctx, storage, sessionID, cfg.CartDefaults, logger)
	})
	wishlists := store.NewRegistry(cfg.SessionIdle, func(ctx context.Context, sessionID string) (*store.WishlistStore, error) {
		return store.NewWishlistStore(ctx, storage, sessionID, logger), nil
	})
	for _, c := range []prometheus.Collector{carts.Collector("cart"), wishlists.Collector("wishlist")} {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Warn("session metrics not registered", slog.String("error", err.Error()))
		}
	}

	cartService := service.NewCartService(carts, eventProducer, logger)
	catalogService := service.NewCatalogService(gw, cfg.CatalogCacheTTL, logger)
	services := handler.Services{
		Cart:     cartService,
		Wishlist: service.NewWishlistService(wishlists, eventProducer, logger),
		Catalog:  catalogService,
		Search:   service.NewSearchDebouncer(cfg.SearchDebounce, catalogService.Search),
		Forms:    service.NewFormService(gw, eventProducer, logger),
		Auth:     authService,
		Checkout: service.NewCheckoutService(cartService, logger),
		Currency: a.converter,
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("storage", storage.Ping)
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	router := handler.NewRouter(services, healthHandler, logger, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		PprofCIDRs:  cfg.PprofCIDRs,
		Session: middleware.SessionConfig{
			TTL:    cfg.SessionTTL,
			Secure: cfg.SessionSecure,
		},
		FormRateLimitRPS:   cfg.FormRateLimitRPS,
		FormRateLimitBurst: cfg.FormRateLimitBurst,
		CatalogMaxAge:      60,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// openStorage connects the configured session storage backend.
func (a *App) openStorage(ctx context.Context) (stateStorage, error) {
	switch a.cfg.StorageDriver {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.Redis.Addr()),
			slog.Int("db", a.cfg.Redis.DB),
		)
		return redisrepo.NewStateRepository(rdb, a.cfg.SessionTTL, a.logger), nil

	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), a.logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		a.pgState = pgrepo.NewStateRepository(pool, a.cfg.SessionTTL, a.logger)
		a.logger.Info("connected to PostgreSQL")
		return a.pgState, nil

	default:
		a.logger.Warn("using in-memory session storage; state is lost on restart")
		return memory.NewStateRepository(), nil
	}
}

// Run starts the HTTP server and background jobs and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.every(ctx, a.cfg.CurrencyRefresh, "currency refresh", func(ctx context.Context) error {
		return a.converter.Refresh(ctx)
	})
	if a.pgState != nil {
		go a.every(ctx, a.cfg.PurgeInterval, "session purge", func(ctx context.Context) error {
			n, err := a.pgState.PurgeExpired(ctx)
			if err == nil && n > 0 {
				a.logger.InfoContext(ctx, "expired session state purged", slog.Int64("rows", n))
			}
			return err
		})
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// every runs job on a ticker until ctx ends. A non-positive interval
// disables the job.
func (a *App) every(ctx context.Context, interval time.Duration, name string, job func(context.Context) error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job(ctx); err != nil {
				a.logger.WarnContext(ctx, name+" failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.shutdownTr(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
