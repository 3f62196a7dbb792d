package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/api"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/cart"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/checkout"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/config"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/event"
	handler "github.com/muhammadmasoud/amazon-clone-sub000/internal/handler/http"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/metrics"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/session"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/store"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/database"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/health"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
	pkgkafka "github.com/muhammadmasoud/amazon-clone-sub000/pkg/kafka"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/middleware"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/tracing"
)

// Option customises the wiring, mainly for front ends that render
// notifications or drive the card widget themselves.
type Option func(*options)

type options struct {
	navigator checkout.Navigator
	notifier  checkout.Notifier
	confirmer checkout.CardConfirmer
}

// WithNavigator routes orchestrator navigations to nav.
func WithNavigator(nav checkout.Navigator) Option {
	return func(o *options) { o.navigator = nav }
}

// WithNotifier routes orchestrator notifications to n.
func WithNotifier(n checkout.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithCardConfirmer sets how card details are collected and confirmed.
func WithCardConfirmer(c checkout.CardConfirmer) Option {
	return func(o *options) { o.confirmer = c }
}

// App wires together all dependencies of the storefront client core.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
	unwatchCart    func()

	Backend  *httpclient.API
	Sessions session.Store
	Tokens   *session.TokenSource
	Store    *store.Store
	Cart     *cart.Actions
	Orders   *api.OrderAPI
	Payments *api.PaymentAPI
	Checkout *checkout.Orchestrator
	Health   *health.Handler
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{confirmer: checkout.ExternalConfirmer{}}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Tracing. The propagator is installed even when export is off.
	tcfg := tracing.DefaultConfig("storefront")
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTelEnabled
	tcfg.OTLPEndpoint = cfg.OTelEndpoint
	tcfg.SampleRate = cfg.OTelSampleRate
	shutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	// Persisted credential.
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rcfg := database.DefaultRedisConfig()
		rcfg.Addr, rcfg.Password, rcfg.DB = cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB
		rdb, err := database.NewRedisClient(ctx, rcfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		a.rdb = rdb
		a.Sessions = session.NewRedisStore(rdb, cfg.SessionKey, 0)
	default:
		a.Sessions = session.NewFileStore(cfg.SessionFile)
	}
	a.Tokens = session.NewTokenSource(a.Sessions, logger)

	// Backend request layer: retries, then the breaker, then auth and decoding.
	client := httpclient.New(httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 16,
	})
	cbCfg := httpclient.DefaultCircuitBreakerConfig("storefront-api")
	cbCfg.Timeout = cfg.BreakerTimeout
	breaker := httpclient.NewCircuitBreakerClient(client, cbCfg, logger)

	backend, err := httpclient.NewAPI(httpclient.APIConfig{
		BaseURL:           cfg.APIBaseURL,
		PublicPaths:       cfg.PublicPaths,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.RequestBurst,
		Name:              "storefront-api",
	}, breaker, a.Tokens, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	a.Backend = backend

	// Kafka producer, only when brokers are configured.
	var publisher event.Publisher
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(publisher, logger)

	// Build the dependency graph.
	a.Store = store.New()
	a.unwatchCart = a.Store.Subscribe(func(snap store.Snapshot) {
		metrics.ObserveCartState(snap.Cart.TotalItems, snap.Cart.TotalAmount.InexactFloat64(), snap.Loading)
	})
	a.Cart = cart.NewActions(api.NewCartAPI(backend), a.Store, events, logger)
	a.Orders = api.NewOrderAPI(backend)
	a.Payments = api.NewPaymentAPI(backend)
	card := checkout.NewStripeCardFlow(a.Payments, o.confirmer, logger)
	a.Checkout = checkout.NewOrchestrator(
		checkout.Config{Cooldown: cfg.SubmitCooldown},
		a.Orders, a.Store, card, o.navigator, o.notifier, events, logger,
	)

	// Health checks.
	a.Health = health.NewHandler()
	a.Health.Register("backend", backend.Ping)
	if a.rdb != nil {
		a.Health.Register("session", database.RedisChecker(a.rdb))
	}
	if a.producer != nil {
		a.Health.RegisterOptional("kafka", a.producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins
	router := handler.NewRouter(handler.Deps{
		Cart:     a.Cart,
		Store:    a.Store,
		Checkout: a.Checkout,
		Orders:   a.Orders,
		Health:   a.Health,
		Users:    a.Tokens.UserID,
		CORS:     cors,
		Logger:   logger,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Handler returns the view server's router.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run loads the cart, starts the HTTP server and blocks until the context is
// canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Cart.FetchCart(ctx); err != nil {
		a.logger.Warn("initial cart load failed", slog.String("error", err.Error()))
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.Close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the HTTP server and releases all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.Close()
	a.logger.Info("application shutdown complete")
	return nil
}

// Close releases the producer, the Redis client and the tracer without
// touching the HTTP server. One-shot commands call it directly.
func (a *App) Close() {
	if a.unwatchCart != nil {
		a.unwatchCart()
		a.unwatchCart = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}
}
