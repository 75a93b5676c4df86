package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/config"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/event"
	handler "github.com/Carlos85Carvalho/luni-final-sub000/internal/handler/http"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/notify"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/receipt"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/repository/postgres"
	redisrepo "github.com/Carlos85Carvalho/luni-final-sub000/internal/repository/redis"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/sequence"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/service"
	"github.com/Carlos85Carvalho/luni-final-sub000/migrations"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/database"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/health"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/httpclient"
	pkgkafka "github.com/Carlos85Carvalho/luni-final-sub000/pkg/kafka"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/tracing"
)

// App wires together all dependencies and runs the point-of-sale service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	dispatcher     *notify.Dispatcher
	sessions       *service.SessionService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "pos",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "pos")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for sale counters and pending-sale snapshots.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))

	// Initialize Kafka producer with connection validation and retry.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	catalogRepo := postgres.NewCatalogRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	pendingRepo := redisrepo.NewPendingSaleRepository(redisClient)

	sequencer := sequence.NewSequencer(redisClient, logger)

	eventProducer := event.NewProducer(producer, logger)
	dispatcher := notify.NewDispatcher(eventProducer, logger)

	loyalty := domain.LoyaltyConfig{
		PointsPerCurrencyUnit: cfg.LoyaltyPointsPerUnit,
		MinimumForPoints:      cfg.LoyaltyMinimumCents,
		CashbackPercent:       cfg.LoyaltyCashbackPercent,
	}

	receipts := buildReceiptGenerator(cfg, logger)

	checkoutService := service.NewCheckoutService(
		saleRepo, catalogRepo, customerRepo, sequencer,
		receipts, dispatcher, eventProducer, loyalty, logger,
	)
	pendingService := service.NewPendingService(pendingRepo, catalogRepo, eventProducer, loyalty, logger)
	sessionService := service.NewSessionService(
		catalogRepo, customerRepo, checkoutService, pendingService,
		loyalty, cfg.SessionIdleTTL(), logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(sessionService, pendingService, healthHandler, logger, handler.RouterConfig{
		Environment:        cfg.Environment,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		dispatcher:     dispatcher,
		sessions:       sessionService,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// buildReceiptGenerator returns the remote renderer when one is configured,
// falling back to the built-in text layout otherwise. The remote renderer
// itself degrades to the text layout when the rendering service is down.
func buildReceiptGenerator(cfg *config.Config, logger *slog.Logger) receipt.Generator {
	text := receipt.NewTextGenerator(cfg.ReceiptHeader)
	if cfg.ReceiptRendererURL == "" {
		return text
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: time.Second,
	})
	cbClient := httpclient.NewCircuitBreakerClient(
		client, httpclient.DefaultCircuitBreakerConfig("receipt-renderer"), logger,
	)
	return receipt.NewHTTPRenderer(cbClient, cfg.ReceiptRendererURL, text, logger)
}

// Run starts the HTTP server and background jobs, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start the idle-session janitor.
	go a.sessions.RunJanitor(ctx, a.cfg.SessionSweepInterval())

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Notification dispatcher (flush in-flight receipt notifications)
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka producer
// 5. Redis client
// 6. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Wait for fire-and-forget notification dispatches to finish.
	a.dispatcher.Wait()

	// 3. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 5. Close Redis client.
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis client close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 6. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := producer.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}
