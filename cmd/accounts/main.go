package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/config"
	"github.com/goliatone/go-accounts/database"
	"github.com/goliatone/go-accounts/logging"
	"github.com/goliatone/go-accounts/metrics"
	"github.com/goliatone/go-accounts/notifier/kafka"
	"github.com/goliatone/go-accounts/notifier/rabbitmq"
	"github.com/goliatone/go-accounts/notifier/sarama"
	"github.com/goliatone/go-accounts/ratelimit"
)

type closer interface {
	Close() error
}

type App struct {
	config   *config.Config
	zap      *zap.Logger
	logger   *logging.ZapLogger
	db       *bun.DB
	repo     accounts.RepositoryManager
	tokens   *accounts.TokenService
	service  *accounts.Service
	notifier accounts.Notifier
	redis    redis.UniversalClient
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	srv      *fiber.App
	closers  []closer
}

func (a *App) GetLogger(name string) accounts.Logger {
	return a.logger.Named(name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	zl, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		zap:    zl,
		logger: logging.NewZap(zl),
	}

	err = run(context.Background(), app)
	app.shutdown()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the startup steps and serves until an exit signal arrives
// or the listener fails.
func run(ctx context.Context, app *App) error {
	log := app.GetLogger("app")

	steps := []func(context.Context, *App) error{
		WithPersistence,
		WithMetrics,
		WithEvents,
		WithRedis,
		WithService,
		WithHTTPServer,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			log.Error("startup failed: %v", err)
			return err
		}
	}

	addr := fmt.Sprintf(":%d", app.config.Port)
	log.Info("listening on %s", addr)

	if err := Serve(app.srv, addr, ExitSignal(), log); err != nil {
		log.Error("server stopped: %v", err)
		return err
	}
	return nil
}

// Serve listens on addr until stop fires, then shuts the server down. A
// listener error is returned as soon as it happens.
func Serve(srv *fiber.App, addr string, stop <-chan os.Signal, log accounts.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case sig := <-stop:
		log.Info("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown: %v", err)
	}
	return nil
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.config

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	app.db = db
	app.closers = append(app.closers, db)

	migrations, err := accounts.GetMigrationsFS(database.Dialect(cfg.DBDriver))
	if err != nil {
		return err
	}

	group, err := database.Migrate(ctx, db, migrations)
	if err != nil {
		return err
	}
	if group.IsZero() {
		app.GetLogger("persistence").Info("schema up to date")
	} else {
		app.GetLogger("persistence").Info("migrated to %s", group)
	}

	app.repo = accounts.NewRepositoryManager(db)
	return app.repo.Validate()
}

func WithMetrics(_ context.Context, app *App) error {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
	return nil
}

// WithEvents picks the broker from EVENTS_DRIVER
func WithEvents(_ context.Context, app *App) error {
	cfg := app.config
	log := app.GetLogger("events")

	var n accounts.Notifier
	switch cfg.EventsDriver {
	case "rabbitmq":
		pub, err := rabbitmq.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, pub)
		n = pub
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka driver")
		}
		pub := kafka.New(kafka.NewWriter(cfg.KafkaBrokers))
		app.closers = append(app.closers, pub)
		n = pub
	case "sarama":
		if len(cfg.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the sarama driver")
		}
		pub, err := sarama.Dial(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, pub)
		n = pub
	case "none":
		n = accounts.NotifierFunc(func(context.Context, string, string, any) error { return nil })
	case "log":
		n = accounts.NotifierFunc(func(_ context.Context, exchange, key string, payload any) error {
			log.Info("event exchange=%s routing_key=%s payload=%+v", exchange, key, payload)
			return nil
		})
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
	}

	log.Info("publishing events with %s", cfg.EventsDriver)
	app.notifier = app.metrics.InstrumentNotifier(n)
	return nil
}

// WithRedis connects when REDIS_ADDR is set. Without it limits are kept
// in process memory and OTP resends are not throttled.
func WithRedis(ctx context.Context, app *App) error {
	if app.config.RedisAddr == "" {
		return nil
	}

	client := ratelimit.NewClient([]string{app.config.RedisAddr}, app.config.RedisPassword, app.config.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis: %w", err)
	}

	app.redis = client
	app.closers = append(app.closers, client)
	return nil
}

func WithService(_ context.Context, app *App) error {
	cfg := app.config

	app.tokens = accounts.NewTokenService(
		cfg.GetSigningKey(),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		accounts.WithPreviousSecrets(cfg.GetPreviousSigningKeys()...),
		accounts.WithTokenLogger(app.GetLogger("tokens")),
	)

	app.service = accounts.NewService(app.repo, app.tokens,
		accounts.WithConfig(cfg),
		accounts.WithLogger(app.GetLogger("accounts")),
		accounts.WithNotifier(app.notifier),
	)
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	cfg := app.config

	srv := fiber.New(fiber.Config{
		AppName:      "accounts",
		ErrorHandler: accounts.ErrorHandler(app.GetLogger("http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	srv.Use(recover.New())
	srv.Use(requestid.New())
	srv.Use(app.metrics.Middleware())

	srv.Get("/healthz", func(c *fiber.Ctx) error {
		if err := app.db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	srv.Get("/metrics", metrics.Handler(app.registry))

	limits := limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return accounts.ErrRateLimited.Clone()
		},
	}

	controller := accounts.NewUsersController(app.service, app.tokens).
		WithConfig(cfg).
		WithLogger(app.GetLogger("users"))

	if app.redis != nil {
		limits.Storage = ratelimit.NewStorage(app.redis, "")
		controller.WithThrottle(
			ratelimit.NewOTPLimiter(app.redis, cfg.OTPResendWindow, cfg.OTPResendMax, cfg.OTPResendCooldown).
				WithLogger(app.GetLogger("otp-limiter")),
		)
	}

	srv.Use(controller.Prefix, limiter.New(limits))
	controller.RegisterRoutes(srv)

	app.srv = srv
	return nil
}

func (a *App) shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close: %v", err)
		}
	}
	_ = a.logger.Sync()
}

func ExitSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
