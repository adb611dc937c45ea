package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sudo-init-do/studentmarket/internal/alerts"
	"github.com/sudo-init-do/studentmarket/internal/auth"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/dataservice"
	"github.com/sudo-init-do/studentmarket/internal/db"
	"github.com/sudo-init-do/studentmarket/internal/logging"
	"github.com/sudo-init-do/studentmarket/internal/marketplace"
	"github.com/sudo-init-do/studentmarket/internal/messaging"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
	appmw "github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
	"github.com/sudo-init-do/studentmarket/internal/store/postgres"
	"github.com/sudo-init-do/studentmarket/internal/supabase"
	"github.com/sudo-init-do/studentmarket/internal/user"
	"github.com/sudo-init-do/studentmarket/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithField("error", err.Error()).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	if err := run(cfg, log); err != nil {
		log.WithField("error", err.Error()).Error("server stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}
	m := metrics.New()

	// Storage and auth backend
	var (
		primary  store.Store
		authAPI  dataservice.Auth
		closeAll []func()
	)
	defer func() {
		for i := len(closeAll) - 1; i >= 0; i-- {
			closeAll[i]()
		}
	}()

	switch mode {
	case config.ModeLive:
		if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
			return err
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		pg := postgres.New(pool)
		closeAll = append(closeAll, pg.Close)
		primary = pg

		sb, err := supabase.New(supabase.Config{
			ProjectURL:  cfg.SupabaseURL,
			AnonKey:     cfg.SupabaseAnon,
			RedirectURL: cfg.AppURL,
		}, nil)
		if err != nil {
			return err
		}
		authAPI = sb
	default:
		primary = memory.NewSeeded()
	}
	log.WithField("mode", mode).Info("backend selected")

	// Redis: category cache and email queue
	var (
		cache    dataservice.CategoryCache
		enqueuer alerts.Enqueuer
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closeAll = append(closeAll, func() { _ = rdb.Close() })
		cache = dataservice.NewRedisCategoryCache(rdb, log)

		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		client := asynq.NewClient(redisOpt)
		closeAll = append(closeAll, func() { _ = client.Close() })
		enqueuer = client

		worker := alerts.NewWorker(redisOpt, alerts.NewMailer(cfg.SMTP, log), m, log)
		if err := worker.Start(); err != nil {
			return err
		}
		closeAll = append(closeAll, worker.Shutdown)
		log.WithField("addr", cfg.RedisAddr).Info("asynq initialized")
	} else {
		log.Warn("REDIS_ADDR not set; category cache and notification emails disabled")
	}

	dispatcher := alerts.NewDispatcher(enqueuer, primary, cfg.AppURL, log)
	engine := marketplace.NewService(primary,
		marketplace.WithDispatcher(dispatcher),
		marketplace.WithMetrics(m),
		marketplace.WithLogger(log),
	)
	data, err := dataservice.New(dataservice.Options{
		Mode:     mode,
		Primary:  primary,
		Auth:     authAPI,
		Cache:    cache,
		Engine:   engine,
		Messages: messaging.NewService(primary, dispatcher, log),
		Metrics:  m,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	e := newServer(cfg, data, m, log)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("API server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(cfg config.Config, data *dataservice.Facade, m *metrics.Metrics, log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.AppURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(m.Middleware())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}).Info("request")
			return nil
		},
	}))

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "mode": data.Mode()})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := data.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "store unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	secret := []byte(cfg.JWTSecret)
	requireUser := appmw.JWT(secret)

	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authHandler := auth.NewHandler(data)
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authHandler.Register(authGroup, requireUser)
	e.GET("/me", authHandler.Me, appmw.OptionalJWT(secret))

	api := e.Group("")
	marketplace.NewHandler(data).Register(api, requireUser)
	user.NewHandler(data).Register(api, requireUser)
	messaging.NewHandler(data).Register(api, requireUser)
	wallet.NewHandler(data).Register(api, requireUser)
	alerts.NewHandler(data).Register(api, requireUser)

	return e
}
