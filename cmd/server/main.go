package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/emart/internal/cache"
	"github.com/Skotchmaster/emart/internal/httpserver"
	"github.com/Skotchmaster/emart/internal/notify"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/internal/search"
	"github.com/Skotchmaster/emart/internal/service"
	"github.com/Skotchmaster/emart/internal/validators"
	"github.com/Skotchmaster/emart/pkg/config"
	pkgdb "github.com/Skotchmaster/emart/pkg/db"
	"github.com/Skotchmaster/emart/pkg/logging"
	"github.com/Skotchmaster/emart/pkg/metrics"
	loggingmw "github.com/Skotchmaster/emart/pkg/middleware/logging"
	"github.com/Skotchmaster/emart/pkg/mykafka"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: no .env loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	config.MustPositive(cfg.ServerPort, "SERVER_PORT")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.MongoURI, cfg.MongoDBName)
	cancel()
	if err != nil {
		log.Fatalf("mongo open: %v", err)
	}
	store := &repo.MongoRepo{DB: db, Transactions: cfg.MongoTransactions}

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := store.EnsureIndexes(idxCtx); err != nil {
		logger.Warn("ensure_indexes_error", "error", err)
	}
	cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shop := metrics.NewShop(registry)

	var cartCache cache.CartCache = cache.Nop{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		cartCache = cache.NewRedisCache(rdb)
	}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, logger)
		events = producer
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		sc, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			if err := sc.EnsureIndex(ctx); err != nil {
				logger.Warn("search_ensure_index_error", "error", err)
			}
			index = sc
		}
	}

	var mailer notify.Mailer = notify.LogMailer{Logger: logger}
	if cfg.SMTP.Enabled() {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		logger.Info("smtp_disabled", "reason", "SMTP_HOST, SMTP_USER or SMTP_PASSWORD not set")
	}
	dispatcher := notify.NewDispatcher(mailer, notify.Options{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		MaxAttempts: cfg.Notify.MaxAttempts,
		SendTimeout: cfg.Notify.SendTimeout,
	}, logger, shop)

	secret := []byte(cfg.JWTSecret)
	authSvc := &service.AuthService{Users: store, Notifier: dispatcher, Events: events, JWTSecret: secret, TokenTTL: cfg.JWTTTL}
	catalogSvc := &service.CatalogService{Products: store, Index: index, Events: events}
	cartSvc := &service.CartService{Carts: store, Products: store, Cache: cartCache}
	orderSvc := &service.OrderService{
		Orders:     store,
		Carts:      store,
		Products:   store,
		Users:      store,
		Tx:         store,
		CartCache:  cartSvc,
		Notifier:   dispatcher,
		Events:     events,
		Metrics:    shop,
		AdminEmail: cfg.AdminEmail,
	}
	adminSvc := &service.AdminService{Users: store, Products: store, Orders: store}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		AdminHandler:   &httpserver.AdminHTTP{Svc: adminSvc, Orders: orderSvc},
		JWTSecret:      secret,
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
		Gatherer:       registry,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http_shutdown_error", "error", err)
		}
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("notification_drain_incomplete", "error", err)
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka_close_error", "error", err)
			}
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		return pkgdb.Close(shutdownCtx, db)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server_stopped_with_error", "error", err)
		os.Exit(1)
	}
	logger.Info("server_stopped")
}
