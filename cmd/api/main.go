package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/migrate"
	"storefront/internal/payment"
	"storefront/internal/repository/localstate"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/orders"
	"storefront/internal/service/store"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	ctx := context.Background()
	readiness := map[string]httpserver.ReadinessCheck{}

	state, closeState, err := openState(ctx, cfg, logger, readiness)
	if err != nil {
		logger.WithError(err).Fatal("open local state")
	}
	defer closeState()

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, logger)
	readiness["backend"] = func(ctx context.Context) error {
		_, err := client.ListProducts(ctx)
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.OrderEventQueue, logger)
		if err != nil {
			logger.WithError(err).Fatal("connect to broker")
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	catalogService := catalog.New(client, logger)
	storeService := store.New(state, logger)
	broker := payment.NewBroker(payment.Config{
		KeyID:        cfg.GatewayKeyID,
		Currency:     cfg.Currency,
		MerchantName: cfg.MerchantName,
		Timeout:      cfg.GatewayTimeout,
	}, logger)
	checkoutService := checkout.New(checkout.Deps{
		Catalog: catalogService,
		Orders:  client,
		Cart:    storeService,
		Gateway: broker,
		Events:  publisher,
		Logger:  logger,
	})
	ordersService := orders.New(client, cfg.Location(), logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:           catalogService,
		Store:             storeService,
		Checkout:          checkoutService,
		Orders:            ordersService,
		Authorizer:        auth.NewAuthorizer(cfg.JWTSecret, cfg.AdminEmails),
		CORSOrigins:       cfg.CORSOrigins,
		CheckoutPerMinute: cfg.CheckoutPerMin,
		Readiness:         readiness,
	})
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("server stopped")
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// openState picks the cart/wishlist store and registers its readiness check.
func openState(ctx context.Context, cfg config.Config, logger *logrus.Logger, readiness map[string]httpserver.ReadinessCheck) (localstate.Repository, func(), error) {
	switch cfg.StateBackend {
	case "memory", "":
		return localstate.NewMemory(), func() {}, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Apply(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		readiness["postgres"] = func(ctx context.Context) error { return db.Ping(ctx, pool) }
		return localstate.NewPostgres(pool, logger), pool.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return localstate.NewRedis(client, logger), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
