package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/Anshid-ck/cloth-shop-sub001/api/controllers"
	"github.com/Anshid-ck/cloth-shop-sub001/api/routes"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/address"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/cart"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/checkout"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/orders"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/payments"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/pricing"
	"github.com/Anshid-ck/cloth-shop-sub001/internal/storeapi"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/config"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/db"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/env"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/instance"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/logger"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/metrics"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/migrate"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/pubsub"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/redis"
	"github.com/Anshid-ck/cloth-shop-sub001/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

type closer struct {
	name  string
	close func() error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "checkout-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "checkout-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "checkout api stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i].close(); cerr != nil {
				logg.Error(logg.WithField(context.Background(), "resource", closers[i].name), "error closing resource", cerr)
				err = multierr.Append(err, cerr)
			}
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, closer{"postgres", dbClient.Close})

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, closer{"redis", redisClient.Close})

	readiness := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	calculator, err := pricing.NewCalculator(pricing.ConfigFrom(cfg.Pricing))
	if err != nil {
		return err
	}

	store, err := storeapi.NewClient(cfg.StoreAPI, storeapi.WithObserver(checkoutMetrics))
	if err != nil {
		return err
	}

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return err
	}
	processor, err := payments.NewStripeProcessor(stripeClient.PaymentIntents())
	if err != nil {
		return err
	}

	var events checkout.EventPublisher
	if cfg.PubSub.Enabled(cfg.GCP) {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, closer{"pubsub", psClient.Close})
		readiness["pubsub"] = psClient
		events = pubsub.NewEventPublisher(psClient.CheckoutPublisher())
	} else {
		logg.Warn(ctx, "pubsub disabled; checkout events will not be published")
	}

	cartService, err := cart.NewService(store)
	if err != nil {
		return err
	}
	addressStore, err := address.NewStore(store)
	if err != nil {
		return err
	}
	orderCreator, err := orders.NewCreator(store, calculator, checkoutMetrics, logg)
	if err != nil {
		return err
	}
	orchestrator, err := payments.NewOrchestrator(store, processor, checkoutMetrics, logg)
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(checkout.Deps{
		Repository: checkout.NewRepository(dbClient.DB()),
		Cart:       cartService,
		Addresses:  addressStore,
		Orders:     orderCreator,
		Payments:   orchestrator,
		Calculator: calculator,
		Locker:     redisClient,
		Events:     events,
		Metrics:    checkoutMetrics,
		Logger:     logg,
		LockTTL:    cfg.Checkout.LockTTL,
	})
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(serverCtx, "starting checkout api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			readiness,
			registry,
			checkoutService,
			cartService,
			calculator,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down checkout api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
