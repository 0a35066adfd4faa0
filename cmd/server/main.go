package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tradegate/internal/auth/session"
	paymentclient "tradegate/internal/payment/client"
	"tradegate/internal/payment/gateway"
	paymenthandler "tradegate/internal/payment/handler"
	paymentmetrics "tradegate/internal/payment/metrics"
	"tradegate/internal/payment/reconcile"
	paymentstore "tradegate/internal/payment/store"
	"tradegate/internal/platform/config"
	"tradegate/internal/platform/health"
	"tradegate/internal/platform/httpserver"
	"tradegate/internal/platform/logger"
	"tradegate/internal/platform/middleware"
	platformredis "tradegate/internal/platform/redis"
	"tradegate/internal/platform/tracer"
	"tradegate/pkg/platform/sentinel"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing tradegate",
		"addr", cfg.Addr,
		"api_base_url", cfg.APIBaseURL,
		"country_code", cfg.CountryCode,
	)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}

	// One store scope per browser session; this process serves one session
	// scope at a time, so the scope is fixed at startup and shared by the
	// intent and credential stores.
	sessionScope := uuid.NewString()
	var intents paymentstore.IntentStore
	var tokens session.TokenStore
	if redisClient != nil {
		intents = paymentstore.NewRedisIntentStore(redisClient.Client, sessionScope, cfg.PaymentTimeout)
		tokens = session.NewRedisTokenStore(redisClient.Client, sessionScope, cfg.SessionTTL)
	} else {
		intents = paymentstore.NewInMemoryIntentStore()
		tokens = session.NewInMemoryTokenStore()
	}

	authSession := session.New(tokens, session.WithLogger(log))
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := authSession.Restore(ctx); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			log.Warn("session restore failed", "error", err)
		}
		cancel()
		if authSession.Authenticated() {
			log.Info("restored persisted session", "user", authSession.Current().User.Email)
		}
	}

	payments := paymentclient.New(cfg.APIBaseURL)
	payMetrics := paymentmetrics.New()

	registry := gateway.NewRegistry(gateway.Config{
		KNETMerchantID:      cfg.Gateways.KNETMerchantID,
		OmanNetMerchantID:   cfg.Gateways.OmanNetMerchantID,
		CCAvenueMerchantID:  cfg.Gateways.CCAvenueMerchantID,
		CyberSourceMerchant: cfg.Gateways.CyberSourceMerchant,
		QNBMerchantID:       cfg.Gateways.QNBMerchantID,
		QNBSecretKey:        cfg.Gateways.QNBSecretKey,
		DefaultGateway:      cfg.Gateways.Default,
	})
	adapter := gateway.NewAdapter(registry, intents, gateway.PageNavigator{}, cfg.ReturnBase,
		gateway.WithLogger(log),
		gateway.WithMetrics(payMetrics),
	)

	reconciler := reconcile.New(intents, payments,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(payMetrics),
		reconcile.WithTracer(tracer.NewOTel()),
		reconcile.WithPollInterval(cfg.PollInterval),
		reconcile.WithTimeout(cfg.PaymentTimeout),
		reconcile.WithSignatureKey(cfg.Gateways.QNBSecretKey),
	)

	healthHandler := health.New()
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	paymenthandler.New(intents, adapter, reconciler, log).Routes(r)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Pick up a payment left unresolved by a previous run.
	g.Go(func() error {
		watcher, outcome, err := reconciler.Resume(gctx)
		if err != nil {
			log.Warn("payment resume failed", "error", err)
			return nil
		}
		if outcome != nil {
			log.Info("stale payment expired on startup", "reference", outcome.ReferenceNumber)
		}
		if watcher != nil {
			defer watcher.Stop()
			select {
			case o, ok := <-watcher.Outcome():
				if ok {
					log.Info("resumed payment resolved", "reference", o.ReferenceNumber, "status", o.Status)
				}
			case <-gctx.Done():
			}
		}
		return nil
	})

	if redisClient != nil {
		g.Go(func() error {
			defer redisClient.Close()
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					redisClient.RecordPoolStats()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
