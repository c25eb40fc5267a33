package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/vbwd/pluginkit/pkg/async"
	"github.com/vbwd/pluginkit/pkg/config"
	"github.com/vbwd/pluginkit/pkg/events"
	"github.com/vbwd/pluginkit/pkg/handlers"
	"github.com/vbwd/pluginkit/pkg/observability"
	"github.com/vbwd/pluginkit/pkg/plugins"
	"github.com/vbwd/pluginkit/pkg/plugins/providers/mockpay"
	"github.com/vbwd/pluginkit/pkg/schedule"
	"github.com/vbwd/pluginkit/pkg/sdk"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Host lifecycle messages go through the slog logger; components keep
	// their logrus plumbing.
	hostLog := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrusLevel(cfg.Observability.LogLevel))
	async.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint.
	var metrics *observability.Metrics
	var metricsSrv *http.Server
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.Observability.MetricsAddr, Handler: mux}
		go func() {
			log.WithField("addr", cfg.Observability.MetricsAddr).Info("Metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Event infrastructure.
	bus := events.NewDispatcher(log)
	bus.SetMetrics(metrics)
	dispatcher := events.NewDomainDispatcher(log)
	dispatcher.SetMetrics(metrics)

	// Plugin manager and discovery.
	manager := plugins.NewManager(bus, log)
	manager.SetMetrics(metrics)

	loader := plugins.NewLoader(cfg.Plugins.Dirs, log)
	loader.RegisterFactory(mockpay.PluginName, mockpay.FromManifest)
	if err := loader.DiscoverInto(ctx, manager); err != nil {
		log.WithError(err).Fatal("Plugin discovery failed")
	}

	// The mock provider is always available, even without a manifest on disk.
	if _, err := manager.Get(mockpay.PluginName); err != nil {
		mock := mockpay.New(log)
		if err := manager.Register(mock); err != nil {
			log.WithError(err).Fatal("Failed to register mock payment provider")
		}
	}

	if err := manager.EnableAll(); err != nil {
		log.WithError(err).Fatal("Failed to enable plugins")
	}
	for _, p := range manager.Enabled() {
		meta := p.Metadata()
		log.WithFields(logrus.Fields{
			"plugin":  meta.Name,
			"version": meta.Version,
		}).Info("Plugin enabled")
	}

	if cfg.Plugins.Watch {
		go func() {
			err := loader.Watch(ctx, func(path string) {
				log.WithField("path", path).Info("Plugin directory changed, restart to reload")
			})
			if err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Plugin directory watch stopped")
			}
		}()
	}

	// Idempotency service for payment plugins.
	store, closeStore, err := buildIdempotencyStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to build idempotency store")
	}
	defer closeStore()
	idempotency := sdk.NewIdempotencyService(store, cfg.Idempotency.TTL, log)

	// Domain handlers.
	source := schedule.NewMemorySource()
	dispatcher.Register(events.EventSubscriptionActivated, handlers.NewSubscriptionActivated())
	dispatcher.Register(events.EventSubscriptionCancelled, handlers.NewSubscriptionCancelled())
	dispatcher.Register(events.EventPaymentCompleted, handlers.NewPaymentCompleted(nil))
	dispatcher.Register(events.EventPaymentFailed, handlers.NewPaymentFailed(nil))
	dispatcher.Register(events.EventUserCreated, handlers.NewUserCreated(nil))

	if p, err := manager.Get(mockpay.PluginName); err == nil {
		if provider, ok := p.(plugins.PaymentProvider); ok {
			dispatcher.Register(events.EventCheckoutInitiated, handlers.NewCheckout(provider, idempotency))
		}
	}

	// Expiry sweeper.
	var sweeper *schedule.Sweeper
	if cfg.Sweeper.Enabled {
		sweeper = schedule.NewSweeper(source, dispatcher, cfg.Sweeper.Schedule, cfg.Sweeper.Workers, log)
		if err := sweeper.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start expiry sweeper")
		}
	}

	logStartup(hostLog, cfg)
	<-ctx.Done()
	hostLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if sweeper != nil {
		sweeper.Stop()
	}
	if err := manager.DisableAll(); err != nil {
		log.WithError(err).Warn("Failed to disable all plugins")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}

	hostLog.Info("Shutdown complete")
}

// logStartup reports the effective configuration once the host is running.
func logStartup(hostLog *observability.Logger, cfg *config.Config) {
	hostLog.WithFields(map[string]interface{}{
		"plugin_dirs":       cfg.Plugins.Dirs,
		"idempotency_store": cfg.Idempotency.Store,
		"sweeper_enabled":   cfg.Sweeper.Enabled,
		"metrics_enabled":   cfg.Observability.MetricsEnabled,
	}).Info("pluginkit host started")
}

// buildIdempotencyStore constructs the configured idempotency backend.
func buildIdempotencyStore(ctx context.Context, cfg *config.Config) (sdk.IdempotencyStore, func(), error) {
	switch cfg.Idempotency.Store {
	case "redis":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		store, err := sdk.NewRedisStore(connectCtx,
			cfg.Idempotency.RedisAddr, cfg.Idempotency.RedisPassword, cfg.Idempotency.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		store, err := sdk.NewMemoryStore(cfg.Idempotency.MemorySize)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// logrusLevel maps the host log level onto logrus.
func logrusLevel(level observability.LogLevel) logrus.Level {
	switch level {
	case observability.DebugLevel:
		return logrus.DebugLevel
	case observability.WarnLevel:
		return logrus.WarnLevel
	case observability.ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
