// Command space-query-server runs the authenticated coordinate-conversion
// HTTP API backed by a configurable transform provider.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/signalsfoundry/space-query/astro"
	"github.com/signalsfoundry/space-query/config"
	"github.com/signalsfoundry/space-query/internal/auth"
	"github.com/signalsfoundry/space-query/internal/httpapi"
	"github.com/signalsfoundry/space-query/internal/logging"
	"github.com/signalsfoundry/space-query/internal/observability"
	"github.com/signalsfoundry/space-query/internal/schedule"
	"github.com/signalsfoundry/space-query/query"
	"github.com/signalsfoundry/space-query/spice"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: search standard locations)")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewFromEnv().Error(ctx, "failed to load configuration", logging.Err(err))
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})

	collector, err := observability.NewAPICollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	provider, err := query.New(cfg.Query.Backend, query.Options{
		Logger:       log,
		Metrics:      collector,
		KernelDir:    cfg.Query.KernelDir,
		JustInTime:   cfg.Query.JustInTime,
		ArchiveURL:   cfg.Query.ArchiveURL,
		FetchTimeout: cfg.Query.FetchTimeout,
	})
	if err != nil {
		log.Error(ctx, "failed to construct transform backend",
			logging.String("backend", cfg.Query.Backend), logging.Err(err))
		os.Exit(1)
	}

	users, err := auth.LoadUserStore(cfg.Auth.UsersFile)
	if err != nil {
		log.Error(ctx, "failed to load user store",
			logging.String("path", cfg.Auth.UsersFile), logging.Err(err))
		os.Exit(1)
	}
	keyring, err := auth.NewKeyring(cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error(ctx, "failed to initialise token keyring", logging.Err(err))
		os.Exit(1)
	}

	jobs := []schedule.Job{{
		Name:     "key-rotation",
		Interval: cfg.Auth.RotationInterval,
		Run: func(ctx context.Context) error {
			if err := keyring.Rotate(); err != nil {
				return err
			}
			log.Warn(ctx, "signing key rotated")
			return nil
		},
	}}

	if sp, ok := provider.(*spice.Provider); ok {
		if !cfg.Query.JustInTime {
			log.Info(ctx, "preloading kernel catalog", logging.String("dir", cfg.Query.KernelDir))
			if err := sp.Bootstrap(ctx); err != nil {
				log.Error(ctx, "kernel bootstrap failed", logging.Err(err))
				os.Exit(1)
			}
		}
		if cfg.Query.RefreshInterval > 0 {
			jobs = append(jobs, schedule.Job{
				Name:     "kernel-refresh",
				Interval: cfg.Query.RefreshInterval,
				Run: func(ctx context.Context) error {
					return sp.Refresh(ctx, false)
				},
			})
		}
	}

	runner := schedule.NewRunner(log, jobs...)
	runner.Start(ctx)
	defer runner.Stop()

	metricsSrv := serveMetrics(cfg.Server.MetricsAddr, collector, log)

	api := httpapi.NewAPI(log, provider, users, keyring)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(api, httpapi.RouterOptions{
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateWindow:  cfg.Server.RateWindow,
			Metrics:     collector.Middleware,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Info(ctx, "starting API server",
		logging.String("addr", cfg.Server.Addr),
		logging.String("backend", cfg.Query.Backend))
	go func() {
		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "API server exited", logging.Err(err))
			os.Exit(1)
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "API server shutdown incomplete", logging.Err(err))
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.APICollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
