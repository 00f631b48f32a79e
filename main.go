package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"efi-app/internal/config"
	"efi-app/internal/logging"
	"efi-app/internal/model"
	"efi-app/internal/observability"
	"efi-app/internal/store"
	"efi-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/go-kit/kit/log/level"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	metrics := observability.Default()

	catalog, err := model.LoadCatalog(cfg.CompetitionsFile)
	if err != nil {
		level.Error(logger).Log("msg", "load competitions", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	base, backend, err := store.Open(ctx, store.Options{
		Backend:               cfg.StoreBackend,
		MongoURI:              cfg.MongoURI,
		MongoDatabase:         cfg.MongoDatabase,
		PostgresDSN:           cfg.PostgresDSN,
		PostgresMigrationsDir: cfg.PostgresMigrationsDir,
		SQLitePath:            cfg.SQLitePath,
		SQLiteMigrationsDir:   cfg.SQLiteMigrationsDir,
		MaxOpenConns:          cfg.MaxOpenConns,
		MaxIdleConns:          cfg.MaxIdleConns,
		Seed:                  !cfg.Prod(),
	})
	cancel()
	if err != nil {
		level.Error(logger).Log("msg", "open store", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "store ready", "backend", backend, "cache_ttl", cfg.CacheTTL)

	appStore := store.NewCached(store.NewInstrumented(base, backend, metrics), cfg.CacheTTL, metrics)
	defer appStore.Close()

	server := web.NewServer(appStore, web.Options{
		Catalog:     catalog,
		Logger:      logger,
		Metrics:     metrics,
		Location:    cfg.Location(),
		CORSOrigins: cfg.CORSOrigins,
	})
	handler := server.Routes()

	if config.Lambda() {
		level.Info(logger).Log("msg", "starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	stopPrune := make(chan struct{})
	go pruneCache(appStore, cfg.CacheTTL, stopPrune)

	term := make(chan os.Signal, 1)
	signal.Notify(term, os.Interrupt, syscall.SIGTERM)

	listenAddr := ":" + cfg.Port
	httpSrv := &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	level.Info(logger).Log("msg", "listening for HTTP", "addr", listenAddr)
	go func() {
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "error listening for HTTP", "err", err)
			os.Exit(1)
		}
	}()

	s := <-term
	level.Info(logger).Log("msg", "shutting down due to signal", "signal", s)
	close(stopPrune)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "shutdown", "err", err)
	}
	level.Info(logger).Log("msg", "shutdown complete")
}

// pruneCache drops expired cache entries once per ttl until stop is closed.
func pruneCache(c *store.Cached, ttl time.Duration, stop <-chan struct{}) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Prune()
		case <-stop:
			return
		}
	}
}
