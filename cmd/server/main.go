// Package main serves the brand and model resolver over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otocrawl/internal/api"
	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/logger"
	"otocrawl/internal/normalizer"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env", ".env", "Path to .env file with OTOCRAWL_* overrides")
	addr := flag.String("addr", "", "Listen address (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	l := logger.NewLogger(cfg.Crawler.Logging.Level)

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("❌ Failed to load catalog: %v\n", err)
	}

	resolver := normalizer.NewResolver(cat, normalizer.OptionsFromConfig(cfg.Catalog)...)
	router := api.NewRouter(api.NewHandler(cat, resolver, l))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("shutdown failed", "error", err)
		}
	}()

	l.Info("resolve API listening", "addr", cfg.Server.Addr, "brands", cat.Len())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
