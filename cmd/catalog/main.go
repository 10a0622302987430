// Package main builds the brand catalog CSV from a reference site's brand
// menu.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"otocrawl/internal/config"
	"otocrawl/internal/crawler"
	"otocrawl/internal/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env", ".env", "Path to .env file with OTOCRAWL_* overrides")
	output := flag.String("output", "", "Catalog CSV to write (default catalog.path)")
	url := flag.String("url", "", "Brand menu page (overrides config)")
	extra := flag.String("extra", "", "Saved HTML file with more brands (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *output != "" {
		cfg.Catalog.Path = *output
	}

	if *url != "" {
		cfg.Catalog.Builder.URL = *url
	}

	if *extra != "" {
		cfg.Catalog.Builder.ExtraFile = *extra
	}

	l := logger.NewLogger(cfg.Crawler.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	builder := crawler.NewCatalogBuilder(
		crawler.NewScraperWithConfig(&cfg.Crawler),
		crawler.NewParser(),
		cfg.Catalog.Builder,
		l,
	)

	fmt.Printf("⏳ Fetching brand and model data from %s...\n", cfg.Catalog.Builder.URL)

	cat, err := builder.Build(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to build catalog: %v\n", err)
	}

	if err := cat.WriteFile(cfg.Catalog.Path); err != nil {
		log.Fatalf("❌ Failed to save catalog: %v\n", err)
	}

	fmt.Printf("✅ %d brands saved to %s\n", cat.Len(), cfg.Catalog.Path)
}
