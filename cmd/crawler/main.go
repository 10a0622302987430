// Package main provides the crawler command-line tool: it crawls used-car
// listings, resolves brand and model for each, and writes the records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/crawler"
	"otocrawl/internal/formatter"
	"otocrawl/internal/logger"
	"otocrawl/internal/normalizer"
	"otocrawl/internal/sink"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default configs/crawler.yaml if present)")
	envFile := flag.String("env", ".env", "Path to .env file with OTOCRAWL_* overrides")
	output := flag.String("output", "", "Output file path (overrides config)")
	format := flag.String("format", "", "Output format: csv, xlsx or sqlite (overrides config)")
	catalogPath := flag.String("catalog", "", "Brand catalog CSV (overrides config)")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	applyFlags(cfg, *output, *format, *catalogPath)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid options: %v\n", err)
	}

	if *writeConfig != "" {
		if err := cfg.SaveConfig(*writeConfig); err != nil {
			log.Fatalf("❌ Failed to write config: %v\n", err)
		}

		fmt.Printf("✅ Configuration written to: %s\n", *writeConfig)

		return
	}

	l := logger.NewLogger(cfg.Crawler.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Error("crawl failed", "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, output, format, catalogPath string) {
	if output != "" {
		cfg.Output.Path = output
	}

	if format != "" {
		cfg.Output.Format = format
	}

	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
}

func run(ctx context.Context, cfg *config.Config, l *logger.Logger) error {
	printCrawlerHeader(cfg)

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	l.Info("catalog loaded", "path", cfg.Catalog.Path, "brands", cat.Len())

	resolver := normalizer.NewResolver(cat, normalizer.OptionsFromConfig(cfg.Catalog)...)
	processor := normalizer.NewProcessor(resolver, cfg.Output.Columns)

	writer, err := sink.New(cfg.Output)
	if err != nil {
		return err
	}

	urls := crawler.NewURLManager(cfg.Crawler.Sources)
	client := crawler.NewClientWithDeps(
		crawler.NewScraperWithConfig(&cfg.Crawler),
		crawler.NewParserWithSelectors(cfg.Crawler.Selectors),
		processor,
		l,
	)

	l.Info("crawl started", "sources", urls.GetSourceCount(), "pages", len(urls.Pages()))

	result, crawlErr := client.Crawl(ctx, urls)
	if crawlErr != nil && !errors.Is(crawlErr, context.Canceled) {
		return crawlErr
	}

	if crawlErr != nil {
		l.Warn("crawl interrupted, saving partial results", "records", len(result.Records))
	}

	if cfg.Crawler.Logging.ShowProgress {
		urls.LogAttemptSummary(l)
	}

	if err := writer.Write(result.Records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	l.Info("records saved", "path", cfg.Output.Path, "format", cfg.Output.Format, "records", len(result.Records))

	fmt.Printf("\n📈 Summary:\n")
	fmt.Printf("  Pages: %d (%d failed)\n", result.Stats.Pages, result.Stats.PagesFailed)
	fmt.Printf("  Listings: %d (%d without detail page, %d skipped)\n",
		result.Stats.Listings, result.Stats.DetailsFailed, result.Stats.Skipped)
	fmt.Printf("  Output: %s (%s)\n\n", cfg.Output.Path, cfg.Output.Format)
	fmt.Print(formatter.BrandSummary(result.Records, cfg.Output.Columns))

	fmt.Println("\n✨ Crawling complete!")

	return nil
}

func printCrawlerHeader(cfg *config.Config) {
	fmt.Println("🕷️  otocrawl listing crawler")
	fmt.Printf("Enabled sources: %d\n", len(cfg.GetEnabledSources()))
	fmt.Printf("Retry policy: max %d attempts, %.1fx backoff\n",
		cfg.Crawler.Retry.MaxAttempts,
		cfg.Crawler.Retry.BackoffMultiplier)
	fmt.Printf("Request delay: %s\n", cfg.GetRequestDelay())
	fmt.Printf("Output: %s (%s format)\n", cfg.Output.Path, cfg.Output.Format)
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: ./bin/crawler [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/crawler")
	fmt.Println("  ./bin/crawler -config configs/crawler.yaml -format xlsx -output car_details.xlsx")
	fmt.Println("  ./bin/crawler -write-config configs/crawler.yaml")
}
