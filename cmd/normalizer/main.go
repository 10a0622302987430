// Package main provides the normalizer command-line tool: it re-resolves
// brand and model of previously crawled records against the current
// catalog, without fetching anything.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/formatter"
	"otocrawl/internal/normalizer"
	"otocrawl/internal/sink"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env", ".env", "Path to .env file with OTOCRAWL_* overrides")
	inputPath := flag.String("input", "", "Path to a crawled CSV file")
	outputPath := flag.String("output", "", "Path to output file (default: input path with the format's extension)")
	format := flag.String("format", "csv", "Output format: csv, xlsx or sqlite")
	catalogPath := flag.String("catalog", "", "Brand catalog CSV (overrides config)")

	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: normalizer -input <car_details.csv> [-output <path>] [-format csv|xlsx|sqlite]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	cfg.Output.Format = *format

	// Without -output a csv overwrites the input; other formats get a
	// sibling file so the source csv survives.
	cfg.Output.Path = sink.WithExtension(*inputPath, *format)
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("❌ Failed to load catalog: %v\n", err)
	}

	records, err := sink.ReadCSV(*inputPath)
	if err != nil {
		log.Fatalf("❌ Error reading file: %v\n", err)
	}

	fmt.Printf("📂 Reading: %s (%d records)\n", *inputPath, len(records))

	resolver := normalizer.NewResolver(cat, normalizer.OptionsFromConfig(cfg.Catalog)...)
	transformer := normalizer.NewTransformer(resolver, cfg.Output.Columns)

	unnamed := 0

	for _, rec := range records {
		if !transformer.Reresolve(rec) {
			unnamed++
		}
	}

	if unnamed > 0 {
		fmt.Printf("⚠️  %d records have no vehicle name and were left unchanged\n", unnamed)
	}

	writer, err := sink.New(cfg.Output)
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	if err := writer.Write(records); err != nil {
		log.Fatalf("❌ Error writing output: %v\n", err)
	}

	fmt.Printf("✅ Saved to: %s\n\n", cfg.Output.Path)
	fmt.Print(formatter.BrandSummary(records, cfg.Output.Columns))
}
