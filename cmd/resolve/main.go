// Package main resolves vehicle titles to brand and model from the command
// line. Titles come from the arguments, or one per line on stdin.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"otocrawl/internal/api"
	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/formatter"
	"otocrawl/internal/normalizer"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	envFile := flag.String("env", ".env", "Path to .env file with OTOCRAWL_* overrides")
	catalogPath := flag.String("catalog", "", "Brand catalog CSV (overrides config)")
	asJSON := flag.Bool("json", false, "Print one JSON object per title instead of a table")

	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("❌ Failed to load catalog: %v\n", err)
	}

	titles := flag.Args()
	if len(titles) == 0 {
		titles, err = readLines(os.Stdin)
		if err != nil {
			log.Fatalf("❌ Failed to read titles: %v\n", err)
		}
	}

	resolver := normalizer.NewResolver(cat, normalizer.OptionsFromConfig(cfg.Catalog)...)

	items := make([]formatter.Resolution, len(titles))
	for i, title := range titles {
		items[i] = formatter.Resolution{Title: title, Result: resolver.Resolve(title)}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)

		for _, it := range items {
			if err := enc.Encode(api.Resolution{Title: it.Title, Result: it.Result}); err != nil {
				log.Fatalf("❌ Failed to encode result: %v\n", err)
			}
		}

		return
	}

	fmt.Print(formatter.ResolveTable(items))
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, scanner.Err()
}
