package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/logger"
)

// MenuSource fetches the live brand menu and reads saved menu pages.
// *Scraper implements it.
type MenuSource interface {
	Fetcher
	ReadLocalFile(path string) (string, error)
}

// CatalogBuilder assembles a brand catalog from a reference site's brand
// menu, optionally merged with a saved copy of a second menu.
type CatalogBuilder struct {
	fetcher MenuSource
	parser  *Parser
	cfg     config.BuilderConfig
	log     *logger.Logger
}

// NewCatalogBuilder creates a catalog builder.
func NewCatalogBuilder(fetcher MenuSource, parser *Parser, cfg config.BuilderConfig, log *logger.Logger) *CatalogBuilder {
	if log == nil {
		log = logger.Discard()
	}

	return &CatalogBuilder{fetcher: fetcher, parser: parser, cfg: cfg, log: log}
}

// Build fetches the menu page and merges the extra file. Brands from the
// extra file that already exist replace the models but keep their place.
// A missing extra file is logged and skipped.
func (b *CatalogBuilder) Build(ctx context.Context) (*catalog.Catalog, error) {
	html, _, _, err := b.fetcher.ScrapeWithMetrics(ctx, b.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brand menu: %w", err)
	}

	brands, err := b.parser.ParseBrandMenu(html, b.cfg.MenuSelector, b.cfg.Skip, b.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse brand menu: %w", err)
	}

	b.log.Info("brand menu parsed", "url", b.cfg.URL, "brands", len(brands))

	if b.cfg.ExtraFile != "" {
		extra, err := b.readExtra()

		switch {
		case errors.Is(err, fs.ErrNotExist):
			b.log.Warn("extra brand file not found, skipping", "path", b.cfg.ExtraFile)
		case err != nil:
			return nil, err
		default:
			b.log.Info("extra brands merged", "path", b.cfg.ExtraFile, "brands", len(extra))
			brands = append(brands, extra...)
		}
	}

	cat := catalog.New(brands...)
	if cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}

	return cat, nil
}

func (b *CatalogBuilder) readExtra() ([]catalog.Brand, error) {
	html, err := b.fetcher.ReadLocalFile(b.cfg.ExtraFile)
	if err != nil {
		return nil, err
	}

	brands, err := b.parser.ParseBrandMenu(html, b.cfg.MenuSelector, b.cfg.ExtraSkip, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", b.cfg.ExtraFile, err)
	}

	return brands, nil
}
