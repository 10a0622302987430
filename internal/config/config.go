// Package config provides configuration management for the listing crawler.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"otocrawl/internal/models"
	"otocrawl/pkg/utils"
)

// PagePlaceholder is replaced by the page number in source URL templates.
const PagePlaceholder = "@"

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one source is required")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrSourceMissingTemplate    = errors.New("url_template is required")
	ErrSourceMissingPlaceholder = errors.New("url_template must contain the page placeholder '" + PagePlaceholder + "'")
	ErrSourceInvalidBaseURL     = errors.New("base_url must be an absolute http(s) URL")
	ErrInvalidPageRange         = errors.New("pages must satisfy 1 <= start_page <= end_page")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidRequestDelay      = errors.New("crawler.request_delay_ms must be non-negative")
	ErrInvalidBufferSize        = errors.New("crawler.buffer_size_kb must be at least 1")
	ErrMissingOutputPath        = errors.New("output.path is required")
	ErrInvalidOutputFormat      = errors.New("output.format must be 'csv', 'xlsx' or 'sqlite'")
	ErrMissingCatalogPath       = errors.New("catalog.path is required")
	ErrAliasMissingBrand        = errors.New("catalog.aliases entries need a brand")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete crawler configuration.
type Config struct {
	Crawler CrawlerConfig `yaml:"crawler"`
	Catalog CatalogConfig `yaml:"catalog"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// CrawlerConfig contains crawler-specific settings.
type CrawlerConfig struct {
	UserAgent      string         `yaml:"user_agent"`
	Sources        []SourceConfig `yaml:"sources"`
	Selectors      SelectorConfig `yaml:"selectors"`
	Logging        LoggingConfig  `yaml:"logging"`
	Retry          RetryPolicy    `yaml:"retry"`
	RequestDelayMs int            `yaml:"request_delay_ms"`
	BufferSizeKb   int            `yaml:"buffer_size_kb"`
}

// SourceConfig describes one paginated listing index.
type SourceConfig struct {
	Name        string `yaml:"name"`
	URLTemplate string `yaml:"url_template"`
	BaseURL     string `yaml:"base_url"`
	StartPage   int    `yaml:"start_page"`
	EndPage     int    `yaml:"end_page"`
	Enabled     bool   `yaml:"enabled"`
}

// PageURL returns the URL of the given results page.
func (s *SourceConfig) PageURL(page int) string {
	return strings.ReplaceAll(s.URLTemplate, PagePlaceholder, strconv.Itoa(page))
}

// ResolveLink makes a listing link absolute against the source base URL.
func (s *SourceConfig) ResolveLink(link string) (string, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base_url %q: %w", s.BaseURL, err)
	}

	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", link, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// SelectorConfig holds the CSS selectors used to read listing markup.
type SelectorConfig struct {
	ListContainer   string `yaml:"list_container"`
	Item            string `yaml:"item"`
	ItemLink        string `yaml:"item_link"`
	ItemPrice       string `yaml:"item_price"`
	DetailTitle     string `yaml:"detail_title"`
	DetailInfoItem  string `yaml:"detail_info_item"`
	DetailInfoLabel string `yaml:"detail_info_label"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ShowProgress bool   `yaml:"show_progress"`
}

// CatalogConfig locates the brand/model catalog and tunes resolution.
type CatalogConfig struct {
	Path         string        `yaml:"path"`
	OtherLabel   string        `yaml:"other_label"`
	UnknownLabel string        `yaml:"unknown_label"`
	Aliases      []AliasConfig `yaml:"aliases"`
	Builder      BuilderConfig `yaml:"builder"`
}

// AliasConfig registers a compound brand and its joined alias.
type AliasConfig struct {
	Brand string `yaml:"brand"`
	Alias string `yaml:"alias"`
}

// BuilderConfig drives the catalog builder.
type BuilderConfig struct {
	URL          string `yaml:"url"`
	MenuSelector string `yaml:"menu_selector"`
	Skip         int    `yaml:"skip"`
	Limit        int    `yaml:"limit"`
	ExtraFile    string `yaml:"extra_file"`
	ExtraSkip    int    `yaml:"extra_skip"`
}

// OutputConfig defines where records are written.
type OutputConfig struct {
	Path    string         `yaml:"path"`
	Format  string         `yaml:"format"`
	Sheet   string         `yaml:"sheet"`
	Table   string         `yaml:"table"`
	Columns models.Columns `yaml:"columns"`
}

// ServerConfig configures the resolve API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration for crawling oto.com.vn.
func Default() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.5672.126 Safari/537.36",
			Sources: []SourceConfig{
				{
					Name:        "oto-used",
					URLTemplate: "https://oto.com.vn/mua-ban-xe/p@",
					BaseURL:     "https://oto.com.vn",
					StartPage:   1,
					EndPage:     5,
					Enabled:     true,
				},
				{
					Name:        "oto-new",
					URLTemplate: "https://oto.com.vn/mua-ban-xe-moi/p@",
					BaseURL:     "https://oto.com.vn",
					StartPage:   1,
					EndPage:     5,
					Enabled:     true,
				},
			},
			Selectors: DefaultSelectors(),
			Logging:   LoggingConfig{Level: "info", ShowProgress: true},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			RequestDelayMs: 1000,
			BufferSizeKb:   4096,
		},
		Catalog: CatalogConfig{
			Path:         "brands_and_models.csv",
			OtherLabel:   "Other",
			UnknownLabel: "Unknown",
			Aliases:      []AliasConfig{{Brand: "Land Rover", Alias: "LandRover"}},
			Builder: BuilderConfig{
				URL:          "https://bonbanh.com/oto",
				MenuSelector: "li.menuparent",
				Skip:         1,
				Limit:        27,
				ExtraFile:    "Other brands and models.txt",
				ExtraSkip:    1,
			},
		},
		Output: OutputConfig{
			Path:    "car_details.csv",
			Format:  "csv",
			Sheet:   "Listings",
			Table:   "listings",
			Columns: models.DefaultColumns(),
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultSelectors returns the selectors matching the target site markup.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		ListContainer:   "div#box-list-car",
		Item:            "div.item-car",
		ItemLink:        "h3.title a",
		ItemPrice:       "p.price",
		DetailTitle:     "h1.title-detail",
		DetailInfoItem:  "ul.list-info li",
		DetailInfoLabel: "label.label",
	}
}

// LoadConfig loads configuration from a YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.fillSelectors()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// fillSelectors restores defaults for selectors left blank in the file.
func (c *Config) fillSelectors() {
	d := DefaultSelectors()
	s := &c.Crawler.Selectors

	for _, pair := range []struct {
		dst *string
		def string
	}{
		{&s.ListContainer, d.ListContainer},
		{&s.Item, d.Item},
		{&s.ItemLink, d.ItemLink},
		{&s.ItemPrice, d.ItemPrice},
		{&s.DetailTitle, d.DetailTitle},
		{&s.DetailInfoItem, d.DetailInfoItem},
		{&s.DetailInfoLabel, d.DetailInfoLabel},
	} {
		if strings.TrimSpace(*pair.dst) == "" {
			*pair.dst = pair.def
		}
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

// DefaultConfigPath is read by Load when no path is given and it exists.
const DefaultConfigPath = "configs/crawler.yaml"

// Load is the command entry point: it loads envFile, reads path (or
// DefaultConfigPath when present, or Default), applies OTOCRAWL_*
// overrides and validates the result.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	cfg := Default()

	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from OTOCRAWL_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("OTOCRAWL_LOG_LEVEL"); v != "" {
		c.Crawler.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("OTOCRAWL_USER_AGENT"); v != "" {
		c.Crawler.UserAgent = v
	}

	if v := os.Getenv("OTOCRAWL_REQUEST_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OTOCRAWL_REQUEST_DELAY_MS: %w", err)
		}

		c.Crawler.RequestDelayMs = ms
	}

	if v := os.Getenv("OTOCRAWL_CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}

	if v := os.Getenv("OTOCRAWL_OUTPUT_PATH"); v != "" {
		c.Output.Path = v
	}

	if v := os.Getenv("OTOCRAWL_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = strings.ToLower(v)
	}

	if v := os.Getenv("OTOCRAWL_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Crawler.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0

	for i, src := range c.Crawler.Sources {
		if src.URLTemplate == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingTemplate, i)
		}

		if !strings.Contains(src.URLTemplate, PagePlaceholder) {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingPlaceholder, i)
		}

		if !utils.IsValidURL(src.BaseURL) {
			return fmt.Errorf("%w: source[%d]", ErrSourceInvalidBaseURL, i)
		}

		if src.StartPage < 1 || src.EndPage < src.StartPage {
			return fmt.Errorf("%w: source[%d]", ErrInvalidPageRange, i)
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	// Validate retry policy
	if c.Crawler.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Crawler.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Crawler.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Crawler.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Crawler.RequestDelayMs < 0 {
		return ErrInvalidRequestDelay
	}

	if c.Crawler.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	switch c.Output.Format {
	case "csv", "xlsx", "sqlite":
	default:
		return ErrInvalidOutputFormat
	}

	if c.Catalog.Path == "" {
		return ErrMissingCatalogPath
	}

	for i, a := range c.Catalog.Aliases {
		if strings.TrimSpace(a.Brand) == "" {
			return fmt.Errorf("%w: aliases[%d]", ErrAliasMissingBrand, i)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Crawler.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Crawler.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// GetRequestDelay returns the pause between consecutive requests.
func (c *Config) GetRequestDelay() time.Duration {
	return time.Duration(c.Crawler.RequestDelayMs) * time.Millisecond
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, MaxAttempts: %d, Output: %s (%s), Catalog: %s}",
		len(c.Crawler.Sources),
		c.Crawler.Retry.MaxAttempts,
		c.Output.Path,
		c.Output.Format,
		c.Catalog.Path,
	)
}
