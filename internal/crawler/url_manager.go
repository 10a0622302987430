package crawler

import (
	"fmt"
	"sync"
	"time"

	"otocrawl/internal/config"
	"otocrawl/internal/logger"
)

// Page is one results page of a source.
type Page struct {
	Source config.SourceConfig
	Number int
	URL    string
}

// AttemptResult records the outcome of one fetch.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// URLManager enumerates the results pages of the enabled sources and keeps
// a log of every fetch made while crawling them.
type URLManager struct {
	mu         sync.Mutex
	sources    []config.SourceConfig
	attemptLog map[string][]AttemptResult
	order      []string
}

// NewURLManager creates a URL manager over the given sources. Disabled
// sources are ignored.
func NewURLManager(sources []config.SourceConfig) *URLManager {
	enabled := make([]config.SourceConfig, 0, len(sources))

	for _, s := range sources {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}

	return &URLManager{
		sources:    enabled,
		attemptLog: make(map[string][]AttemptResult),
	}
}

// Pages returns every page to crawl, source by source, in page order.
func (um *URLManager) Pages() []Page {
	var pages []Page

	for _, source := range um.sources {
		for n := source.StartPage; n <= source.EndPage; n++ {
			pages = append(pages, Page{Source: source, Number: n, URL: source.PageURL(n)})
		}
	}

	return pages
}

// GetSourceCount returns the number of enabled sources.
func (um *URLManager) GetSourceCount() int {
	return len(um.sources)
}

// RecordAttempt records the result of a fetch.
func (um *URLManager) RecordAttempt(url string, err error, statusCode int, duration time.Duration) {
	um.mu.Lock()
	defer um.mu.Unlock()

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	if _, seen := um.attemptLog[url]; !seen {
		um.order = append(um.order, url)
	}

	um.attemptLog[url] = append(um.attemptLog[url], AttemptResult{
		URL:        url,
		Success:    err == nil,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// GetAttemptLog returns the attempt log for a URL.
func (um *URLManager) GetAttemptLog(url string) []AttemptResult {
	um.mu.Lock()
	defer um.mu.Unlock()

	return append([]AttemptResult(nil), um.attemptLog[url]...)
}

// GetAttemptStats returns statistics about fetch attempts.
func (um *URLManager) GetAttemptStats() AttemptStats {
	um.mu.Lock()
	defer um.mu.Unlock()

	stats := AttemptStats{TotalURLs: len(um.attemptLog)}

	for _, results := range um.attemptLog {
		stats.TotalAttempts += len(results)

		urlSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				urlSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if urlSuccess {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// LogAttemptSummary logs URLs whose last fetch failed, in first-fetch
// order, then the overall counts.
func (um *URLManager) LogAttemptSummary(l *logger.Logger) {
	um.mu.Lock()
	order := append([]string(nil), um.order...)
	um.mu.Unlock()

	for _, url := range order {
		results := um.GetAttemptLog(url)
		if last := results[len(results)-1]; !last.Success {
			l.Warn("fetch failed", "url", url, "status", last.StatusCode, "attempts", len(results), "error", last.Error)
		}
	}

	l.Info("fetch summary", "stats", um.GetAttemptStats().String())
}
