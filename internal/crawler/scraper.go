package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"otocrawl/internal/config"
	"otocrawl/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Scraper fetches pages with config-driven retry and a shared request pace.
// Every attempt, retries included, waits for the limiter.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	limiter      *rate.Limiter
	userAgent    string
	bufferSizeKb int
}

// NewScraperWithConfig creates a scraper from crawler settings.
func NewScraperWithConfig(cfg *config.CrawlerConfig) *Scraper {
	retry := cfg.Retry

	return &Scraper{
		client: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retryPolicy:  &retry,
		limiter:      newLimiter(time.Duration(cfg.RequestDelayMs) * time.Millisecond),
		userAgent:    cfg.UserAgent,
		bufferSizeKb: cfg.BufferSizeKb,
	}
}

// newLimiter allows one request per delay; zero disables pacing.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(delay), 1)
}

// ScrapeWithMetrics returns (content, statusCode, duration, error).
func (s *Scraper) ScrapeWithMetrics(ctx context.Context, url string) (string, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", lastStatusCode, totalDuration, fmt.Errorf("rate limit wait failed: %w", err)
		}

		startTime := time.Now()
		body, statusCode, err := s.fetch(ctx, url)
		totalDuration += time.Since(startTime)
		lastStatusCode = statusCode

		if err == nil {
			return body, statusCode, totalDuration, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, s.retryPolicy.MaxAttempts, err)

		if ctx.Err() != nil || !retryable(statusCode) || attempt == s.retryPolicy.MaxAttempts {
			break
		}

		if err := sleep(ctx, s.retryPolicy.GetRetryDelay(attempt+1)); err != nil {
			return "", lastStatusCode, totalDuration, err
		}
	}

	return "", lastStatusCode, totalDuration, lastErr
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders(s.userAgent, nil)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

// ReadLocalFile reads a saved copy of a page. The same body limit as a
// fetched page applies.
func (s *Scraper) ReadLocalFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open saved page %s: %w", filePath, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, int64(s.bufferSizeKb)*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read saved page %s: %w", filePath, err)
	}

	return string(body), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether a failed attempt is worth repeating. Status 0
// means the request never got a response (network error).
func retryable(statusCode int) bool {
	switch statusCode {
	case 0,
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}
