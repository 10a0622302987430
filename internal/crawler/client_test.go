package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/logger"
	"otocrawl/internal/models"
	"otocrawl/internal/normalizer"
)

// fakeFetcher serves canned pages by URL and saved pages by path. Missing
// URLs fail with a 404, missing paths with fs.ErrNotExist.
type fakeFetcher struct {
	pages map[string]string
	files map[string]string
	calls []string
}

func (f *fakeFetcher) ReadLocalFile(path string) (string, error) {
	body, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("failed to open saved page %s: %w", path, fs.ErrNotExist)
	}

	return body, nil
}

func (f *fakeFetcher) ScrapeWithMetrics(_ context.Context, url string) (string, int, time.Duration, error) {
	f.calls = append(f.calls, url)

	body, ok := f.pages[url]
	if !ok {
		return "", http.StatusNotFound, time.Millisecond, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, http.StatusNotFound)
	}

	return body, http.StatusOK, time.Millisecond, nil
}

func testProcessor() *normalizer.Processor {
	cat := catalog.New(
		catalog.Brand{Name: "Rover", Models: []string{"75"}},
		catalog.Brand{Name: "Land Rover", Models: []string{"Range Rover Evoque", "Defender"}},
		catalog.Brand{Name: "Toyota", Models: []string{"Vios"}},
	)

	return normalizer.NewProcessor(normalizer.NewResolver(cat), models.DefaultColumns())
}

func testSource(name string, endPage int) config.SourceConfig {
	return config.SourceConfig{
		Name:        name,
		URLTemplate: "https://cars.test/" + name + "/p@",
		BaseURL:     "https://cars.test",
		StartPage:   1,
		EndPage:     endPage,
		Enabled:     true,
	}
}

const cardsPage = `<div id="box-list-car">
<div class="item-car"><h3 class="title"><a href="/xe/1">Land Rover Range Rover Evoque 2020</a></h3><p class="price">2 tỷ</p></div>
<div class="item-car"><h3 class="title"><a href="/xe/2">Toyota Vios G</a></h3><p class="price">500 triệu</p></div>
<div class="item-car"><h3 class="title"><a></a></h3></div>
</div>`

const evoqueDetail = `<h1 class="title-detail">Land Rover Range Rover Evoque 2020</h1>
<ul class="list-info"><li><label class="label">Năm SX</label>2020</li></ul>`

func TestURLManager_Pages(t *testing.T) {
	disabled := testSource("off", 3)
	disabled.Enabled = false

	um := NewURLManager([]config.SourceConfig{testSource("used", 2), disabled, testSource("new", 1)})

	if um.GetSourceCount() != 2 {
		t.Errorf("GetSourceCount = %d, want 2", um.GetSourceCount())
	}

	var urls []string
	for _, p := range um.Pages() {
		urls = append(urls, p.URL)
	}

	want := []string{"https://cars.test/used/p1", "https://cars.test/used/p2", "https://cars.test/new/p1"}
	if fmt.Sprint(urls) != fmt.Sprint(want) {
		t.Errorf("Pages = %v, want %v", urls, want)
	}
}

func TestURLManager_AttemptStats(t *testing.T) {
	um := NewURLManager(nil)
	um.RecordAttempt("a", nil, 200, time.Millisecond)
	um.RecordAttempt("b", fmt.Errorf("boom"), 503, time.Millisecond)
	um.RecordAttempt("b", nil, 200, time.Millisecond)
	um.RecordAttempt("c", fmt.Errorf("boom"), 404, time.Millisecond)

	stats := um.GetAttemptStats()
	if stats.TotalURLs != 3 || stats.SuccessfulURLs != 2 || stats.FailedURLs != 1 {
		t.Errorf("url stats = %+v", stats)
	}

	if stats.TotalAttempts != 4 || stats.FailedAttempts != 2 {
		t.Errorf("attempt stats = %+v", stats)
	}

	if log := um.GetAttemptLog("b"); len(log) != 2 || log[0].Success || !log[1].Success {
		t.Errorf("attempt log = %+v", log)
	}

	var buf bytes.Buffer

	um.LogAttemptSummary(logger.NewLoggerWithWriter("info", &buf))

	out := buf.String()
	if !strings.Contains(out, "url=c") || !strings.Contains(out, "status=404") {
		t.Errorf("summary should report the failed URL, got: %s", out)
	}

	if strings.Contains(out, "url=b") {
		t.Errorf("a URL that recovered should not be reported, got: %s", out)
	}

	if !strings.Contains(out, "fetch summary") {
		t.Errorf("summary line missing: %s", out)
	}
}

func TestClient_Crawl(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://cars.test/used/p1": cardsPage,
		"https://cars.test/xe/1":    evoqueDetail,
	}}

	client := NewClientWithDeps(fetcher, NewParser(), testProcessor(), nil)
	urls := NewURLManager([]config.SourceConfig{testSource("used", 2)})

	result, err := client.Crawl(context.Background(), urls)
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	want := Stats{Pages: 2, PagesFailed: 1, Listings: 3, DetailsFailed: 1, Skipped: 1}
	if result.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Stats, want)
	}

	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	cols := models.DefaultColumns()

	first := result.Records[0]
	if v, _ := first.Get(cols.Brand); v != "Land Rover" {
		t.Errorf("brand = %q, want Land Rover", v)
	}

	if v, _ := first.Get(cols.Model); v != "Range Rover Evoque" {
		t.Errorf("model = %q", v)
	}

	if v, _ := first.Get("Năm SX"); v != "2020" {
		t.Errorf("attribute = %q", v)
	}

	if v, _ := first.Get(cols.PriceValue); v != "2000000000" {
		t.Errorf("price value = %q", v)
	}

	// Detail page missing: the card title is used.
	second := result.Records[1]
	if v, _ := second.Get(cols.Name); v != "Toyota Vios G" {
		t.Errorf("name = %q", v)
	}

	if v, _ := second.Get(cols.Model); v != "Vios" {
		t.Errorf("model = %q", v)
	}

	stats := urls.GetAttemptStats()
	if stats.TotalURLs != 4 || stats.FailedURLs != 2 {
		t.Errorf("attempt stats = %+v", stats)
	}
}

func TestClient_Crawl_CancelledReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &cancellingFetcher{
		fakeFetcher: fakeFetcher{pages: map[string]string{"https://cars.test/used/p1": cardsPage}},
		cancel:      cancel,
		after:       2,
	}

	client := NewClientWithDeps(fetcher, NewParser(), testProcessor(), nil)

	result, err := client.Crawl(ctx, NewURLManager([]config.SourceConfig{testSource("used", 5)}))
	if err == nil {
		t.Fatal("expected context error")
	}

	if len(result.Records) != 1 {
		t.Errorf("expected 1 partial record, got %d", len(result.Records))
	}

	if result.Stats.Pages != 1 {
		t.Errorf("Pages = %d, want 1", result.Stats.Pages)
	}
}

// cancellingFetcher cancels the crawl once it has served after requests.
type cancellingFetcher struct {
	fakeFetcher
	cancel context.CancelFunc
	after  int
}

func (f *cancellingFetcher) ScrapeWithMetrics(ctx context.Context, url string) (string, int, time.Duration, error) {
	body, status, d, err := f.fakeFetcher.ScrapeWithMetrics(ctx, url)
	if len(f.calls) >= f.after {
		f.cancel()
	}

	return body, status, d, err
}

func TestClient_Crawl_AgainstServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list/p1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div class="item-car"><h3 class="title"><a href="/xe/1">Card</a></h3><p class="price">1 tỷ 200 triệu</p></div>`))
	})
	mux.HandleFunc("/xe/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<h1 class="title-detail">LandRover Defender 110</h1>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	source := config.SourceConfig{
		Name:        "local",
		URLTemplate: srv.URL + "/list/p@",
		BaseURL:     srv.URL,
		StartPage:   1,
		EndPage:     1,
		Enabled:     true,
	}

	client := NewClientWithDeps(NewScraperWithConfig(testCrawlerConfig()), NewParser(), testProcessor(), nil)

	result, err := client.Crawl(context.Background(), NewURLManager([]config.SourceConfig{source}))
	if err != nil {
		t.Fatalf("Crawl failed: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	cols := models.DefaultColumns()
	rec := result.Records[0]

	if v, _ := rec.Get(cols.Brand); v != "Land Rover" {
		t.Errorf("brand = %q", v)
	}

	if v, _ := rec.Get(cols.Model); v != "Defender" {
		t.Errorf("model = %q", v)
	}

	if v, _ := rec.Get(cols.PriceValue); v != "1200000000" {
		t.Errorf("price value = %q", v)
	}
}
