package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
)

const extraMenuHTML = `<ul>
<li class="menuparent"><a>Hãng khác</a></li>
<li class="menuparent"><a>Toyota</a><ul><li><a>Wigo</a></li></ul></li>
<li class="menuparent"><a>Rover</a><ul><li><a>75</a></li></ul></li>
</ul>`

func builderConfig(extra string) config.BuilderConfig {
	return config.BuilderConfig{
		URL:          "https://ref.test/oto",
		MenuSelector: "li.menuparent",
		Skip:         1,
		Limit:        27,
		ExtraFile:    extra,
		ExtraSkip:    1,
	}
}

func TestCatalogBuilder_Build(t *testing.T) {
	extra := "Other brands and models.txt"

	fetcher := &fakeFetcher{
		pages: map[string]string{"https://ref.test/oto": brandMenuHTML},
		files: map[string]string{extra: extraMenuHTML},
	}

	cat, err := NewCatalogBuilder(fetcher, NewParser(), builderConfig(extra), nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []catalog.Brand{
		{Name: "Toyota", Models: []string{"Wigo"}},
		{Name: "Land Rover", Models: []string{"Range Rover"}},
		{Name: "Haima"},
		{Name: "Rover", Models: []string{"75"}},
	}

	if got := cat.Brands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Brands = %#v\nwant %#v", got, want)
	}
}

func TestCatalogBuilder_ScraperReadsSavedMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(brandMenuHTML))
	}))
	defer srv.Close()

	extra := filepath.Join(t.TempDir(), "Other brands and models.txt")
	if err := os.WriteFile(extra, []byte(extraMenuHTML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := builderConfig(extra)
	cfg.URL = srv.URL

	cat, err := NewCatalogBuilder(NewScraperWithConfig(testCrawlerConfig()), NewParser(), cfg, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if models, ok := cat.Models("Rover"); !ok || !reflect.DeepEqual(models, []string{"75"}) {
		t.Errorf("Rover from saved menu = (%v, %v)", models, ok)
	}

	cfg.ExtraFile = filepath.Join(t.TempDir(), "absent.txt")

	cat, err = NewCatalogBuilder(NewScraperWithConfig(testCrawlerConfig()), NewParser(), cfg, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build with missing saved menu failed: %v", err)
	}

	if cat.Len() != 3 {
		t.Errorf("Len = %d, want 3", cat.Len())
	}
}

func TestCatalogBuilder_MissingExtraFile(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://ref.test/oto": brandMenuHTML}}
	cfg := builderConfig("absent.txt")

	cat, err := NewCatalogBuilder(fetcher, NewParser(), cfg, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if cat.Len() != 3 {
		t.Errorf("Len = %d, want 3", cat.Len())
	}
}

func TestCatalogBuilder_Errors(t *testing.T) {
	_, err := NewCatalogBuilder(&fakeFetcher{}, NewParser(), builderConfig(""), nil).Build(context.Background())
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("expected fetch error, got %v", err)
	}

	empty := &fakeFetcher{pages: map[string]string{"https://ref.test/oto": "<html></html>"}}

	_, err = NewCatalogBuilder(empty, NewParser(), builderConfig(""), nil).Build(context.Background())
	if !errors.Is(err, catalog.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}
