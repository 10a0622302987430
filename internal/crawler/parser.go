package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
	"otocrawl/internal/models"
	"otocrawl/pkg/utils"
)

// DetailPage is the content read from a listing's own page.
type DetailPage struct {
	Title      string
	Attributes []models.Attribute
}

// Parser extracts listing data from page markup.
type Parser struct {
	selectors config.SelectorConfig
}

// NewParser creates a parser with the default selectors.
func NewParser() *Parser {
	return NewParserWithSelectors(config.DefaultSelectors())
}

// NewParserWithSelectors creates a parser with custom selectors.
func NewParserWithSelectors(selectors config.SelectorConfig) *Parser {
	return &Parser{selectors: selectors}
}

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// ParseListingPage returns the listing cards of a results page in page
// order. Items are looked up inside the list container when the page has
// one, otherwise anywhere in the document.
func (p *Parser) ParseListingPage(html string) ([]models.ListingEntry, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	scope := doc.Selection
	if p.selectors.ListContainer != "" {
		if container := doc.Find(p.selectors.ListContainer).First(); container.Length() > 0 {
			scope = container
		}
	}

	var entries []models.ListingEntry

	scope.Find(p.selectors.Item).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(p.selectors.ItemLink).First()
		href, _ := link.Attr("href")

		entries = append(entries, models.ListingEntry{
			Title: utils.CleanText(link.Text()),
			Price: utils.CleanText(item.Find(p.selectors.ItemPrice).First().Text()),
			Link:  strings.TrimSpace(href),
		})
	})

	return entries, nil
}

// ParseDetailPage reads the title and the labelled attribute list of a
// listing page. Items without a label are skipped; the value is the item
// text with its label removed.
func (p *Parser) ParseDetailPage(html string) (*DetailPage, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	page := &DetailPage{
		Title: utils.CleanText(doc.Find(p.selectors.DetailTitle).First().Text()),
	}

	doc.Find(p.selectors.DetailInfoItem).Each(func(_ int, li *goquery.Selection) {
		label := utils.CleanText(li.Find(p.selectors.DetailInfoLabel).First().Text())
		if label == "" {
			return
		}

		text := utils.CleanText(li.Text())
		value := utils.CleanText(strings.Replace(text, label, "", 1))

		page.Attributes = append(page.Attributes, models.Attribute{Label: label, Value: value})
	})

	return page, nil
}

// ParseBrandMenu reads a brand navigation menu: each matched item lists
// the brand first, then its models, as link or span texts. The first skip
// items are ignored and at most limit are read (limit <= 0 reads all).
func (p *Parser) ParseBrandMenu(html, selector string, skip, limit int) ([]catalog.Brand, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	var brands []catalog.Brand

	doc.Find(selector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i < skip {
			return true
		}

		if limit > 0 && len(brands) >= limit {
			return false
		}

		var labels []string

		item.Find("a, span").Each(func(_ int, s *goquery.Selection) {
			if text := utils.CleanText(s.Text()); text != "" {
				labels = append(labels, text)
			}
		})

		if len(labels) > 0 {
			brands = append(brands, catalog.Brand{Name: labels[0], Models: labels[1:]})
		}

		return true
	})

	return brands, nil
}
