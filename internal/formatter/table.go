// Package formatter renders crawl results as aligned text tables for the
// terminal. Widths are display widths, so Vietnamese diacritics and wide
// runes line up.
package formatter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"otocrawl/internal/models"
	"otocrawl/internal/normalizer"
	"otocrawl/pkg/utils"
)

const (
	// minColumnWidth keeps separator cells at least "---".
	minColumnWidth = 3
	// maxNameWidth caps titles, brands and models in summary tables.
	maxNameWidth = 60
)

// Table renders header and rows as a markdown-style table. Short rows are
// padded with empty cells; cells are trimmed.
func Table(header []string, rows [][]string) string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, trimCells(header))

	for _, row := range rows {
		table = append(table, trimCells(row))
	}

	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	var sb strings.Builder

	writeRow(&sb, table[0], colWidths)

	sb.WriteString("|")

	for _, w := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")

	for _, row := range table[1:] {
		writeRow(&sb, row, colWidths)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, colWidths []int) {
	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, width))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}

func trimCells(row []string) []string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.TrimSpace(strings.ReplaceAll(c, "|", "/"))
	}

	return cells
}

// Resolution pairs a title with the brand and model resolved for it.
type Resolution struct {
	Title string
	normalizer.Result
}

// ResolveTable renders resolutions one per row.
func ResolveTable(items []Resolution) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{utils.TruncateString(it.Title, maxNameWidth), it.Brand, it.Model}
	}

	return Table([]string{"Title", "Brand", "Model"}, rows)
}

// BrandSummary counts records per (brand, model), most frequent first.
// Ties are ordered by brand then model.
func BrandSummary(records []*models.Record, columns models.Columns) string {
	columns = columns.WithDefaults()

	type pair struct{ brand, model string }

	counts := make(map[pair]int)

	for _, rec := range records {
		if rec == nil {
			continue
		}

		brand, _ := rec.Get(columns.Brand)
		model, _ := rec.Get(columns.Model)
		counts[pair{brand, model}]++
	}

	keys := make([]pair, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}

		if a.brand != b.brand {
			return a.brand < b.brand
		}

		return a.model < b.model
	})

	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{
			utils.TruncateString(k.brand, maxNameWidth),
			utils.TruncateString(k.model, maxNameWidth),
			strconv.Itoa(counts[k]),
		}
	}

	return Table([]string{columns.Brand, columns.Model, "Listings"}, rows)
}
