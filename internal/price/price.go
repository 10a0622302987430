// Package price converts Vietnamese listing prices such as "1 tỷ 250 triệu"
// into amounts in đồng.
package price

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	// amount, optional "trăm" (hundred), magnitude word; the decimal mark
	// may be ',' or '.'.
	unitPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:(trăm|tram)\s*)?(tỷ|ty|triệu|trieu|tr|nghìn|ngàn|ngan)`)
	digitPattern = regexp.MustCompile(`\d`)
)

var hundred = decimal.NewFromInt(100)

var units = map[string]decimal.Decimal{
	"tỷ":    decimal.NewFromInt(1_000_000_000),
	"ty":    decimal.NewFromInt(1_000_000_000),
	"triệu": decimal.NewFromInt(1_000_000),
	"trieu": decimal.NewFromInt(1_000_000),
	"tr":    decimal.NewFromInt(1_000_000),
	"nghìn": decimal.NewFromInt(1_000),
	"ngàn":  decimal.NewFromInt(1_000),
	"ngan":  decimal.NewFromInt(1_000),
}

// Parse returns the amount in đồng. ok is false for text without a number,
// e.g. "Liên hệ".
func Parse(s string) (amount decimal.Decimal, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}

	total, matched := decimal.Zero, false

	for _, m := range unitPattern.FindAllStringSubmatchIndex(s, -1) {
		// A unit word must end the word: "tr" in "trăm" or "trong" is not one.
		if r, _ := utf8.DecodeRuneInString(s[m[1]:]); unicode.IsLetter(r) {
			continue
		}

		n, err := decimal.NewFromString(strings.ReplaceAll(s[m[2]:m[3]], ",", "."))
		if err != nil {
			return decimal.Zero, false
		}

		if m[4] >= 0 {
			n = n.Mul(hundred)
		}

		total = total.Add(n.Mul(units[s[m[6]:m[7]]]))
		matched = true
	}

	if matched {
		return total, true
	}

	// Plain figures like "2.350.000.000 đ" use '.' or ',' as grouping.
	digits := strings.Join(digitPattern.FindAllString(s, -1), "")
	if digits == "" {
		return decimal.Zero, false
	}

	n, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}

	return n, true
}

// Format renders an amount as a plain integer string, or "" when !ok.
func Format(amount decimal.Decimal, ok bool) string {
	if !ok {
		return ""
	}

	return amount.Round(0).String()
}
