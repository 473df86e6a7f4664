// Package parser turns free-form grocery list text into quantity, unit and name
// triples.
//
// Two patterns are tried in strict order. Quantity-first ("2kg rice") always wins
// when it matches, even if quantity-last ("rice 2kg") would also match, so a line
// such as "5 apples 3kg" reads as 5 of "apples 3kg". Lines matching neither
// pattern become one unit of the whole line.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"grocer/core/types"
)

// Pattern identifies which extraction rule produced a Line.
type Pattern int

const (
	// PatternFallback means neither pattern matched and defaults were used.
	PatternFallback Pattern = iota
	// PatternQuantityFirst is "<qty>[unit][x] <name>".
	PatternQuantityFirst
	// PatternQuantityLast is "<name> <qty>[unit]".
	PatternQuantityLast
)

// String returns string representation
func (p Pattern) String() string {
	switch p {
	case PatternQuantityFirst:
		return "quantity_first"
	case PatternQuantityLast:
		return "quantity_last"
	default:
		return "fallback"
	}
}

// Line is one parsed list entry with its unit already normalized.
type Line struct {
	Raw      string
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Pattern  Pattern
}

// unitTokens is the recognised unit vocabulary. Longer spellings come first so
// "liters" is never read as "l" followed by "iters".
var unitTokens = []string{
	"kilograms", "kilogram", "liters", "liter", "dozen",
	"pack", "pcs", "box", "lbs", "lb", "oz", "kg", "ml", "g", "l",
}

const number = `(\d+(?:\.\d+)?)`

var (
	units = "(" + strings.Join(unitTokens, "|") + ")"

	quantityFirst = regexp.MustCompile(`(?i)^` + number + `\s*(?:` + units + `)?\s*(?:x\b)?\s*(.*)$`)
	quantityLast  = regexp.MustCompile(`(?i)^(.*)\s+` + number + `\s*` + units + `?$`)

	priceHint = regexp.MustCompile(`(?i)\s*(?:` +
		`\(\s*` + currencyMark + `\s*` + amount + `\s*\)` +
		`|\(\s*` + amount + `\s*` + currencyMark + `\s*\)` +
		`|[-–—]\s*` + currencyMark + `\s*` + amount +
		`|[-–—]\s*` + amount + `\s*` + currencyMark +
		`)\s*$`)

	thousand = decimal.NewFromInt(1000)
	dozen    = decimal.NewFromInt(12)
)

const (
	currencyMark = `(?:[₹$€£]|rs\.?|inr|usd|eur|gbp)`
	amount       = `\d+(?:[.,]\d+)?`
)

// SplitLines breaks raw text on runs of newlines and commas, trims each piece
// and drops the empty ones.
func SplitLines(raw string) []string {
	pieces := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})

	lines := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// Parse splits raw text and parses every line.
func Parse(raw string) []Line {
	split := SplitLines(raw)
	lines := make([]Line, 0, len(split))
	for _, line := range split {
		lines = append(lines, ParseLine(line))
	}
	return lines
}

// ParseLine extracts quantity, unit and name from a single line. It never fails:
// unparseable input degrades to one unit of the lowercased line.
func ParseLine(line string) Line {
	text := StripPriceHint(strings.TrimSpace(line))
	result := Line{
		Raw:      line,
		Name:     strings.ToLower(text),
		Quantity: decimal.NewFromInt(1),
		Unit:     types.UnitCount,
		Pattern:  PatternFallback,
	}

	if m := quantityFirst.FindStringSubmatch(text); m != nil {
		if qty, ok := parseQuantity(m[1]); ok {
			result.Quantity = qty
			result.Unit = strings.ToLower(m[2])
			result.Name = strings.ToLower(strings.TrimSpace(m[3]))
			result.Pattern = PatternQuantityFirst
		}
	} else if m := quantityLast.FindStringSubmatch(text); m != nil {
		if qty, ok := parseQuantity(m[2]); ok {
			result.Name = strings.ToLower(strings.TrimSpace(m[1]))
			result.Quantity = qty
			result.Unit = strings.ToLower(m[3])
			result.Pattern = PatternQuantityLast
		}
	}

	if result.Name == "" {
		result.Name = strings.ToLower(text)
	}
	if result.Name == "" {
		// Nothing but a price annotation; keep the line so it still prices.
		result.Name = strings.ToLower(strings.TrimSpace(line))
	}
	result.Unit, result.Quantity = NormalizeUnit(result.Unit, result.Quantity)
	return result
}

// StripPriceHint removes a trailing currency annotation such as "(₹120)" or
// "- $3.50" so it cannot leak into the item name.
func StripPriceHint(text string) string {
	return strings.TrimSpace(priceHint.ReplaceAllString(text, ""))
}

// NormalizeUnit maps unit spellings onto their canonical token. Dozens are
// converted to a count.
func NormalizeUnit(unit string, qty decimal.Decimal) (string, decimal.Decimal) {
	switch strings.ToLower(unit) {
	case "kilogram", "kilograms":
		return "kg", qty
	case "liter", "liters":
		return "l", qty
	case "dozen":
		return types.UnitCount, qty.Mul(dozen)
	case "kg", "g", "l", "ml", "lb", "lbs", "oz", "pcs", "pack", "box":
		return strings.ToLower(unit), qty
	default:
		return types.UnitCount, qty
	}
}

// CostMultiplier converts a quantity into multiples of the catalog base price.
// Grams and millilitres are priced as fractions of a kilogram or litre.
func CostMultiplier(unit string, qty decimal.Decimal) decimal.Decimal {
	if unit == "g" || unit == "ml" {
		return qty.Div(thousand)
	}
	return qty
}

func parseQuantity(s string) (decimal.Decimal, bool) {
	qty, err := decimal.NewFromString(s)
	if err != nil || !qty.IsPositive() {
		return decimal.Zero, false
	}
	return qty, true
}
