// Package output renders recommendations for people and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"grocer/core/types"
	"grocer/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *Result) error
}

// Result is a recommendation plus the context it was produced in
type Result struct {
	Recommendation *types.Recommendation `json:"recommendation"`
	Metadata       Metadata              `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the recommendation was computed
	Timestamp string `json:"timestamp"`

	// Duration is how long it took
	Duration string `json:"duration"`

	// Version is the tool version
	Version string `json:"version"`

	UserID string `json:"userId,omitempty"`

	// SavedID is set when the list was stored in history
	SavedID string `json:"savedId,omitempty"`
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding the CLI and JSON formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(&CLIFormatter{ShowStores: true})
	r.Register(&JSONFormatter{Indent: "  "})
	return r
}

// Register adds a formatter, replacing one with the same format
func (r *Registry) Register(f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format name
func (r *Registry) Get(format string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[Format(strings.ToLower(format))]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", format)
	}
	return f, nil
}

// JSONFormatter writes the result as JSON
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(result)
}

// CLIFormatter draws a boxed summary
type CLIFormatter struct {
	// ShowStores lists every store's adjusted cost
	ShowStores bool
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

const boxWidth = 71

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, result *Result) error {
	rec := result.Recommendation
	if rec == nil {
		return errors.Input("nothing to render")
	}
	cur := rec.Currency

	p := &printer{w: w}
	p.rule("┌", "┐")
	p.center("GROCERY LIST RECOMMENDATION")
	p.rule("├", "┤")

	if len(rec.Items) == 0 {
		p.row("No items recognised", "")
	}
	for _, item := range rec.Items {
		p.row(
			truncate(fmt.Sprintf("%s %s %s", item.Quantity.String(), item.Unit, item.Name), 44),
			truncate(fmt.Sprintf("%s  %s", item.Category, cur.Format(item.EstimatedPrice.Round(2))), 24),
		)
	}

	p.rule("├", "┤")
	if f.ShowStores {
		for _, sc := range rec.StoreCosts {
			marker := "  "
			if sc.Store == rec.RecommendedStore {
				marker = "* "
			}
			p.row(marker+sc.Store, cur.Format(sc.Cost.Round(2)))
		}
		p.rule("├", "┤")
	}

	p.row("RECOMMENDED STORE", rec.RecommendedStore)
	p.row("ESTIMATED TOTAL", cur.Format(rec.TotalEstimatedCost))
	p.rule("└", "┘")

	if len(rec.Analysis.CategoryTotals) > 0 {
		categories := make([]string, 0, len(rec.Analysis.CategoryTotals))
		for c := range rec.Analysis.CategoryTotals {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		p.printf("\nBy category:\n")
		for _, c := range categories {
			p.printf("  %-20s %s\n", c, cur.Format(rec.Analysis.CategoryTotals[c].Round(2)))
		}
	}

	p.printf("\n%s\n", rec.Explanation)
	if rec.ConfidenceLevel != "" {
		p.printf("Confidence: %.0f%% (%s)\n", rec.ConfidenceScore*100, rec.ConfidenceLevel)
	} else {
		p.printf("Confidence: %.0f%%\n", rec.ConfidenceScore*100)
	}
	for _, reason := range rec.ConfidenceReasons {
		p.printf("  - %s\n", reason)
	}
	if result.Metadata.SavedID != "" {
		p.printf("Saved as %s\n", result.Metadata.SavedID)
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) rule(left, right string) {
	p.printf("%s%s%s\n", left, strings.Repeat("─", boxWidth+2), right)
}

func (p *printer) center(s string) {
	pad := boxWidth - len(s)
	if pad < 0 {
		pad = 0
	}
	p.printf("│ %s%s%s │\n", strings.Repeat(" ", pad/2), s, strings.Repeat(" ", pad-pad/2))
}

func (p *printer) row(label, value string) {
	p.printf("│ %-46s %24s │\n", label, value)
}

// truncate shortens s to maxLen runes so multi-byte names are never split.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
