// Package explanation renders the human-readable justification for a store
// recommendation. It only formats facts decided elsewhere.
package explanation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"grocer/internal/errors"
)

// Facts are the values a template may reference.
type Facts struct {
	// Store is the recommended store
	Store string

	// RunnerUp is the second cheapest store, empty with a single store
	RunnerUp string

	// ItemCount is the number of list lines
	ItemCount int

	// TotalItems is the summed quantity, formatted
	TotalItems string

	// RepresentativeItem is the first item of the dominant category
	RepresentativeItem string

	// DominantCategory is the category with the largest spend
	DominantCategory string

	// Savings is the runner-up cost minus the winner cost, with currency
	Savings string

	// Cost is the winning store's total, with currency
	Cost string

	// BulkApplied is true when the winner's bulk discount applied
	BulkApplied bool

	// Favorite is true when the winner is the user's favorite store
	Favorite bool

	// Adjustments names the adjustments applied to the winner, in order
	Adjustments []string
}

// Applied reports whether the winner's cost carries the named adjustment.
// Templates call it as {{if .Applied "quick trip"}}.
func (f Facts) Applied(name string) bool {
	for _, a := range f.Adjustments {
		if a == name {
			return true
		}
	}
	return false
}

// Templates are text/template sources keyed by purpose.
type Templates struct {
	// Empty renders when the list had no items
	Empty string

	// Default renders when the winning store has no template of its own
	Default string

	// Loyalty is appended when the winner is the favorite store
	Loyalty string

	// ByStore maps store names to their template
	ByStore map[string]string
}

// DefaultTemplates returns templates that work for any store.
func DefaultTemplates() Templates {
	return Templates{
		Empty: `No items were recognised, so {{.Store}} is listed by default.`,
		Default: `{{.Store}} is the cheapest option for your {{.ItemCount}} items` +
			`{{if .RepresentativeItem}} including {{.RepresentativeItem}}{{end}}` +
			`{{if .RunnerUp}}, saving {{.Savings}} compared to {{.RunnerUp}}{{end}}.`,
		Loyalty: `Plus, it aligns with your recent shopping habits!`,
	}
}

// Generator renders explanations from parsed templates. It is immutable and
// safe for concurrent use.
type Generator struct {
	empty    *template.Template
	fallback *template.Template
	loyalty  *template.Template
	byStore  map[string]*template.Template
	logger   *zap.Logger
}

// New parses every template. Blank Empty, Default or Loyalty sources fall back
// to DefaultTemplates.
func New(t Templates, logger *zap.Logger) (*Generator, error) {
	defaults := DefaultTemplates()
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Generator{
		byStore: make(map[string]*template.Template, len(t.ByStore)),
		logger:  logger,
	}

	var err error
	if g.empty, err = parse("empty", orDefault(t.Empty, defaults.Empty)); err != nil {
		return nil, err
	}
	if g.fallback, err = parse("default", orDefault(t.Default, defaults.Default)); err != nil {
		return nil, err
	}
	if g.loyalty, err = parse("loyalty", orDefault(t.Loyalty, defaults.Loyalty)); err != nil {
		return nil, err
	}

	for store, src := range t.ByStore {
		if strings.TrimSpace(src) == "" {
			continue
		}
		tmpl, err := parse(store, src)
		if err != nil {
			return nil, err
		}
		g.byStore[store] = tmpl
	}

	return g, nil
}

// Generate renders the explanation for the winning store.
func (g *Generator) Generate(f Facts) string {
	tmpl := g.fallback
	switch {
	case f.ItemCount == 0:
		tmpl = g.empty
	case g.byStore[f.Store] != nil:
		tmpl = g.byStore[f.Store]
	}

	text := g.render(tmpl, f)
	if f.Favorite {
		if loyalty := g.render(g.loyalty, f); loyalty != "" {
			text += " " + loyalty
		}
	}
	return text
}

func (g *Generator) render(tmpl *template.Template, f Facts) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, f); err != nil {
		g.logger.Error("explanation template failed",
			zap.String("template", tmpl.Name()),
			zap.Error(errors.Wrapf(errors.TypeTemplate, err, "render explanation template %q", tmpl.Name())))
		return fmt.Sprintf("%s is the cheapest option for this list.", f.Store)
	}
	return strings.TrimSpace(buf.String())
}

func parse(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "parse explanation template %q", name)
	}
	return tmpl, nil
}

func orDefault(src, fallback string) string {
	if strings.TrimSpace(src) == "" {
		return fallback
	}
	return src
}
