// Package confidence scores how much of a list was actually understood.
// The score is deterministic: every item starts fully trusted and loses trust
// for each fallback taken while interpreting it.
package confidence

import (
	"fmt"
	"math"

	"grocer/core/parser"
	"grocer/core/pricing"
)

// DecayRule defines how much trust one fallback costs
type DecayRule struct {
	Name   string
	Factor float64
}

// Rules are the decay rules applied per item
var (
	// CatalogMiss applies when no catalog keyword matched and the default
	// price was used
	CatalogMiss = DecayRule{Name: "catalog_miss", Factor: 0.5}

	// ParseFallback applies when neither line pattern matched
	ParseFallback = DecayRule{Name: "parse_fallback", Factor: 0.8}
)

// Decay records one rule applied to one item
type Decay struct {
	Item   string
	Rule   string
	Factor float64
}

// Tracker accumulates per-item scores for a single list. It is not safe for
// concurrent use; create one per request.
type Tracker struct {
	items  []float64
	decays []Decay
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe scores one priced line
func (t *Tracker) Observe(line pricing.PricedLine) {
	score := 1.0
	if line.Pattern == parser.PatternFallback {
		score *= ParseFallback.Factor
		t.decays = append(t.decays, Decay{Item: line.Item.Name, Rule: ParseFallback.Name, Factor: ParseFallback.Factor})
	}
	if !line.Matched() {
		score *= CatalogMiss.Factor
		t.decays = append(t.decays, Decay{Item: line.Item.Name, Rule: CatalogMiss.Name, Factor: CatalogMiss.Factor})
	}
	t.items = append(t.items, score)
}

// Score returns the mean item score rounded to four places. An empty list
// scores zero.
func (t *Tracker) Score() float64 {
	if len(t.items) == 0 {
		return 0
	}
	var sum float64
	for _, s := range t.items {
		sum += s
	}
	return math.Round(sum/float64(len(t.items))*10000) / 10000
}

// Decays returns the applied decays in observation order
func (t *Tracker) Decays() []Decay {
	out := make([]Decay, len(t.decays))
	copy(out, t.decays)
	return out
}

// Level returns human-readable confidence level
func (t *Tracker) Level() string {
	score := t.Score()
	switch {
	case score >= 0.9:
		return "high"
	case score >= 0.7:
		return "medium"
	case score >= 0.5:
		return "low"
	default:
		return "unreliable"
	}
}

// Reasons describes each decay as "item: rule (xfactor)", in observation
// order. A fully understood list has no reasons.
func (t *Tracker) Reasons() []string {
	if len(t.decays) == 0 {
		return nil
	}
	reasons := make([]string, 0, len(t.decays))
	for _, d := range t.decays {
		reasons = append(reasons, fmt.Sprintf("%s: %s (x%.1f)", d.Item, d.Rule, d.Factor))
	}
	return reasons
}

// Track observes every line of an estimate
func Track(est *pricing.Estimate) *Tracker {
	t := NewTracker()
	for _, line := range est.Lines {
		t.Observe(line)
	}
	return t
}
