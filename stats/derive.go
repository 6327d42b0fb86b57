package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Case categories in ascending order of reported cases.
const (
	CategoryLow      = "Low"
	CategoryMedium   = "Medium"
	CategoryHigh     = "High"
	CategoryVeryHigh = "Very High"
)

var (
	ErrInvalidBinEdges = errors.New("bin edges must be positive and strictly ascending")
	ErrEmptyLabel      = errors.New("category, tie and no-victims labels must be non-empty")
)

// DeriverConfig holds the constants the derived fields depend on.
type DeriverConfig struct {
	// BinEdges are the lower bounds of the Medium, High and Very High bins.
	BinEdges       [3]int
	Labels         [4]string
	TieLabel       string
	NoVictimsLabel string
}

// DefaultDeriverConfig returns the published binning: <100, <500, <1000, rest.
func DefaultDeriverConfig() DeriverConfig {
	return DeriverConfig{
		BinEdges:       [3]int{100, 500, 1000},
		Labels:         [4]string{CategoryLow, CategoryMedium, CategoryHigh, CategoryVeryHigh},
		TieLabel:       "multiple_equal",
		NoVictimsLabel: "no victims",
	}
}

// Validate checks that the edges ascend and no label is blank.
func (c DeriverConfig) Validate() error {
	prev := 0
	for _, e := range c.BinEdges {
		if e <= prev {
			return fmt.Errorf("%w: %v", ErrInvalidBinEdges, c.BinEdges)
		}
		prev = e
	}
	if c.TieLabel == "" || c.NoVictimsLabel == "" || slices.Contains(c.Labels[:], "") {
		return ErrEmptyLabel
	}
	return nil
}

// Category bins a case count. Bins are half-open with the lower bound inclusive.
func (c DeriverConfig) Category(cases int) string {
	for i, edge := range c.BinEdges {
		if cases < edge {
			return c.Labels[i]
		}
	}
	return c.Labels[len(c.Labels)-1]
}

// Deriver computes the per-region derived fields.
type Deriver struct {
	cfg DeriverConfig
}

// NewDeriver validates cfg and returns a Deriver using it.
func NewDeriver(cfg DeriverConfig) (*Deriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Deriver{cfg: cfg}, nil
}

// Config returns the configuration the deriver was built with.
func (d *Deriver) Config() DeriverConfig {
	return d.cfg
}

// Derive returns a copy of r with the derived fields filled in.
func (d *Deriver) Derive(r Record) Record {
	out := r
	out.Missing = slices.Clone(r.Missing)
	out.ChildPercentage = Percentage(r.TotalChildVictims, r.TotalVictims)
	out.WomenPercentage = Percentage(r.TotalWomenVictims, r.TotalVictims)
	out.Category = d.cfg.Category(r.CasesReported)
	out.MostVulnerableChildBand = d.mostVulnerable(r)
	return out
}

// DeriveAll derives every record into a new slice.
func (d *Deriver) DeriveAll(ds []Record) []Record {
	out := make([]Record, len(ds))
	for i, r := range ds {
		out[i] = d.Derive(r)
	}
	return out
}

func (d *Deriver) mostVulnerable(r Record) string {
	if r.TotalChildVictims == 0 {
		return d.cfg.NoVictimsLabel
	}
	best, ties := 0, 0
	for i, v := range r.ChildBands {
		switch {
		case v > r.ChildBands[best]:
			best, ties = i, 1
		case v == r.ChildBands[best]:
			ties++
		}
	}
	if r.ChildBands[best] == 0 {
		return d.cfg.NoVictimsLabel
	}
	if ties > 1 {
		return d.cfg.TieLabel
	}
	return BandLabels[best]
}

// Percentage returns 100*part/total, or exactly 0 when total is not positive.
// The result is clamped to [0, 100].
func Percentage(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	p := 100 * float64(part) / float64(total)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Min(p, 100)
}
