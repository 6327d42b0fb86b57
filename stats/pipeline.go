package stats

// Options configures a pipeline run.
type Options struct {
	Deriver DeriverConfig
	Totals  TotalsPolicy
	// TopN bounds every ranking view.
	TopN int
}

// DefaultOptions returns the published configuration with ten-region rankings.
func DefaultOptions() Options {
	return Options{
		Deriver: DefaultDeriverConfig(),
		Totals:  TotalsTrust,
		TopN:    10,
	}
}

// Result is everything one run produces for the report emitter.
type Result struct {
	// Dataset is ordered by cases reported, highest first.
	Dataset     []Record          `json:"dataset"`
	Summary     Summary           `json:"summary"`
	Categories  []CategorySummary `json:"categories"`
	TopCases    []Record          `json:"topCases"`
	BottomCases []Record          `json:"bottomCases"`
	TopChildPct []Record          `json:"topChildPercentage"`
	Quality     Quality           `json:"quality"`
}

// Run normalizes, derives and aggregates rows read with the given alias table.
// It only fails on invalid options.
func Run(rows []Raw, aliases Aliases, opts Options) (*Result, error) {
	n, err := NewNormalizer(aliases, opts.Totals)
	if err != nil {
		return nil, err
	}
	d, err := NewDeriver(opts.Deriver)
	if err != nil {
		return nil, err
	}

	records, quality := n.Normalize(rows)
	ds := d.DeriveAll(SortByCases(records))

	return &Result{
		Dataset:     ds,
		Summary:     Summarize(ds),
		Categories:  Categorize(ds, opts.Deriver.Labels),
		TopCases:    TopByCases(ds, opts.TopN),
		BottomCases: BottomByCases(ds, opts.TopN),
		TopChildPct: TopByChildPercentage(ds, opts.TopN),
		Quality:     quality,
	}, nil
}
