package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TotalsPolicy decides what happens to the provided victim totals.
type TotalsPolicy string

const (
	// TotalsTrust keeps the totals as published.
	TotalsTrust TotalsPolicy = "trust"
	// TotalsRecompute replaces the totals with the sum of their age bands.
	TotalsRecompute TotalsPolicy = "recompute"
)

var (
	ErrUnknownTotalsPolicy = errors.New("totals policy must be 'trust' or 'recompute'")
	ErrIncomplete          = errors.New("dataset is incomplete")
)

// Mismatch records a provided total that disagrees with the sum of its parts.
type Mismatch struct {
	Region   string `json:"region"`
	Field    Field  `json:"field"`
	Provided int    `json:"provided"`
	Computed int    `json:"computed"`
}

// Quality describes what the normalizer had to repair or discard.
type Quality struct {
	Rows            int           `json:"rows"`
	Skipped         int           `json:"skipped"`
	SummaryRows     []string      `json:"summaryRows,omitempty"`
	Duplicates      []string      `json:"duplicates,omitempty"`
	MissingByField  map[Field]int `json:"missingByField,omitempty"`
	TotalMismatches []Mismatch    `json:"totalMismatches,omitempty"`
}

// MissingFraction returns the share of kept records missing field f.
func (q Quality) MissingFraction(f Field, records int) float64 {
	if records == 0 {
		return 0
	}
	return float64(q.MissingByField[f]) / float64(records)
}

// Check returns ErrIncomplete when any column's missing fraction exceeds max.
func (q Quality) Check(records int, max float64) error {
	var bad []string
	for _, f := range CountFields() {
		if frac := q.MissingFraction(f, records); frac > max {
			bad = append(bad, fmt.Sprintf("%s %.0f%%", f, frac*100))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s missing beyond %.0f%%", ErrIncomplete, strings.Join(bad, ", "), max*100)
	}
	return nil
}

// Normalizer turns raw source rows into Records.
type Normalizer struct {
	aliases map[string]Field
	totals  TotalsPolicy
}

// NewNormalizer builds a normalizer for one source format's alias table.
func NewNormalizer(aliases Aliases, totals TotalsPolicy) (*Normalizer, error) {
	switch totals {
	case "":
		totals = TotalsTrust
	case TotalsTrust, TotalsRecompute:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTotalsPolicy, totals)
	}
	keyed := make(map[string]Field, len(aliases))
	for name, f := range aliases {
		keyed[aliasKey(name)] = f
	}
	return &Normalizer{aliases: keyed, totals: totals}, nil
}

// Normalize converts rows in order. Summary rows, rows without a region and
// repeated regions are dropped and reported in the returned Quality.
func (n *Normalizer) Normalize(rows []Raw) ([]Record, Quality) {
	q := Quality{Rows: len(rows), MissingByField: make(map[Field]int)}
	seen := make(map[string]bool, len(rows))
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		canon := n.canonical(row)
		region := cleanRegion(canon[FieldRegion])
		if region == "" {
			q.Skipped++
			continue
		}
		if isSummaryRow(region) {
			q.SummaryRows = append(q.SummaryRows, region)
			continue
		}
		key := strings.ToUpper(region)
		if seen[key] {
			q.Duplicates = append(q.Duplicates, region)
			continue
		}
		seen[key] = true

		r := Record{Region: region}
		for _, f := range CountFields() {
			v, ok := ParseCount(canon[f])
			if !ok {
				r.Missing = append(r.Missing, f)
				q.MissingByField[f]++
			}
			r.setCount(f, v)
		}
		q.TotalMismatches = append(q.TotalMismatches, checkTotals(r)...)
		if n.totals == TotalsRecompute {
			r.TotalChildVictims = sum(r.ChildBands[:])
			r.TotalWomenVictims = sum(r.WomenBands[:])
			r.TotalVictims = r.TotalChildVictims + r.TotalWomenVictims
		}
		records = append(records, r)
	}
	return records, q
}

// canonical resolves a raw row to canonical fields. Unknown names are ignored;
// when two raw names alias the same field the non-empty value of the
// byte-wise smallest name wins.
func (n *Normalizer) canonical(row Raw) map[Field]string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[Field]string, numFields)
	for _, name := range names {
		v := row[name]
		f, ok := n.aliases[aliasKey(name)]
		if !ok {
			continue
		}
		if cur, dup := out[f]; dup && strings.TrimSpace(cur) != "" {
			continue
		}
		out[f] = v
	}
	return out
}

// checkTotals compares each provided, present total against its parts.
func checkTotals(r Record) []Mismatch {
	var out []Mismatch
	check := func(f Field, provided, computed int) {
		if r.IsMissing(f) || provided == computed {
			return
		}
		out = append(out, Mismatch{Region: r.Region, Field: f, Provided: provided, Computed: computed})
	}
	check(FieldTotalChildVictims, r.TotalChildVictims, sum(r.ChildBands[:]))
	check(FieldTotalWomenVictims, r.TotalWomenVictims, sum(r.WomenBands[:]))
	check(FieldTotalVictims, r.TotalVictims, r.TotalChildVictims+r.TotalWomenVictims)
	return out
}

// MaxCount is the largest count ParseCount accepts.
const MaxCount = math.MaxInt32

// ParseCount coerces a raw cell to a non-negative count. The second result is
// false for empty, placeholder, non-numeric, fractional, negative or
// out-of-range values, in which case the count is 0.
func ParseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "- -", "--", "NA", "N/A", "na", "n/a":
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 || v > MaxCount {
			return 0, false
		}
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > MaxCount {
		return 0, false
	}
	return int(f), true
}

func aliasKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func cleanRegion(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// isSummaryRow matches the national and state/UT total rows that some
// releases append to the table.
func isSummaryRow(region string) bool {
	return strings.HasPrefix(strings.ToLower(region), "total")
}
