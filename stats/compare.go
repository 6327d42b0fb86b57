package stats

import (
	"sort"
	"strconv"
	"strings"
)

// Difference is one disagreement between two normalized datasets.
type Difference struct {
	Region string
	// Field is FieldRegion when the region is absent from one side.
	Field       Field
	Left, Right string
}

// Compare matches records by case-insensitive region name and lists every
// count or missing-value disagreement, ordered by region then field.
func Compare(left, right []Record) []Difference {
	index := func(ds []Record) map[string]Record {
		m := make(map[string]Record, len(ds))
		for _, r := range ds {
			m[strings.ToLower(r.Region)] = r
		}
		return m
	}
	l, r := index(left), index(right)

	keys := make([]string, 0, len(l)+len(r))
	for k := range l {
		keys = append(keys, k)
	}
	for k := range r {
		if _, ok := l[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var diffs []Difference
	for _, k := range keys {
		a, inLeft := l[k]
		b, inRight := r[k]
		switch {
		case !inLeft:
			diffs = append(diffs, Difference{Region: b.Region, Field: FieldRegion, Left: "absent", Right: "present"})
			continue
		case !inRight:
			diffs = append(diffs, Difference{Region: a.Region, Field: FieldRegion, Left: "present", Right: "absent"})
			continue
		}
		for _, f := range CountFields() {
			av, bv := cell(a, f), cell(b, f)
			if av != bv {
				diffs = append(diffs, Difference{Region: a.Region, Field: f, Left: av, Right: bv})
			}
		}
	}
	return diffs
}

func cell(r Record, f Field) string {
	if r.IsMissing(f) {
		return "missing"
	}
	return strconv.Itoa(r.Count(f))
}

// QualityDifference is one normalization measure that differs between two
// sources.
type QualityDifference struct {
	Measure     string
	Left, Right int
}

// CompareQuality lists the row counts and missing-value counts that differ
// between two normalization runs, in a fixed order.
func CompareQuality(left, right Quality) []QualityDifference {
	measures := []struct {
		name string
		get  func(Quality) int
	}{
		{"rows", func(q Quality) int { return q.Rows }},
		{"skipped", func(q Quality) int { return q.Skipped }},
		{"summary_rows", func(q Quality) int { return len(q.SummaryRows) }},
		{"duplicates", func(q Quality) int { return len(q.Duplicates) }},
		{"total_mismatches", func(q Quality) int { return len(q.TotalMismatches) }},
	}
	var diffs []QualityDifference
	for _, m := range measures {
		if l, r := m.get(left), m.get(right); l != r {
			diffs = append(diffs, QualityDifference{Measure: m.name, Left: l, Right: r})
		}
	}
	for _, f := range CountFields() {
		if l, r := left.MissingByField[f], right.MissingByField[f]; l != r {
			diffs = append(diffs, QualityDifference{Measure: "missing_" + f.String(), Left: l, Right: r})
		}
	}
	return diffs
}
