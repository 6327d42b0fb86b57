// Package stats cleans region records and computes the derived fields,
// rankings and summaries of the annual case report.
package stats

import "fmt"

// Field identifies one canonical column of the region dataset. The order of
// the constants is the column order of the cleaned CSV.
type Field int

const (
	FieldRegion Field = iota
	FieldCasesReported
	FieldBelow6
	FieldAge6To12
	FieldAge12To16
	FieldAge16To18
	FieldTotalChildVictims
	FieldAge18To30
	FieldAge30To45
	FieldAge45To60
	FieldAbove60
	FieldTotalWomenVictims
	FieldTotalVictims
	numFields
)

var fieldNames = [numFields]string{
	"region_name",
	"cases_reported",
	"victims_below_6",
	"victims_6_12",
	"victims_12_16",
	"victims_16_18",
	"total_child_victims",
	"victims_18_30",
	"victims_30_45",
	"victims_45_60",
	"victims_above_60",
	"total_women_victims",
	"total_victims",
}

// Fields returns every canonical field in column order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// CountFields returns the numeric fields in column order.
func CountFields() []Field {
	return Fields()[1:]
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// MarshalText lets Field serve as a JSON map key and value.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseField resolves a canonical field name.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// BandLabels names the eight age bands: four child bands, then four adult bands.
var BandLabels = [8]string{"<6", "6-12", "12-16", "16-18", "18-30", "30-45", "45-60", "60+"}

// Raw is one source row: raw field name to raw value, before aliasing.
type Raw map[string]string

// Aliases maps raw field names, as a particular source format spells them, to
// canonical fields. Keys are matched case- and whitespace-insensitively.
type Aliases map[string]Field

// Lookup resolves a raw field name the way the normalizer does.
func (a Aliases) Lookup(name string) (Field, bool) {
	key := aliasKey(name)
	for alias, f := range a {
		if aliasKey(alias) == key {
			return f, true
		}
	}
	return 0, false
}

// Record holds the statistics of one region for the reporting year.
type Record struct {
	Region            string `json:"region"`
	CasesReported     int    `json:"casesReported"`
	ChildBands        [4]int `json:"childBands"`
	TotalChildVictims int    `json:"totalChildVictims"`
	WomenBands        [4]int `json:"womenBands"`
	TotalWomenVictims int    `json:"totalWomenVictims"`
	TotalVictims      int    `json:"totalVictims"`

	ChildPercentage         float64 `json:"childPercentage"`
	WomenPercentage         float64 `json:"womenPercentage"`
	Category                string  `json:"category"`
	MostVulnerableChildBand string  `json:"mostVulnerableChildBand"`

	// Missing lists the fields that were absent or unparseable in the source
	// row, in column order. Their values are zero.
	Missing []Field `json:"missing,omitempty"`
}

// Bands returns the eight age-band counts in BandLabels order.
func (r Record) Bands() [8]int {
	var b [8]int
	copy(b[:4], r.ChildBands[:])
	copy(b[4:], r.WomenBands[:])
	return b
}

// Count returns the value of a numeric field.
func (r Record) Count(f Field) int {
	switch f {
	case FieldCasesReported:
		return r.CasesReported
	case FieldBelow6, FieldAge6To12, FieldAge12To16, FieldAge16To18:
		return r.ChildBands[f-FieldBelow6]
	case FieldTotalChildVictims:
		return r.TotalChildVictims
	case FieldAge18To30, FieldAge30To45, FieldAge45To60, FieldAbove60:
		return r.WomenBands[f-FieldAge18To30]
	case FieldTotalWomenVictims:
		return r.TotalWomenVictims
	case FieldTotalVictims:
		return r.TotalVictims
	}
	return 0
}

func (r *Record) setCount(f Field, v int) {
	switch f {
	case FieldCasesReported:
		r.CasesReported = v
	case FieldBelow6, FieldAge6To12, FieldAge12To16, FieldAge16To18:
		r.ChildBands[f-FieldBelow6] = v
	case FieldTotalChildVictims:
		r.TotalChildVictims = v
	case FieldAge18To30, FieldAge30To45, FieldAge45To60, FieldAbove60:
		r.WomenBands[f-FieldAge18To30] = v
	case FieldTotalWomenVictims:
		r.TotalWomenVictims = v
	case FieldTotalVictims:
		r.TotalVictims = v
	}
}

// IsMissing reports whether f was absent from the source row.
func (r Record) IsMissing(f Field) bool {
	for _, m := range r.Missing {
		if m == f {
			return true
		}
	}
	return false
}

func sum(vs []int) int {
	total := 0
	for _, v := range vs {
		total += v
	}
	return total
}
