package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAliases = Aliases{
	"State/UT":       FieldRegion,
	"Cases Reported": FieldCasesReported,
	"Below 6":        FieldBelow6,
	"6-12":           FieldAge6To12,
	"12-16":          FieldAge12To16,
	"16-18":          FieldAge16To18,
	"Total Child":    FieldTotalChildVictims,
	"18-30":          FieldAge18To30,
	"30-45":          FieldAge30To45,
	"45-60":          FieldAge45To60,
	"Above 60":       FieldAbove60,
	"Total Women":    FieldTotalWomenVictims,
	"Total Victims":  FieldTotalVictims,
}

func fullRow(region string, vals ...string) Raw {
	keys := []string{"Cases Reported", "Below 6", "6-12", "12-16", "16-18", "Total Child",
		"18-30", "30-45", "45-60", "Above 60", "Total Women", "Total Victims"}
	row := Raw{"State/UT": region}
	for i, v := range vals {
		row[keys[i]] = v
	}
	return row
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{" 1,234 ", 1234, true},
		{"12.0", 12, true},
		{"0", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"NA", 0, false},
		{"12.5", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"2147483647", MaxCount, true},
		{"2147483647.0", MaxCount, true},
		{"5000000000", 0, false},
		{"5000000000.0", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCount(tt.in)
		assert.Equal(t, tt.want, got, "ParseCount(%q)", tt.in)
		assert.Equal(t, tt.ok, ok, "ParseCount(%q) ok", tt.in)
	}
}

func TestNormalizeCollidingAliasesIsDeterministic(t *testing.T) {
	n, err := NewNormalizer(testAliases, TotalsTrust)
	require.NoError(t, err)

	row := fullRow("Goa", "73")
	row["cases  reported"] = "99"
	row["CASES REPORTED"] = "55"
	for i := 0; i < 200; i++ {
		recs, _ := n.Normalize([]Raw{row})
		require.Len(t, recs, 1)
		// "CASES REPORTED" sorts before "Cases Reported" and "cases  reported".
		require.Equal(t, 55, recs[0].CasesReported, "run %d", i)
	}

	// An empty value does not hide a later non-empty one.
	row["CASES REPORTED"] = " "
	recs, _ := n.Normalize([]Raw{row})
	assert.Equal(t, 73, recs[0].CasesReported)
}

func TestNormalizeAliasesAndCoercion(t *testing.T) {
	n, err := NewNormalizer(testAliases, TotalsTrust)
	require.NoError(t, err)

	rows := []Raw{
		{
			"  state/ut ":    "  Tamil   Nadu ",
			"CASES REPORTED": "1,024",
			"below 6":        "3",
			"6-12":           "4",
			"12-16":          "5",
			"16-18":          "6",
			"Total Child":    "18",
			"18-30":          "10",
			"30-45":          "x",
			"45-60":          "1",
			"Above 60":       "0",
			"Total Women":    "11",
			"Total Victims":  "29",
			"Unrelated":      "999",
		},
	}
	records, q := n.Normalize(rows)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Tamil Nadu", r.Region)
	assert.Equal(t, 1024, r.CasesReported)
	assert.Equal(t, [4]int{3, 4, 5, 6}, r.ChildBands)
	assert.Equal(t, [4]int{10, 0, 1, 0}, r.WomenBands)
	assert.Equal(t, 29, r.TotalVictims)
	assert.Equal(t, []Field{FieldAge30To45}, r.Missing)
	assert.Equal(t, 1, q.MissingByField[FieldAge30To45])
	assert.Empty(t, q.TotalMismatches)
}

func TestNormalizeMissingFieldsZeroFilled(t *testing.T) {
	n, err := NewNormalizer(testAliases, TotalsTrust)
	require.NoError(t, err)

	records, q := n.Normalize([]Raw{{"State/UT": "Goa", "Cases Reported": "7"}})
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].CasesReported)
	assert.Zero(t, records[0].TotalVictims)
	assert.Len(t, records[0].Missing, len(CountFields())-1)
	assert.NotContains(t, records[0].Missing, FieldCasesReported)
	assert.Equal(t, 1, q.MissingByField[FieldTotalVictims])
}

func TestNormalizeDropsSummaryDuplicateAndBlankRows(t *testing.T) {
	n, err := NewNormalizer(testAliases, TotalsTrust)
	require.NoError(t, err)

	rows := []Raw{
		fullRow("Kerala", "10"),
		fullRow("Total (All India)", "5000"),
		fullRow("KERALA", "11"),
		fullRow("   ", "3"),
		fullRow("Assam", "20"),
	}
	records, q := n.Normalize(rows)

	require.Len(t, records, 2)
	assert.Equal(t, "Kerala", records[0].Region)
	assert.Equal(t, 10, records[0].CasesReported)
	assert.Equal(t, "Assam", records[1].Region)
	assert.Equal(t, 5, q.Rows)
	assert.Equal(t, 1, q.Skipped)
	assert.Equal(t, []string{"Total (All India)"}, q.SummaryRows)
	assert.Equal(t, []string{"KERALA"}, q.Duplicates)
}

func TestNormalizeTotalsPolicy(t *testing.T) {
	// Bands sum to 10 child and 5 women victims; published totals disagree.
	row := fullRow("Bihar", "50", "1", "2", "3", "4", "12", "1", "1", "1", "2", "5", "20")

	t.Run("trust", func(t *testing.T) {
		n, err := NewNormalizer(testAliases, TotalsTrust)
		require.NoError(t, err)
		records, q := n.Normalize([]Raw{row})
		require.Len(t, records, 1)
		assert.Equal(t, 12, records[0].TotalChildVictims)
		assert.Equal(t, 20, records[0].TotalVictims)
		assert.Equal(t, []Mismatch{
			{Region: "Bihar", Field: FieldTotalChildVictims, Provided: 12, Computed: 10},
			{Region: "Bihar", Field: FieldTotalVictims, Provided: 20, Computed: 17},
		}, q.TotalMismatches)
	})

	t.Run("recompute", func(t *testing.T) {
		n, err := NewNormalizer(testAliases, TotalsRecompute)
		require.NoError(t, err)
		records, q := n.Normalize([]Raw{row})
		require.Len(t, records, 1)
		assert.Equal(t, 10, records[0].TotalChildVictims)
		assert.Equal(t, 5, records[0].TotalWomenVictims)
		assert.Equal(t, 15, records[0].TotalVictims)
		assert.Len(t, q.TotalMismatches, 2)
	})
}

func TestNewNormalizerRejectsUnknownPolicy(t *testing.T) {
	_, err := NewNormalizer(testAliases, "guess")
	assert.ErrorIs(t, err, ErrUnknownTotalsPolicy)
}

func TestQualityCheck(t *testing.T) {
	n, err := NewNormalizer(testAliases, TotalsTrust)
	require.NoError(t, err)

	rows := []Raw{
		fullRow("A", "1", "1", "1", "1", "1", "4", "1", "1", "1", "1", "4", "8"),
		fullRow("B", "1", "1", "1", "1", "1", "4", "1", "1", "1", "", "3", "7"),
		fullRow("C", "1", "1", "1", "1", "1", "4", "1", "1", "1", "1", "4", "8"),
		fullRow("D", "1", "1", "1", "1", "1", "4", "1", "1", "1", "1", "4", "8"),
	}
	records, q := n.Normalize(rows)
	require.Len(t, records, 4)

	assert.InDelta(t, 0.25, q.MissingFraction(FieldAbove60, len(records)), 1e-9)
	assert.NoError(t, q.Check(len(records), 0.25))

	err = q.Check(len(records), 0.1)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "victims_above_60")

	assert.NoError(t, Quality{}.Check(0, 0))
}
