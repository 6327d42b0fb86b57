package stats

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRows() []Raw {
	// Three synthetic regions: 50, 500 and 1500 cases with 0, 100 and 200 victims.
	return []Raw{
		fullRow("Alpha", "50", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0"),
		fullRow("Beta", "500", "10", "10", "10", "10", "40", "30", "20", "5", "5", "60", "100"),
		fullRow("Gamma", "1500", "20", "30", "40", "10", "100", "50", "25", "15", "10", "100", "200"),
	}
}

func TestRunScenario(t *testing.T) {
	res, err := Run(scenarioRows(), testAliases, DefaultOptions())
	require.NoError(t, err)

	byName := make(map[string]Record)
	for _, r := range res.Dataset {
		byName[r.Region] = r
	}
	assert.Equal(t, CategoryLow, byName["Alpha"].Category)
	assert.Equal(t, CategoryHigh, byName["Beta"].Category)
	assert.Equal(t, CategoryVeryHigh, byName["Gamma"].Category)
	assert.Zero(t, byName["Alpha"].ChildPercentage)
	assert.Equal(t, 40.0, byName["Beta"].ChildPercentage)
	assert.Equal(t, "no victims", byName["Alpha"].MostVulnerableChildBand)
	assert.Equal(t, "multiple_equal", byName["Beta"].MostVulnerableChildBand)
	assert.Equal(t, "12-16", byName["Gamma"].MostVulnerableChildBand)

	assert.Equal(t, 2050, res.Summary.TotalCases)
	assert.InDelta(t, 683.33, res.Summary.AvgCasesPerRegion, 0.01)
	assert.Equal(t, 300, res.Summary.TotalVictims)

	require.Len(t, res.TopCases, 3)
	assert.Equal(t, "Gamma", TopByCases(res.Dataset, 1)[0].Region)
	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, names(res.Dataset))
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(res.BottomCases))
	assert.Equal(t, []string{"Gamma", "Beta"}, names(res.TopChildPct))
}

func TestRunHistogramMatchesRegions(t *testing.T) {
	res, err := Run(scenarioRows(), testAliases, DefaultOptions())
	require.NoError(t, err)

	total := 0
	for _, r := range res.Dataset {
		b := r.Bands()
		total += sum(b[:])
	}
	assert.Equal(t, total, res.Summary.AgeHistogram.Total())
}

func TestRunDeterministic(t *testing.T) {
	var rows []Raw
	for i := 0; i < 36; i++ {
		n := strconv.Itoa(i * 37 % 1300)
		rows = append(rows, fullRow("Region "+strconv.Itoa(i), n, "1", "2", "3", "4", "10", "5", "5", "5", "5", "20", "30"))
	}
	a, err := Run(rows, testAliases, DefaultOptions())
	require.NoError(t, err)
	b, err := Run(rows, testAliases, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunEmpty(t *testing.T) {
	res, err := Run(nil, testAliases, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Summary.NoData)
	assert.Empty(t, res.Dataset)
	assert.Empty(t, res.Categories)
	assert.Empty(t, res.TopCases)
}

func TestRunInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Deriver.BinEdges = [3]int{5, 5, 5}
	_, err := Run(scenarioRows(), testAliases, opts)
	assert.ErrorIs(t, err, ErrInvalidBinEdges)

	opts = DefaultOptions()
	opts.Totals = "maybe"
	_, err = Run(scenarioRows(), testAliases, opts)
	assert.ErrorIs(t, err, ErrUnknownTotalsPolicy)
}
