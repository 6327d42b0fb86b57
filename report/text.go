package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zalepa/assaultstats/stats"
)

// DefaultTitle heads the text report.
const DefaultTitle = "Reported sexual assault cases by State/UT"

const histogramWidth = 40

var printer = message.NewPrinter(language.English)

// WriteText writes the human-readable report.
func WriteText(w io.Writer, res *stats.Result, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", runewidth.StringWidth(title)) + "\n\n")

	s := res.Summary
	if s.NoData {
		b.WriteString("No data: the source contained no region rows.\n\n")
	}

	section(&b, "Summary")
	writeTable(&b, nil, [][]string{
		{"Regions", num(s.Regions)},
		{"Total cases reported", num(s.TotalCases)},
		{"Average cases per region", dec(s.AvgCasesPerRegion)},
		{"Total victims", num(s.TotalVictims)},
		{"Child victims", fmt.Sprintf("%s (%s%%)", num(s.TotalChildVictims), dec(s.ChildVictimPercentage))},
		{"Adult women victims", fmt.Sprintf("%s (%s%%)", num(s.TotalWomenVictims), dec(s.WomenVictimPercentage))},
	}, []bool{false, true})

	if len(res.Categories) > 0 {
		section(&b, "Case categories")
		var rows [][]string
		for _, c := range res.Categories {
			rows = append(rows, []string{c.Category, num(c.Regions), num(c.TotalCases), dec(c.AvgCases), dec(c.RegionShare) + "%"})
		}
		writeTable(&b, []string{"Category", "Regions", "Cases", "Avg cases", "Share"}, rows, []bool{false, true, true, true, true})
	}

	rankings := []struct {
		title   string
		records []stats.Record
	}{
		{fmt.Sprintf("Top %d regions by cases reported", len(res.TopCases)), res.TopCases},
		{fmt.Sprintf("Bottom %d regions by cases reported", len(res.BottomCases)), res.BottomCases},
		{fmt.Sprintf("Top %d regions by child victim share", len(res.TopChildPct)), res.TopChildPct},
	}
	for _, rk := range rankings {
		if len(rk.records) == 0 {
			continue
		}
		section(&b, rk.title)
		var rows [][]string
		for i, r := range rk.records {
			rows = append(rows, []string{num(i + 1), r.Region, num(r.CasesReported), dec(r.ChildPercentage) + "%", r.Category, r.MostVulnerableChildBand, sparkline(r.Bands())})
		}
		writeTable(&b, []string{"#", "Region", "Cases", "Child %", "Category", "Most affected child band", "Ages <6..60+"}, rows, []bool{true, false, true, true, false, false, false})
	}

	section(&b, "Victims by age band (all regions)")
	writeHistogram(&b, s.AgeHistogram)

	section(&b, "Data quality")
	writeQuality(&b, res.Quality, len(res.Dataset))

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", runewidth.StringWidth(title)) + "\n")
}

// writeTable aligns cells by display width; right marks right-aligned columns.
func writeTable(b *strings.Builder, header []string, rows [][]string, right []bool) {
	all := rows
	if header != nil {
		all = append([][]string{header}, rows...)
	}
	var widths []int
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	line := func(row []string) {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(right) && right[i] {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		b.WriteString("  " + strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}
	if header != nil {
		line(header)
		seps := make([]string, len(widths))
		for i, w := range widths {
			seps[i] = strings.Repeat("─", w)
		}
		line(seps)
	}
	for _, row := range rows {
		line(row)
	}
	b.WriteString("\n")
}

func writeHistogram(b *strings.Builder, h stats.Histogram) {
	peak := 0
	for _, v := range h {
		peak = max(peak, v)
	}
	var rows [][]string
	for i, v := range h {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", v*histogramWidth/peak)
		}
		rows = append(rows, []string{stats.BandLabels[i], num(v), bar})
	}
	writeTable(b, nil, rows, []bool{false, true, false})
}

func writeQuality(b *strings.Builder, q stats.Quality, kept int) {
	fmt.Fprintf(b, "  Rows read: %s, kept: %s, without region: %s\n", num(q.Rows), num(kept), num(q.Skipped))
	if len(q.SummaryRows) > 0 {
		fmt.Fprintf(b, "  Summary rows dropped: %s\n", strings.Join(q.SummaryRows, "; "))
	}
	if len(q.Duplicates) > 0 {
		fmt.Fprintf(b, "  Duplicate regions dropped: %s\n", strings.Join(q.Duplicates, "; "))
	}
	var missing []string
	for _, f := range stats.CountFields() {
		if n := q.MissingByField[f]; n > 0 {
			missing = append(missing, fmt.Sprintf("%s %d", f, n))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(b, "  Missing values (counted as 0): %s\n", strings.Join(missing, ", "))
	}
	for _, m := range q.TotalMismatches {
		fmt.Fprintf(b, "  %s: %s is %s, its parts sum to %s\n", m.Region, m.Field, num(m.Provided), num(m.Computed))
	}
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws one block per age band, scaled to the largest band. An
// all-zero record is blank.
func sparkline(bands [8]int) string {
	peak := 0
	for _, v := range bands {
		peak = max(peak, v)
	}
	if peak == 0 {
		return strings.Repeat(" ", len(bands))
	}
	n := len(sparkBlocks)
	var sb strings.Builder
	for _, v := range bands {
		sb.WriteRune(sparkBlocks[v*(n-1)/peak])
	}
	return sb.String()
}

func num(v int) string {
	return printer.Sprintf("%d", v)
}

func dec(v float64) string {
	return printer.Sprintf("%.2f", v)
}
