// Package report renders a pipeline result as files: the cleaned dataset, a
// JSON document, a text report, a workbook and a set of charts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/zalepa/assaultstats/stats"
)

// derivedColumns follow the canonical fields in the cleaned CSV.
var derivedColumns = []string{
	"child_percentage",
	"women_percentage",
	"case_category",
	"most_vulnerable_child_age_band",
}

// Header returns the cleaned CSV header.
func Header() []string {
	var h []string
	for _, f := range stats.Fields() {
		h = append(h, f.String())
	}
	return append(h, derivedColumns...)
}

// Row formats one record in Header order.
func Row(r stats.Record) []string {
	row := []string{r.Region}
	for _, f := range stats.CountFields() {
		row = append(row, strconv.Itoa(r.Count(f)))
	}
	return append(row,
		formatPct(r.ChildPercentage),
		formatPct(r.WomenPercentage),
		r.Category,
		r.MostVulnerableChildBand,
	)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes the cleaned dataset. The output depends only on ds, so equal
// datasets produce identical bytes.
func WriteCSV(w io.Writer, ds []stats.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range ds {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the full result as indented JSON.
func WriteJSON(w io.Writer, res *stats.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
