package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/assaultstats/stats"
)

// Workbook sheet names.
const (
	SheetDataset    = "Dataset"
	SheetSummary    = "Summary"
	SheetCategories = "Categories"
	SheetAgeBands   = "Age bands"
)

// WriteXLSX saves the dataset, summary, category and age-band tables as a
// workbook. Counts are stored as numbers, not text.
func WriteXLSX(path string, res *stats.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDataset); err != nil {
		return err
	}
	for _, name := range []string{SheetSummary, SheetCategories, SheetAgeBands} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	dataset := [][]interface{}{toCells(Header())}
	for _, r := range res.Dataset {
		row := []interface{}{r.Region}
		for _, fld := range stats.CountFields() {
			row = append(row, r.Count(fld))
		}
		row = append(row, r.ChildPercentage, r.WomenPercentage, r.Category, r.MostVulnerableChildBand)
		dataset = append(dataset, row)
	}
	if err := writeRows(f, SheetDataset, dataset); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetDataset, "A", "A", 28); err != nil {
		return err
	}

	s := res.Summary
	if err := writeRows(f, SheetSummary, [][]interface{}{
		{"Metric", "Value"},
		{"Regions", s.Regions},
		{"Total cases reported", s.TotalCases},
		{"Average cases per region", s.AvgCasesPerRegion},
		{"Total victims", s.TotalVictims},
		{"Child victims", s.TotalChildVictims},
		{"Adult women victims", s.TotalWomenVictims},
		{"Child victim %", s.ChildVictimPercentage},
		{"Adult women victim %", s.WomenVictimPercentage},
		{"No data", s.NoData},
	}); err != nil {
		return err
	}

	cats := [][]interface{}{{"Category", "Regions", "Total cases", "Average cases", "Region share %"}}
	for _, c := range res.Categories {
		cats = append(cats, []interface{}{c.Category, c.Regions, c.TotalCases, c.AvgCases, c.RegionShare})
	}
	if err := writeRows(f, SheetCategories, cats); err != nil {
		return err
	}

	bands := [][]interface{}{{"Age band", "Victims"}}
	for i, v := range s.AgeHistogram {
		bands = append(bands, []interface{}{stats.BandLabels[i], v})
	}
	if err := writeRows(f, SheetAgeBands, bands); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
