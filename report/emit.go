package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/zalepa/assaultstats/stats"
)

// Output file names.
const (
	DatasetFile  = "cleaned_dataset.csv"
	ResultFile   = "result.json"
	ReportFile   = "report.txt"
	WorkbookFile = "report.xlsx"
)

// Options selects what Emit writes.
type Options struct {
	CSV, JSON, Text, XLSX, Charts bool
	// BundlePDF also collects the charts into a single PDF.
	BundlePDF bool
	Title     string
	ChartSize ChartSize
}

// AllOutputs enables every output with default chart size.
func AllOutputs() Options {
	return Options{CSV: true, JSON: true, Text: true, XLSX: true, Charts: true, BundlePDF: true, ChartSize: DefaultChartSize}
}

// ChartSizeInches converts a width and height in inches.
func ChartSizeInches(w, h float64) ChartSize {
	return ChartSize{Width: vg.Length(w) * vg.Inch, Height: vg.Length(h) * vg.Inch}
}

// Emit writes the selected outputs into dir, creating it if needed, and
// returns the paths written.
func Emit(dir string, res *stats.Result, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	writeFile := func(name string, write func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if opts.CSV {
		if err := writeFile(DatasetFile, func(w io.Writer) error { return WriteCSV(w, res.Dataset) }); err != nil {
			return written, err
		}
	}
	if opts.JSON {
		if err := writeFile(ResultFile, func(w io.Writer) error { return WriteJSON(w, res) }); err != nil {
			return written, err
		}
	}
	if opts.Text {
		if err := writeFile(ReportFile, func(w io.Writer) error { return WriteText(w, res, opts.Title) }); err != nil {
			return written, err
		}
	}
	if opts.XLSX {
		path := filepath.Join(dir, WorkbookFile)
		if err := WriteXLSX(path, res); err != nil {
			return written, fmt.Errorf("%s: %w", WorkbookFile, err)
		}
		written = append(written, path)
	}
	if opts.Charts {
		charts, err := RenderCharts(dir, res, opts.ChartSize)
		written = append(written, charts...)
		if err != nil {
			return written, err
		}
		if opts.BundlePDF {
			path := filepath.Join(dir, BundleFile)
			if err := BundlePDF(charts, path); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}
