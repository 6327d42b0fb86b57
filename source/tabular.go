package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/assaultstats/stats"
)

// CSVReader reads a comma-separated release with one header row.
type CSVReader struct {
	Path string
	// R, when set, is read instead of Path.
	R io.Reader
}

func (c *CSVReader) Aliases() stats.Aliases { return TabularAliases }

func (c *CSVReader) Read(ctx context.Context) ([]stats.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(c.Path, err)
	}
	all, err := c.readAll()
	if err != nil {
		return nil, unavailable(c.Path, err)
	}
	i := headerIndex(all, TabularAliases)
	if i < 0 {
		return nil, unavailable(c.Path, ErrNoHeader)
	}
	return tableRows(all[i], all[i+1:]), nil
}

func (c *CSVReader) readAll() ([][]string, error) {
	r := c.R
	if r == nil {
		f, err := os.Open(c.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// XLSXReader reads the tabular release from a spreadsheet. Title rows above
// the header are skipped.
type XLSXReader struct {
	Path string
	// Sheet defaults to the first sheet in the workbook.
	Sheet string
}

func (x *XLSXReader) Aliases() stats.Aliases { return TabularAliases }

func (x *XLSXReader) Read(ctx context.Context) ([]stats.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(x.Path, err)
	}
	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, unavailable(x.Path, err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, unavailable(x.Path, ErrNoHeader)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, unavailable(x.Path, err)
	}
	i := headerIndex(rows, TabularAliases)
	if i < 0 {
		return nil, unavailable(x.Path, ErrNoHeader)
	}
	return tableRows(rows[i], rows[i+1:]), nil
}

// headerIndex returns the first row naming the region column, or the first
// non-blank row when none does. It returns -1 for an empty table.
func headerIndex(rows [][]string, aliases stats.Aliases) int {
	first := -1
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if first < 0 {
			first = i
		}
		for _, cell := range row {
			cell = strings.TrimPrefix(cell, "\ufeff")
			if f, ok := aliases.Lookup(cell); ok && f == stats.FieldRegion {
				return i
			}
		}
	}
	return first
}
