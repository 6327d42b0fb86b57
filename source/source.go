// Package source reads the raw region table from the formats it is published
// in. Every reader yields the same shape: one stats.Raw per row plus the alias
// table that maps its own column names onto the canonical fields.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zalepa/assaultstats/stats"
)

var (
	// ErrSourceUnavailable wraps every failure to obtain a complete source.
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNoHeader          = errors.New("table has no header row")
	ErrUnknownFormat     = errors.New("unrecognized source format")
)

// Reader produces raw rows from one source.
type Reader interface {
	Read(ctx context.Context) ([]stats.Raw, error)
	Aliases() stats.Aliases
}

// TabularAliases maps the punctuated headers of the CSV and spreadsheet
// releases onto canonical fields.
var TabularAliases = stats.Aliases{
	"State/UT":                 stats.FieldRegion,
	"Cases Reported":           stats.FieldCasesReported,
	"Victims Below 6 Yrs":      stats.FieldBelow6,
	"Victims 6-12 Yrs":         stats.FieldAge6To12,
	"Victims 12-16 Yrs":        stats.FieldAge12To16,
	"Victims 16-18 Yrs":        stats.FieldAge16To18,
	"Total Girl Child Victims": stats.FieldTotalChildVictims,
	"Victims 18-30 Yrs":        stats.FieldAge18To30,
	"Victims 30-45 Yrs":        stats.FieldAge30To45,
	"Victims 45-60 Yrs":        stats.FieldAge45To60,
	"Victims Above 60 Yrs":     stats.FieldAbove60,
	"Total Women Victims":      stats.FieldTotalWomenVictims,
	"Total Victims":            stats.FieldTotalVictims,
}

// MarkupAliases maps the element names of the open-data XML feed onto
// canonical fields.
var MarkupAliases = stats.Aliases{
	"state_ut":                                stats.FieldRegion,
	"cases_reported":                          stats.FieldCasesReported,
	"no_of_victims_girl_child_below_6_years":  stats.FieldBelow6,
	"no_of_victims_girl_child_6_12_years":     stats.FieldAge6To12,
	"no_of_victims_girl_child_12_16_years":    stats.FieldAge12To16,
	"no_of_victims_girl_child_16_18_years":    stats.FieldAge16To18,
	"total_girl_child_victims":                stats.FieldTotalChildVictims,
	"no_of_victims_women_18_30_years":         stats.FieldAge18To30,
	"no_of_victims_women_30_45_years":         stats.FieldAge30To45,
	"no_of_victims_women_45_60_years":         stats.FieldAge45To60,
	"no_of_victims_women_above_60_years":      stats.FieldAbove60,
	"total_women_victims":                     stats.FieldTotalWomenVictims,
	"total_victims":                           stats.FieldTotalVictims,
}

// Open picks a reader for location: an http(s) URL or .xml file is read as
// markup, .csv and .xlsx files as tables.
func Open(location string, client *http.Client) (Reader, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &XMLReader{URL: location, Client: client}, nil
	}
	switch filepath.Ext(lower) {
	case ".csv":
		return &CSVReader{Path: location}, nil
	case ".xlsx":
		return &XLSXReader{Path: location}, nil
	case ".xml":
		return &XMLReader{Path: location}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, location)
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, what, err)
}

// tableRows turns a header plus data rows into raw rows. Blank rows are
// skipped and short rows leave their trailing columns unset.
func tableRows(header []string, rows [][]string) []stats.Raw {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	out := make([]stats.Raw, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		raw := make(stats.Raw, len(header))
		for i, name := range header {
			if i < len(row) {
				raw[name] = row[i]
			}
		}
		out = append(out, raw)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
