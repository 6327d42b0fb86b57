package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zalepa/assaultstats/config"
	"github.com/zalepa/assaultstats/report"
	"github.com/zalepa/assaultstats/stats"
)

const (
	tabularFixture = "../source/testdata/regions.csv"
	markupFixture  = "../source/testdata/regions.xml"
)

func TestReorderArgs(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("out", "", "")
	fs.Bool("strict", false, "")

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"in.csv", "-out", "dir"}, []string{"-out", "dir", "in.csv"}},
		{[]string{"-out", "dir", "in.csv"}, []string{"-out", "dir", "in.csv"}},
		// Boolean flags do not swallow the input path.
		{[]string{"-strict", "in.csv"}, []string{"-strict", "in.csv"}},
		{[]string{"in.csv", "--strict", "-out=dir"}, []string{"--strict", "-out=dir", "in.csv"}},
		{[]string{"-out", "dir", "--", "-odd.csv"}, []string{"-out", "dir", "-odd.csv"}},
	}
	for _, tt := range tests {
		got := reorderArgs(fs, tt.args)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("reorderArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"csv", "text"}, splitList(" CSV, ,text "))
	assert.Empty(t, splitList(""))
}

func analyze(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = runAnalyze(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestAnalyzeTabular(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := analyze(t, tabularFixture, "-out", dir, "-format", "csv,text,json", "-top", "3")
	require.NoError(t, err)

	assert.Contains(t, stdout, "wrote "+filepath.Join(dir, report.DatasetFile))
	assert.Contains(t, stderr, "run=")
	// Tripura has no case count: one of eight regions is above the 10% limit.
	assert.Contains(t, stderr, "source is incomplete")

	f, err := os.Open(filepath.Join(dir, report.DatasetFile))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 9)

	var regions []string
	for _, r := range rows[1:] {
		regions = append(regions, r[0])
	}
	assert.Equal(t, []string{
		"Assam", "Andhra Pradesh", "Kerala", "Goa", "Arunachal Pradesh", "Sikkim", "Lakshadweep", "Tripura",
	}, regions)
	assert.Equal(t, "multiple_equal", rows[3][len(rows[3])-1])
	assert.Equal(t, "no victims", rows[7][len(rows[7])-1])

	text, err := os.ReadFile(filepath.Join(dir, report.ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Top 3 regions by cases reported")
	assert.Contains(t, string(text), "3,592")

	_, err = os.Stat(filepath.Join(dir, report.WorkbookFile))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeStrict(t *testing.T) {
	_, _, err := analyze(t, "-strict", tabularFixture, "-out", t.TempDir(), "-format", "csv")
	assert.ErrorIs(t, err, stats.ErrIncomplete)
}

func TestAnalyzeAllOutputs(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := analyze(t, markupFixture, "-out", dir)
	require.NoError(t, err)
	for _, name := range []string{report.WorkbookFile, report.ChartCategoryShare, report.BundleFile} {
		assert.Contains(t, stdout, filepath.Join(dir, name))
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestAnalyzeSourcesProduceSameDataset(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	_, _, err := analyze(t, tabularFixture, "-out", a, "-format", "csv")
	require.NoError(t, err)
	_, _, err = analyze(t, markupFixture, "-out", b, "-format", "csv")
	require.NoError(t, err)

	csvA, err := os.ReadFile(filepath.Join(a, report.DatasetFile))
	require.NoError(t, err)
	csvB, err := os.ReadFile(filepath.Join(b, report.DatasetFile))
	require.NoError(t, err)
	assert.Equal(t, string(csvA), string(csvB))
}

func TestAnalyzeConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source.Location = tabularFixture
	cfg.Output.Dir = filepath.Join(dir, "from-config")
	cfg.Output.Formats = []string{config.FormatJSON}
	cfg.Analysis.BinEdges = []int{50, 800, 1200}
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(path))

	_, _, err := analyze(t, "-config", path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "from-config", report.ResultFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category": "Very High"`)
	assert.Contains(t, string(data), `"category": "Medium"`)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-out", t.TempDir()}},
		{"unknown format", []string{tabularFixture, "-format", "pdf"}},
		{"bad totals", []string{tabularFixture, "-totals", "guess"}},
		{"missing file", []string{"does-not-exist.csv"}},
		{"unsupported extension", []string{"data.parquet"}},
		{"unknown flag", []string{"-bogus", tabularFixture}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := analyze(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVerify(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runVerify(context.Background(), []string{tabularFixture, markupFixture}, &out, &bytes.Buffer{}))
	assert.Equal(t, "8 regions match\n", out.String())
}

func TestVerifyMismatch(t *testing.T) {
	data, err := os.ReadFile(tabularFixture)
	require.NoError(t, err)
	changed := strings.Replace(string(data), "4,Goa,73,", "4,Goa,74,", 1)
	path := filepath.Join(t.TempDir(), "changed.csv")
	require.NoError(t, os.WriteFile(path, []byte(changed), 0644))

	var out bytes.Buffer
	err = runVerify(context.Background(), []string{path, markupFixture}, &out, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrSourcesDisagree)
	assert.Equal(t, "Goa\tcases_reported\t74\t73\n", out.String())
}

func TestVerifyQualityMismatch(t *testing.T) {
	data, err := os.ReadFile(tabularFixture)
	require.NoError(t, err)
	// Same regions, without the national total row.
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	path := filepath.Join(t.TempDir(), "no-total.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines[:len(lines)-1], "\n")+"\n"), 0644))

	var out bytes.Buffer
	err = runVerify(context.Background(), []string{path, markupFixture}, &out, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrSourcesDisagree)
	assert.Equal(t, "(quality)\trows\t8\t9\n(quality)\tsummary_rows\t0\t1\n", out.String())
}

func TestVerifyArgs(t *testing.T) {
	err := runVerify(context.Background(), []string{tabularFixture}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	body, err := os.ReadFile(markupFixture)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "feed", "regions.xml")
	var out bytes.Buffer
	require.NoError(t, runFetch(context.Background(), []string{"-url", srv.URL, "-out", dest}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "wrote "+dest)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	// A second run keeps the existing file.
	out.Reset()
	require.NoError(t, runFetch(context.Background(), []string{"-url", srv.URL, "-out", dest}, &out, &bytes.Buffer{}))
	assert.Empty(t, out.String())
}

func TestFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "regions.xml")
	err := runFetch(context.Background(), []string{"-url", srv.URL, "-out", dest}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assaultstats.yaml")
	var out bytes.Buffer
	require.NoError(t, runConfig([]string{"-init", path}, &out, &bytes.Buffer{}))
	assert.FileExists(t, path)
	assert.Error(t, runConfig([]string{"-init", path}, &bytes.Buffer{}, &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, runConfig([]string{"-config", path}, &out, &bytes.Buffer{}))
	var printed config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, *config.Default(), printed)
}
