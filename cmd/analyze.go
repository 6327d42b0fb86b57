package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/zalepa/assaultstats/config"
	"github.com/zalepa/assaultstats/logger"
	"github.com/zalepa/assaultstats/report"
	"github.com/zalepa/assaultstats/source"
	"github.com/zalepa/assaultstats/stats"
)

// Analyze implements the "analyze" subcommand: read one source, run the
// pipeline and write the configured outputs.
func Analyze(args []string) {
	if err := runAnalyze(context.Background(), args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	outDir := fs.String("out", "", "output directory (overrides output.dir)")
	topN := fs.Int("top", 0, "regions per ranking (overrides analysis.top_n)")
	strict := fs.Bool("strict", false, "fail when a column is too incomplete")
	totals := fs.String("totals", "", "totals policy: trust or recompute")
	formats := fs.String("format", "", "comma separated outputs: csv,json,text,xlsx,charts")
	title := fs.String("title", "", "report title")
	level := fs.String("log-level", "", "debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: assaultstats analyze [flags] <input.csv | input.xlsx | input.xml | URL>

Clean the per-region case table, derive the per-region metrics and write the
dataset, report and charts. Without an input the configured source.location
is used.

Flags:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = *outDir
		case "top":
			cfg.Analysis.TopN = *topN
		case "strict":
			cfg.Analysis.Strict = *strict
		case "totals":
			cfg.Analysis.Totals = *totals
		case "format":
			cfg.Output.Formats = splitList(*formats)
		case "log-level":
			cfg.Logging.Level = *level
		}
	})
	if fs.NArg() > 0 {
		cfg.Source.Location = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Source.Location == "" {
		fs.Usage()
		return errors.New("no input given")
	}

	log := logger.NewWithWriter(cfg.Logging.Level, stderr).With("run", uuid.NewString())
	log.Info("analyzing", "source", cfg.Source.Location, "out", cfg.Output.Dir)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	reader, err := source.Open(cfg.Source.Location, source.NewClient(cfg.Timeout()))
	if err != nil {
		return err
	}
	rows, err := reader.Read(ctx)
	if err != nil {
		return err
	}
	log.Debug("source read", "rows", len(rows))

	res, err := stats.Run(rows, reader.Aliases(), cfg.Options())
	if err != nil {
		return err
	}
	logQuality(log, res)
	if err := res.Quality.Check(len(res.Dataset), cfg.Analysis.MaxMissingFraction); err != nil {
		if cfg.Analysis.Strict {
			return err
		}
		log.Warn("source is incomplete", "err", err)
	}

	paths, err := report.Emit(cfg.Output.Dir, res, reportOptions(cfg, *title))
	for _, p := range paths {
		fmt.Fprintf(stdout, "wrote %s\n", p)
	}
	if err != nil {
		return err
	}
	log.Info("done", "regions", res.Summary.Regions, "cases", res.Summary.TotalCases, "files", len(paths))
	return nil
}

func reportOptions(cfg *config.Config, title string) report.Options {
	return report.Options{
		CSV:       cfg.HasFormat(config.FormatCSV),
		JSON:      cfg.HasFormat(config.FormatJSON),
		Text:      cfg.HasFormat(config.FormatText),
		XLSX:      cfg.HasFormat(config.FormatXLSX),
		Charts:    cfg.HasFormat(config.FormatCharts),
		BundlePDF: cfg.Output.BundlePDF,
		Title:     title,
		ChartSize: report.ChartSizeInches(cfg.Output.ChartWidthIn, cfg.Output.ChartHeightIn),
	}
}

func logQuality(log *logger.Logger, res *stats.Result) {
	q := res.Quality
	log.Info("normalized", "rows", q.Rows, "regions", len(res.Dataset), "skipped", q.Skipped)
	for _, name := range q.SummaryRows {
		log.Debug("dropped summary row", "region", name)
	}
	for _, name := range q.Duplicates {
		log.Warn("dropped duplicate region", "region", name)
	}
	for _, m := range q.TotalMismatches {
		log.Warn("total disagrees with its bands", "region", m.Region, "field", m.Field.String(), "provided", m.Provided, "computed", m.Computed)
	}
	if res.Summary.NoData {
		log.Warn("source has no region rows")
	}
}
