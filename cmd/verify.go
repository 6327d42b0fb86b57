package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zalepa/assaultstats/source"
	"github.com/zalepa/assaultstats/stats"
)

// ErrSourcesDisagree is returned by verify when the two sources normalize to
// different records.
var ErrSourcesDisagree = errors.New("sources disagree")

// Verify implements the "verify" subcommand: normalize a tabular file and a
// markup file of the same year and list every field where they differ, along
// with any difference in dropped, skipped or missing values.
func Verify(args []string) {
	if err := runVerify(context.Background(), args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runVerify(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: assaultstats verify <tabular.csv | tabular.xlsx> <markup.xml | URL>\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("verify needs two inputs")
	}

	client := source.NewClient(0)
	var sides [2][]stats.Record
	var quality [2]stats.Quality
	for i := range sides {
		reader, err := source.Open(fs.Arg(i), client)
		if err != nil {
			return err
		}
		rows, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		n, err := stats.NewNormalizer(reader.Aliases(), stats.TotalsTrust)
		if err != nil {
			return err
		}
		sides[i], quality[i] = n.Normalize(rows)
	}

	diffs := stats.Compare(sides[0], sides[1])
	for _, d := range diffs {
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", d.Region, d.Field, d.Left, d.Right)
	}
	qdiffs := stats.CompareQuality(quality[0], quality[1])
	for _, d := range qdiffs {
		fmt.Fprintf(stdout, "(quality)\t%s\t%d\t%d\n", d.Measure, d.Left, d.Right)
	}
	if n := len(diffs) + len(qdiffs); n > 0 {
		return fmt.Errorf("%w: %d differences", ErrSourcesDisagree, n)
	}
	fmt.Fprintf(stdout, "%d regions match\n", len(sides[0]))
	return nil
}
