package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zalepa/assaultstats/config"
	"github.com/zalepa/assaultstats/logger"
	"github.com/zalepa/assaultstats/source"
)

// Fetch implements the "fetch" subcommand: download the markup feed to disk.
func Fetch(args []string) {
	if err := runFetch(context.Background(), args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	url := fs.String("url", "", "feed URL (overrides source.feed_url)")
	out := fs.String("out", "regions.xml", "destination file")
	force := fs.Bool("force", false, "overwrite an existing destination")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: assaultstats fetch [-url URL] [-out regions.xml] [-force]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *url != "" {
		cfg.Source.FeedURL = *url
	}
	if cfg.Source.FeedURL == "" {
		return errors.New("no feed URL configured")
	}
	log := logger.NewWithWriter(cfg.Logging.Level, stderr)

	if _, err := os.Stat(*out); err == nil && !*force {
		log.Info("skip download, destination exists", "path", *out)
		return nil
	}
	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	log.Info("fetching", "url", cfg.Source.FeedURL)
	n, err := source.Fetch(ctx, source.NewClient(cfg.Timeout()), cfg.Source.FeedURL, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", *out, n)
	return nil
}
