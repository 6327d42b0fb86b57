package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zalepa/assaultstats/config"
)

// Config implements the "config" subcommand: print the effective
// configuration, or write the defaults to a new file with -init.
func Config(args []string) {
	if err := runConfig(args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	initPath := fs.String("init", "", "write the default configuration to this file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: assaultstats config [-config file.yaml] [-init file.yaml]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initPath != "" {
		if _, err := os.Stat(*initPath); err == nil {
			return fmt.Errorf("%s already exists", *initPath)
		}
		if err := config.Default().Save(*initPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", *initPath)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
