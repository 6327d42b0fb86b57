package main

import (
	"fmt"
	"os"

	"github.com/zalepa/assaultstats/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		cmd.Analyze(os.Args[2:])
	case "fetch":
		cmd.Fetch(os.Args[2:])
	case "verify":
		cmd.Verify(os.Args[2:])
	case "config":
		cmd.Config(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: assaultstats <command>

Commands:
  analyze   Clean a State/UT case table and write the dataset, report and charts
  fetch     Download the open-data XML feed
  verify    Check that a tabular file and an XML file hold the same records
  config    Print the effective configuration or write a default file
`)
}
