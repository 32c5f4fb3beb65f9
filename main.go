package main

import (
	"fmt"
	"os"

	"github.com/bnema/inputhook/cmd"
)

var (
	version = "0.1.0-dev"
	commit  = ""
	date    = ""
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
