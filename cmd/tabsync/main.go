// Package main is the entry point for the tabsync CLI.
//
// All functionality lives in internal/cli. Build-time variables (version,
// commit, date) are injected via ldflags and default to "dev", "none" and
// "unknown" in development builds.
package main

import (
	"github.com/shinji-kodama/tabsync/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
