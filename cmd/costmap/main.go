// Package main provides the entry point for the costmap CLI tool.
package main

import (
	"github.com/aecstation/costmap/cmd/costmap/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
