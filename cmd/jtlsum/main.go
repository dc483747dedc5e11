// cmd/jtlsum/main.go
package main

import (
	jtlsum "github.com/mwiater/jtlsum/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = jtlsum.SetVersionInfo
	executeCmd     = jtlsum.Execute
)

// main injects build metadata and runs the jtlsum root command.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
