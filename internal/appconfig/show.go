package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Output Dir:      %s\n", cfg.OutputDirPath())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", displayPath(cfg.LogFilePath()))
	fmt.Fprintf(out, "  Print Table:     %v\n", cfg.Print)
	fmt.Fprintf(out, "  Analysis Output: %s\n", displayPath(cfg.AnalysisOutput))
	fmt.Fprintf(out, "  Prom Output:     %s\n", displayPath(cfg.PromOutput))
}

func displayPath(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}
