// Package summary turns a load-test result log into a per-transaction latency
// summary: load, validate, clean, aggregate, format and write.
package summary

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mwiater/jtlsum/internal/logging"
)

var (
	progress = color.New(color.FgCyan)
	done     = color.New(color.FgGreen)
)

// Options captures the inputs for one summary run.
type Options struct {
	InputPath    string
	OutputDir    string
	AnalysisPath string
	PromPath     string
	Print        bool
}

// Result describes what a successful run produced.
type Result struct {
	OutputPath string
	Labels     int
	Records    int
	Dropped    int
}

// Run executes the pipeline and reports progress to out. Nothing is left on
// disk when any stage or export fails.
func Run(opts Options, out io.Writer) (Result, error) {
	progress.Fprintf(out, "Парсинг %s начат...\n", opts.InputPath)

	table, err := Load(opts.InputPath)
	if err != nil {
		return Result{}, err
	}
	logging.LogStage("load", "path=%s columns=%d rows=%d", opts.InputPath, len(table.Columns), len(table.Rows))

	if _, err := Validate(table); err != nil {
		return Result{}, err
	}

	ds := Clean(table)
	logging.LogStage("clean", "kept=%d dropped=%d", len(ds.Records), ds.Dropped)

	byLabel := Aggregate(ds)
	logging.LogStage("aggregate", "labels=%d", len(byLabel))

	formatted := Format(byLabel)
	exports, err := prepareExports(opts, byLabel)
	if err != nil {
		return Result{}, err
	}

	path, err := Write(formatted, opts.OutputDir)
	if err != nil {
		return Result{}, err
	}
	logging.LogStage("write", "path=%s rows=%d", path, len(formatted.Rows))

	for i, exp := range exports {
		if err := writeArtifact(exp.path, exp.data); err != nil {
			removeAll(path, exports[:i])
			return Result{}, err
		}
	}
	for _, exp := range exports {
		fmt.Fprintf(out, "%s written to %s\n", exp.kind, exp.path)
	}
	if opts.Print {
		fmt.Fprintln(out, RenderTable(formatted))
	}

	done.Fprintln(out, "Результаты записаны в", path)
	return Result{
		OutputPath: path,
		Labels:     len(byLabel),
		Records:    len(ds.Records),
		Dropped:    ds.Dropped,
	}, nil
}

type export struct {
	kind string
	path string
	data []byte
}

// prepareExports renders every requested export and creates its directory so
// that only the final file writes remain once the summary is on disk.
func prepareExports(opts Options, byLabel map[string]Stats) ([]export, error) {
	var exports []export
	if opts.AnalysisPath != "" {
		data, err := analysisJSON(byLabel)
		if err != nil {
			return nil, err
		}
		exports = append(exports, export{kind: "Analysis JSON", path: opts.AnalysisPath, data: data})
	}
	if opts.PromPath != "" {
		data, err := prometheusText(byLabel)
		if err != nil {
			return nil, err
		}
		exports = append(exports, export{kind: "Prometheus metrics", path: opts.PromPath, data: data})
	}
	for _, exp := range exports {
		if err := ensureParent(exp.path); err != nil {
			return nil, err
		}
	}
	return exports, nil
}

// removeAll deletes the summary and the exports already written.
func removeAll(summaryPath string, written []export) {
	_ = os.Remove(summaryPath)
	for _, exp := range written {
		_ = os.Remove(exp.path)
	}
	logging.LogStage("rollback", "path=%s exports=%d", summaryPath, len(written))
}
