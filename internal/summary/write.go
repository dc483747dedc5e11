package summary

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// OutputFileName is the name of the summary written into the output directory.
const OutputFileName = "results_summary.csv"

// Write serializes table as UTF-8 comma-separated text to
// <dir>/results_summary.csv, creating dir when missing and replacing any
// existing file. It returns the written path.
func Write(table *Table, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, OutputFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Columns); err != nil {
		file.Close()
		return "", fmt.Errorf("unable to write header to %s: %w", path, err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		file.Close()
		return "", fmt.Errorf("unable to write rows to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("unable to close %s: %w", path, err)
	}
	return path, nil
}
