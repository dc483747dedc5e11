package summary

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	// LabelColumn names the transaction column used as the grouping key.
	LabelColumn = "label"
	// ElapsedColumn names the latency column, in milliseconds.
	ElapsedColumn = "elapsed"
)

// RequiredColumns lists the columns every input log must carry.
var RequiredColumns = []string{ElapsedColumn, LabelColumn}

// missingTokens are label cells read as a missing value. They join the
// empty-label group.
var missingTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {},
	"None": {}, "n/a": {}, "nan": {}, "null": {},
}

var errNoColumns = errors.New("no columns to parse from file")

// Table is a delimited file held in memory: a header and the string cells of
// each data row. Rows are padded to the header width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1 when absent.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record is one cleaned input row.
type Record struct {
	Label   string
	Elapsed float64
}

// Dataset is the result of cleaning a table.
type Dataset struct {
	Records []Record
	// Dropped counts rows whose elapsed value failed numeric coercion.
	Dropped int
	// Integral is true when every elapsed cell of the input was an integer,
	// in which case min and max render without a fractional part.
	Integral bool
}

// Load parses path as comma-separated text whose first row is the header.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer file.Close()

	table, err := parse(bufio.NewReader(file))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return table, nil
}

func parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errNoColumns
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &Table{Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(row))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Validate checks that the table carries every required column.
func Validate(table *Table) (*Table, error) {
	for _, name := range RequiredColumns {
		if table.Index(name) < 0 {
			found := append([]string(nil), table.Columns...)
			required := append([]string(nil), RequiredColumns...)
			sort.Strings(required)
			return nil, &SchemaError{Required: required, Found: found}
		}
	}
	return table, nil
}

// Clean coerces the elapsed column to float64 and drops rows that do not
// hold a finite number. The table must already be validated.
func Clean(table *Table) *Dataset {
	labelIdx := table.Index(LabelColumn)
	elapsedIdx := table.Index(ElapsedColumn)

	ds := &Dataset{Records: make([]Record, 0, len(table.Rows)), Integral: true}
	for _, row := range table.Rows {
		raw := strings.TrimSpace(row[elapsedIdx])
		value, ok := parseElapsed(raw)
		if !ok {
			ds.Dropped++
			ds.Integral = false
			continue
		}
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			ds.Integral = false
		}
		ds.Records = append(ds.Records, Record{Label: normalizeLabel(row[labelIdx]), Elapsed: value})
	}
	return ds
}

func normalizeLabel(label string) string {
	if _, ok := missingTokens[label]; ok {
		return ""
	}
	return label
}

func parseElapsed(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
