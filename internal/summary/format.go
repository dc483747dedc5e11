package summary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Header holds the output column names in order.
var Header = []string{
	"Транзакция", "Количество запросов", "Min (ms)", "Median (ms)", "Mean (ms)", "Max (ms)",
	"90%le (ms)", "95%le (ms)", "99%le (ms)", ">100 ms", ">200 ms", ">300 ms", ">1000 ms", ">4000 ms",
}

// Format renders one row per label in the Header column order. Rows are
// sorted by label with the empty label last.
func Format(byLabel map[string]Stats) *Table {
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labelLess(labels[i], labels[j]) })

	table := &Table{Columns: append([]string(nil), Header...)}
	for _, label := range labels {
		table.Rows = append(table.Rows, formatRow(byLabel[label]))
	}
	return table
}

// labelLess orders labels ascending with the empty (missing) label last.
func labelLess(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a < b
}

func formatRow(s Stats) []string {
	extreme := formatFloat
	if s.integral {
		extreme = formatInt
	}
	row := []string{
		s.Label,
		strconv.Itoa(s.Count),
		extreme(s.Min),
		formatFloat(s.Median),
		formatFloat(s.Mean),
		extreme(s.Max),
		formatFloat(s.P90),
		formatFloat(s.P95),
		formatFloat(s.P99),
	}
	for _, b := range s.Breaches {
		row = append(row, combined(b))
	}
	return row
}

// combined renders a breach as "<over> (<pct>%)".
func combined(b Breach) string {
	return fmt.Sprintf("%d (%s%%)", b.Over, formatFloat(b.OverPct))
}

// formatFloat prints the shortest representation that round-trips, keeping a
// trailing ".0" on whole numbers.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatInt(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
