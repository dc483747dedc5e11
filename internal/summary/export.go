package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const (
	elapsedMetricName = "jtlsum_elapsed_milliseconds"
	overMetricName    = "jtlsum_requests_over_threshold"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTable draws the formatted summary for a terminal.
func RenderTable(t *Table) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(t.Columns...).
		Rows(t.Rows...).
		String()
}

// WriteAnalysisJSON writes the numeric stats, sorted by label, as indented JSON.
func WriteAnalysisJSON(path string, byLabel map[string]Stats) error {
	data, err := analysisJSON(byLabel)
	if err != nil {
		return err
	}
	if err := ensureParent(path); err != nil {
		return err
	}
	return writeArtifact(path, data)
}

// WritePrometheus writes the stats in the Prometheus text exposition format.
func WritePrometheus(path string, byLabel map[string]Stats) error {
	data, err := prometheusText(byLabel)
	if err != nil {
		return err
	}
	if err := ensureParent(path); err != nil {
		return err
	}
	return writeArtifact(path, data)
}

func analysisJSON(byLabel map[string]Stats) ([]byte, error) {
	data, err := json.MarshalIndent(sortedStats(byLabel), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to marshal analysis JSON: %w", err)
	}
	return data, nil
}

func prometheusText(byLabel map[string]Stats) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodePrometheus(&buf, byLabel); err != nil {
		return nil, fmt.Errorf("unable to encode Prometheus metrics: %w", err)
	}
	return buf.Bytes(), nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}

func encodePrometheus(w io.Writer, byLabel map[string]Stats) error {
	elapsed := &dto.MetricFamily{
		Name: proto.String(elapsedMetricName),
		Help: proto.String("Elapsed time per transaction label."),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	over := &dto.MetricFamily{
		Name: proto.String(overMetricName),
		Help: proto.String("Requests slower than the threshold per transaction label."),
		Type: dto.MetricType_GAUGE.Enum(),
	}

	for _, s := range sortedStats(byLabel) {
		elapsed.Metric = append(elapsed.Metric, &dto.Metric{
			Label: []*dto.LabelPair{labelPair("label", s.Label)},
			Summary: &dto.Summary{
				SampleCount: proto.Uint64(uint64(s.Count)),
				SampleSum:   proto.Float64(s.Sum),
				Quantile: []*dto.Quantile{
					quantile(0.5, s.Median),
					quantile(0.9, s.P90),
					quantile(0.95, s.P95),
					quantile(0.99, s.P99),
				},
			},
		})
		for _, b := range s.Breaches {
			over.Metric = append(over.Metric, &dto.Metric{
				Label: []*dto.LabelPair{
					labelPair("label", s.Label),
					labelPair("threshold_ms", strconv.Itoa(b.ThresholdMs)),
				},
				Gauge: &dto.Gauge{Value: proto.Float64(float64(b.Over))},
			})
		}
	}

	for _, mf := range []*dto.MetricFamily{elapsed, over} {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func labelPair(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func quantile(q, v float64) *dto.Quantile {
	return &dto.Quantile{Quantile: proto.Float64(q), Value: proto.Float64(v)}
}

func sortedStats(byLabel map[string]Stats) []Stats {
	out := make([]Stats, 0, len(byLabel))
	for _, s := range byLabel {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return labelLess(out[i].Label, out[j].Label) })
	return out
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create directory for %s: %w", path, err)
		}
	}
	return nil
}
