package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
)

func sampleStats() map[string]Stats {
	return Aggregate(Clean(&Table{
		Columns: []string{"label", "elapsed"},
		Rows:    [][]string{{"login", "50"}, {"login", "150"}, {"checkout", "1200"}},
	}))
}

func TestWritePrometheus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "summary.prom")
	if err := WritePrometheus(path, sampleStats()); err != nil {
		t.Fatalf("WritePrometheus error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}

	elapsed, ok := families[elapsedMetricName]
	if !ok || len(elapsed.GetMetric()) != 2 {
		t.Fatalf("expected 2 elapsed series, got %v", families)
	}
	for _, m := range elapsed.GetMetric() {
		if m.GetLabel()[0].GetValue() != "login" {
			continue
		}
		summary := m.GetSummary()
		if summary.GetSampleCount() != 2 || summary.GetSampleSum() != 200 {
			t.Fatalf("unexpected login summary: %v", summary)
		}
		for _, q := range summary.GetQuantile() {
			if q.GetQuantile() == 0.9 && q.GetValue() != 140 {
				t.Fatalf("expected p90 140, got %v", q.GetValue())
			}
		}
	}

	over, ok := families[overMetricName]
	if !ok || len(over.GetMetric()) != 2*len(Thresholds) {
		t.Fatalf("expected %d over series, got %v", 2*len(Thresholds), over)
	}
	found := false
	for _, m := range over.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["label"] == "checkout" && labels["threshold_ms"] == "1000" {
			found = true
			if m.GetGauge().GetValue() != 1 {
				t.Fatalf("expected checkout over 1000 = 1, got %v", m.GetGauge().GetValue())
			}
		}
	}
	if !found {
		t.Fatal("missing checkout/1000 series")
	}
}

func TestWritePrometheusEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.prom")
	if err := WritePrometheus(path, map[string]Stats{}); err != nil {
		t.Fatalf("WritePrometheus error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty exposition, got %q", data)
	}
}

func TestWriteAnalysisJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analysis.json")
	if err := WriteAnalysisJSON(path, sampleStats()); err != nil {
		t.Fatalf("WriteAnalysisJSON error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded []Stats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Label != "checkout" || decoded[1].Label != "login" {
		t.Fatalf("expected stats sorted by label, got %+v", decoded)
	}
	if decoded[1].Median != 100 || len(decoded[1].Breaches) != len(Thresholds) {
		t.Fatalf("unexpected login stats: %+v", decoded[1])
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Format(sampleStats()))
	for _, want := range []string{"Транзакция", ">4000 ms", "checkout", "login", "1 (50.0%)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered table:\n%s", want, out)
		}
	}
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, "label,elapsed\nlogin,50\nlogin,150\nlogin,oops\ncheckout,1200\n")
	opts := Options{
		InputPath:    input,
		OutputDir:    filepath.Join(dir, "out"),
		AnalysisPath: filepath.Join(dir, "out", "analysis.json"),
		PromPath:     filepath.Join(dir, "out", "summary.prom"),
		Print:        true,
	}

	var out strings.Builder
	result, err := Run(opts, &out)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Labels != 2 || result.Records != 3 || result.Dropped != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for _, path := range []string{result.OutputPath, opts.AnalysisPath, opts.PromPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	text := out.String()
	for _, want := range []string{"Парсинг " + input + " начат...", "Результаты записаны в " + result.OutputPath, "Analysis JSON written to", "Prometheus metrics written to", "Транзакция"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestAnalysisJSONOrdersEmptyLabelLast(t *testing.T) {
	byLabel := Aggregate(Clean(&Table{
		Columns: []string{"label", "elapsed"},
		Rows:    [][]string{{"", "10"}, {"beta", "20"}, {"alpha", "30"}},
	}))
	data, err := analysisJSON(byLabel)
	if err != nil {
		t.Fatalf("analysisJSON error: %v", err)
	}
	var decoded []Stats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var order []string
	for _, s := range decoded {
		order = append(order, s.Label)
	}
	if strings.Join(order, "|") != "alpha|beta|" {
		t.Fatalf("expected alpha, beta, empty; got %q", order)
	}

	var labels []string
	for _, row := range Format(byLabel).Rows {
		labels = append(labels, row[0])
	}
	if strings.Join(labels, "|") != strings.Join(order, "|") {
		t.Fatalf("expected export order %q to match summary order %q", order, labels)
	}
}

func TestRunExportDirectoryFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	opts := Options{
		InputPath: writeInput(t, "label,elapsed\nlogin,50\n"),
		OutputDir: outDir,
		PromPath:  filepath.Join(blocker, "summary.prom"),
	}

	var out strings.Builder
	if _, err := Run(opts, &out); err == nil {
		t.Fatal("expected error for an export under a regular file")
	}
	if _, err := os.Stat(filepath.Join(outDir, OutputFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected no summary file, stat err = %v", err)
	}
	if strings.Contains(out.String(), "Результаты записаны в") {
		t.Fatalf("unexpected completion message: %q", out.String())
	}
}

func TestRunExportWriteFailureRemovesOutputs(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	analysisPath := filepath.Join(dir, "analysis.json")
	promDir := filepath.Join(dir, "prom-is-a-dir")
	if err := os.MkdirAll(promDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	opts := Options{
		InputPath:    writeInput(t, "label,elapsed\nlogin,50\n"),
		OutputDir:    outDir,
		AnalysisPath: analysisPath,
		PromPath:     promDir,
	}

	var out strings.Builder
	if _, err := Run(opts, &out); err == nil {
		t.Fatal("expected error writing an export over a directory")
	}
	for _, path := range []string{filepath.Join(outDir, OutputFileName), analysisPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err = %v", path, err)
		}
	}
}
