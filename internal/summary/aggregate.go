package summary

import (
	"math"
	"sort"
)

// Thresholds are the latency limits, in milliseconds, that breach counts are
// reported against.
var Thresholds = []int{100, 200, 300, 1000, 4000}

// Stats summarizes the elapsed values of one label.
type Stats struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
	Mean   float64 `json:"mean_ms"`
	Median float64 `json:"median_ms"`
	P90    float64 `json:"p90_ms"`
	P95    float64 `json:"p95_ms"`
	P99    float64 `json:"p99_ms"`

	Breaches []Breach `json:"breaches"`

	integral bool
}

// Breach splits a label's values around one threshold. Values equal to the
// threshold count as under.
type Breach struct {
	ThresholdMs int     `json:"threshold_ms"`
	Under       int     `json:"under"`
	Over        int     `json:"over"`
	OverPct     float64 `json:"over_pct"`
}

// Aggregate groups records by exact label and computes Stats for each group.
// An empty label is a group of its own.
func Aggregate(ds *Dataset) map[string]Stats {
	groups := make(map[string][]float64)
	for _, rec := range ds.Records {
		groups[rec.Label] = append(groups[rec.Label], rec.Elapsed)
	}

	out := make(map[string]Stats, len(groups))
	for label, values := range groups {
		stats := computeStats(values)
		stats.Label = label
		stats.integral = ds.Integral
		out[label] = stats
	}
	return out
}

// computeStats expects at least one value.
func computeStats(values []float64) Stats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	count := len(sorted)

	stats := Stats{
		Count:  count,
		Sum:    sum,
		Min:    sorted[0],
		Max:    sorted[count-1],
		Mean:   round2(sum / float64(count)),
		Median: round2(percentile(sorted, 50)),
		P90:    round2(percentile(sorted, 90)),
		P95:    round2(percentile(sorted, 95)),
		P99:    round2(percentile(sorted, 99)),
	}

	for _, threshold := range Thresholds {
		// sorted is ascending, so the first index above the threshold is the under count.
		under := sort.Search(count, func(i int) bool { return sorted[i] > float64(threshold) })
		over := count - under
		stats.Breaches = append(stats.Breaches, Breach{
			ThresholdMs: threshold,
			Under:       under,
			Over:        over,
			OverPct:     round2(float64(over) / float64(count) * 100),
		})
	}
	return stats
}

// percentile interpolates linearly between the order statistics around
// (p/100)*(n-1). sorted must be ascending.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower] + weight*(sorted[upper]-sorted[lower])
}

// round2 rounds half to even at two decimal places.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
