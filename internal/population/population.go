// Package population ranks a candidate score against the shared pool of
// historical results contributed by all players.
package population

import (
	"context"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"reactiontest/internal/metrics"
	"reactiontest/internal/results"
)

// DefaultPercentile is returned whenever the population is empty or
// unreachable: no data, assume median.
const DefaultPercentile = 50.0

// ScoreSource supplies the population values for one (type, metric) pair.
// The records service implements it; tests use fakes.
type ScoreSource interface {
	Scores(ctx context.Context, t results.TestType, key results.MetricKey) ([]float64, error)
}

type Engine struct {
	source ScoreSource
}

// NewEngine wraps a score source. A nil source is allowed and behaves as
// an always-empty population, so the suite works without a shared backend.
func NewEngine(source ScoreSource) *Engine {
	return &Engine{source: source}
}

// Percentile computes the share of the population the candidate value
// outperforms, 0–100. Fetch failures and empty populations degrade to
// DefaultPercentile; this never reports an error to the caller.
func (e *Engine) Percentile(ctx context.Context, t results.TestType, value float64, key results.MetricKey) float64 {
	scores := e.fetch(ctx, t, key)
	if len(scores) == 0 {
		metrics.PercentileFallbacks.Inc()
		return DefaultPercentile
	}

	lower := results.LowerIsBetter(key)
	beaten := 0
	for _, s := range scores {
		if (lower && value < s) || (!lower && value > s) {
			beaten++
		}
	}
	return roundPercentile(float64(beaten) / float64(len(scores)) * 100)
}

// Distribution returns the raw population values for plotting. Errors
// degrade to an empty slice.
func (e *Engine) Distribution(ctx context.Context, t results.TestType, key results.MetricKey) []float64 {
	return e.fetch(ctx, t, key)
}

func (e *Engine) fetch(ctx context.Context, t results.TestType, key results.MetricKey) []float64 {
	if e.source == nil {
		return nil
	}
	scores, err := e.source.Scores(ctx, t, key)
	if err != nil {
		log.Printf("[Population] fetch %s/%s failed: %v\n", t, key, err)
		return nil
	}
	return scores
}

// Percentiles below 1 keep two decimals so top performers stay
// distinguishable; everything else rounds to the nearest integer.
func roundPercentile(p float64) float64 {
	if p < 1 {
		return math.Round(p*100) / 100
	}
	return math.Round(p)
}

// Bucket is one histogram bar, [Low, High) except the last bucket, which
// also counts values equal to the population maximum.
type Bucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram bins values into n equal-width buckets spanning [min, max].
// A degenerate sample (all values equal) collapses into a single bucket.
func Histogram(values []float64, n int) []Bucket {
	if len(values) == 0 || n <= 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return []Bucket{{Low: min, High: max, Count: len(values)}}
	}

	width := (max - min) / float64(n)
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].Low = min + float64(i)*width
		buckets[i].High = min + float64(i+1)*width
	}
	buckets[n-1].High = max

	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

// Stats summarizes a population sample for the distribution panel.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Median float64 `json:"median"`
}

func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Stats{
		Count:  len(values),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}
