package population

import (
	"context"
	"errors"
	"math"
	"testing"

	"reactiontest/internal/results"
)

type fakeSource struct {
	scores []float64
	err    error
}

func (f *fakeSource) Scores(_ context.Context, _ results.TestType, _ results.MetricKey) ([]float64, error) {
	return f.scores, f.err
}

func TestPercentile_EmptyPopulationDefaultsTo50(t *testing.T) {
	e := NewEngine(&fakeSource{})
	got := e.Percentile(context.Background(), results.TypeColorChange, 200, results.MetricAverageTime)
	if got != DefaultPercentile {
		t.Errorf("percentile = %v, want %v", got, DefaultPercentile)
	}
}

func TestPercentile_FetchErrorDefaultsTo50(t *testing.T) {
	e := NewEngine(&fakeSource{err: errors.New("connection refused")})
	got := e.Percentile(context.Background(), results.TypeColorChange, 200, results.MetricAverageTime)
	if got != DefaultPercentile {
		t.Errorf("percentile on error = %v, want %v", got, DefaultPercentile)
	}
}

func TestPercentile_NilSourceDefaultsTo50(t *testing.T) {
	e := NewEngine(nil)
	got := e.Percentile(context.Background(), results.TypeNumberFlash, 5, results.MetricScore)
	if got != DefaultPercentile {
		t.Errorf("percentile without source = %v, want %v", got, DefaultPercentile)
	}
}

func TestPercentile_TimeMetricCountsStrictlySlower(t *testing.T) {
	e := NewEngine(&fakeSource{scores: []float64{100, 200, 300, 400}})
	// 250 beats the two strictly slower entries out of four
	got := e.Percentile(context.Background(), results.TypeColorChange, 250, results.MetricAverageTime)
	if got != 50 {
		t.Errorf("percentile = %v, want 50", got)
	}
	// equal values are not beaten
	got = e.Percentile(context.Background(), results.TypeColorChange, 400, results.MetricAverageTime)
	if got != 0 {
		t.Errorf("percentile at slowest = %v, want 0", got)
	}
}

func TestPercentile_CountMetricCountsStrictlyLower(t *testing.T) {
	e := NewEngine(&fakeSource{scores: []float64{10, 20, 30, 40}})
	got := e.Percentile(context.Background(), results.TypeClickTracker, 35, results.MetricTotalClicks)
	if got != 75 {
		t.Errorf("percentile = %v, want 75", got)
	}
}

func TestPercentile_TopPerformerKeepsTwoDecimals(t *testing.T) {
	scores := make([]float64, 1000)
	for i := range scores {
		scores[i] = 100 // everyone is fast
	}
	scores[0] = 5000 // one straggler
	e := NewEngine(&fakeSource{scores: scores})

	got := e.Percentile(context.Background(), results.TypeColorChange, 4000, results.MetricAverageTime)
	if got != 0.1 {
		t.Errorf("sub-1%% percentile = %v, want 0.1", got)
	}
}

func TestPercentile_RoundsToInteger(t *testing.T) {
	e := NewEngine(&fakeSource{scores: []float64{100, 200, 300}})
	got := e.Percentile(context.Background(), results.TypeColorChange, 250, results.MetricAverageTime)
	// beats 1 of 3 → 33.33… → 33
	if got != 33 {
		t.Errorf("percentile = %v, want 33", got)
	}
}

func TestPercentile_MonotoneInValue(t *testing.T) {
	src := &fakeSource{scores: []float64{120, 180, 240, 310, 500, 900}}
	e := NewEngine(src)
	ctx := context.Background()

	prev := math.Inf(1)
	for v := 100.0; v <= 1000; v += 50 {
		p := e.Percentile(ctx, results.TypeColorChange, v, results.MetricAverageTime)
		if p > prev {
			t.Fatalf("time percentile increased from %v to %v at value %v", prev, p, v)
		}
		prev = p
	}

	prev = math.Inf(-1)
	for v := 0.0; v <= 100; v += 5 {
		p := e.Percentile(ctx, results.TypeDirectionReact, v, results.MetricAccuracy)
		if p < prev {
			t.Fatalf("accuracy percentile decreased from %v to %v at value %v", prev, p, v)
		}
		prev = p
	}
}

func TestHistogram_EqualWidthBuckets(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	buckets := Histogram(values, 10)
	if len(buckets) != 10 {
		t.Fatalf("bucket count = %d, want 10", len(buckets))
	}
	for i, b := range buckets {
		want := 1
		if i == 9 {
			want = 2 // 9 and the max value 10
		}
		if b.Count != want {
			t.Errorf("bucket %d count = %d, want %d", i, b.Count, want)
		}
	}
}

func TestHistogram_MaxValueLandsInLastBucket(t *testing.T) {
	buckets := Histogram([]float64{0, 100}, 10)
	if buckets[9].Count != 1 {
		t.Errorf("max value not counted in last bucket: %+v", buckets)
	}
	if buckets[0].Count != 1 {
		t.Errorf("min value not counted in first bucket: %+v", buckets)
	}
}

func TestHistogram_DegenerateSample(t *testing.T) {
	buckets := Histogram([]float64{7, 7, 7}, 10)
	if len(buckets) != 1 || buckets[0].Count != 3 {
		t.Errorf("degenerate histogram = %+v, want one bucket of 3", buckets)
	}
}

func TestHistogram_Empty(t *testing.T) {
	if got := Histogram(nil, 10); got != nil {
		t.Errorf("empty histogram = %+v, want nil", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{100, 200, 300, 400})
	if s.Count != 4 {
		t.Errorf("count = %d, want 4", s.Count)
	}
	if s.Mean != 250 {
		t.Errorf("mean = %v, want 250", s.Mean)
	}
	if s.StdDev == 0 {
		t.Error("stddev should be nonzero for a spread sample")
	}
	if s.Median < 200 || s.Median > 300 {
		t.Errorf("median = %v, want within [200, 300]", s.Median)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 || s.Mean != 0 {
		t.Errorf("empty summary = %+v, want zero value", s)
	}
}
