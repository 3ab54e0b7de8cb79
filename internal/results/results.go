package results

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TestType identifies one of the six mini-games.
type TestType string

const (
	TypeClickTracker   TestType = "click-tracker"
	TypeColorChange    TestType = "color-change"
	TypeSequenceMemory TestType = "sequence-memory"
	TypeNumberFlash    TestType = "number-flash"
	TypeDirectionReact TestType = "direction-react"
	TypeAudioReact     TestType = "audio-react"
)

var AllTypes = []TestType{
	TypeClickTracker,
	TypeColorChange,
	TypeSequenceMemory,
	TypeNumberFlash,
	TypeDirectionReact,
	TypeAudioReact,
}

func (t TestType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MetricKey names a field in the per-result score bag. The same keys are
// used in the shared records service, so they are part of the data contract.
type MetricKey string

const (
	MetricAverageTime MetricKey = "averageTime"
	MetricTotalClicks MetricKey = "totalClicks"
	MetricFastestTime MetricKey = "fastestTime"
	MetricSlowestTime MetricKey = "slowestTime"
	MetricAccuracy    MetricKey = "accuracy"
	MetricScore       MetricKey = "score"
)

// Sentinels substituted for missing metrics during comparison, so an
// absent sample never wins a comparison it shouldn't.
var (
	WorstTime  = math.Inf(1) // time metrics are minimized
	WorstCount = 0.0         // count/score/accuracy metrics are maximized
)

// LowerIsBetter reports whether smaller values of the metric rank higher.
func LowerIsBetter(k MetricKey) bool {
	switch k {
	case MetricAverageTime, MetricFastestTime, MetricSlowestTime:
		return true
	}
	return false
}

// TestResult is one completed attempt at one game. Only the metric fields
// relevant to Type are set; the rest stay nil rather than zero.
type TestResult struct {
	ID             string   `json:"id" csv:"id"`
	Type           TestType `json:"type" csv:"type"`
	Timestamp      int64    `json:"timestamp" csv:"timestamp"`
	AverageTime    *float64 `json:"averageTime,omitempty" csv:"average_time"`
	TotalClicks    *int     `json:"totalClicks,omitempty" csv:"total_clicks"`
	FastestTime    *float64 `json:"fastestTime,omitempty" csv:"fastest_time"`
	SlowestTime    *float64 `json:"slowestTime,omitempty" csv:"slowest_time"`
	Accuracy       *float64 `json:"accuracy,omitempty" csv:"accuracy"`
	Score          *int     `json:"score,omitempty" csv:"score"`
	Percentile     *float64 `json:"percentile,omitempty" csv:"percentile"`
	IsPersonalBest bool     `json:"isPersonalBest" csv:"is_personal_best"`
}

// New returns a result shell with a fresh id and the creation timestamp in
// milliseconds since epoch. The caller fills in the metric fields.
func New(t TestType, now time.Time) TestResult {
	return TestResult{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: now.UnixMilli(),
	}
}

// KeyMetric is the metric a game type is ranked by.
func KeyMetric(t TestType) MetricKey {
	switch t {
	case TypeColorChange, TypeAudioReact:
		return MetricAverageTime
	case TypeClickTracker:
		return MetricTotalClicks
	case TypeDirectionReact:
		return MetricAccuracy
	case TypeNumberFlash, TypeSequenceMemory:
		return MetricScore
	}
	return MetricAverageTime
}

// MetricValue reads one metric off the result. The second return reports
// whether the field is set.
func (r TestResult) MetricValue(k MetricKey) (float64, bool) {
	switch k {
	case MetricAverageTime:
		return deref(r.AverageTime)
	case MetricFastestTime:
		return deref(r.FastestTime)
	case MetricSlowestTime:
		return deref(r.SlowestTime)
	case MetricAccuracy:
		return deref(r.Accuracy)
	case MetricTotalClicks:
		if r.TotalClicks == nil {
			return 0, false
		}
		return float64(*r.TotalClicks), true
	case MetricScore:
		if r.Score == nil {
			return 0, false
		}
		return float64(*r.Score), true
	}
	return 0, false
}

// Key returns the metric this particular result should be ranked by, with
// its value. Direction-react falls back to averageTime when accuracy is
// missing; everything else uses the static KeyMetric.
func (r TestResult) Key() (MetricKey, float64, bool) {
	k := KeyMetric(r.Type)
	if r.Type == TypeDirectionReact && r.Accuracy == nil {
		k = MetricAverageTime
	}
	v, ok := r.MetricValue(k)
	return k, v, ok
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Helpers for building results without pointer boilerplate at call sites.

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
