package grading

import (
	"math"

	"reactiontest/internal/results"
)

// Grade is a coarse tier derived from a continuous reaction-time metric.
type Grade string

const (
	GradeElite        Grade = "elite"
	GradePro          Grade = "pro"
	GradeAdvanced     Grade = "advanced"
	GradeIntermediate Grade = "intermediate"
	GradeBeginner     Grade = "beginner"
)

// Tier boundaries in milliseconds, closed-open: [0,150) elite, [150,200)
// pro, [200,300) advanced, [300,400) intermediate, [400,∞) beginner.
var thresholds = []struct {
	below float64
	grade Grade
}{
	{150, GradeElite},
	{200, GradePro},
	{300, GradeAdvanced},
	{400, GradeIntermediate},
}

// FromTime maps an average reaction time to its tier. Total over all
// finite inputs; exactly one tier applies.
func FromTime(averageMs float64) Grade {
	for _, t := range thresholds {
		if averageMs < t.below {
			return t.grade
		}
	}
	return GradeBeginner
}

// Accuracy differences at or below this are treated as a tie and broken
// by reaction time instead.
const accuracyTolerance = 0.01

// CompareScores returns a signed value: positive when a outperforms b,
// negative when b outperforms a, zero when tied. Both results must be of
// a's type; missing metrics read as the worst value for their direction.
func CompareScores(a, b results.TestResult) float64 {
	switch a.Type {
	case results.TypeColorChange, results.TypeAudioReact:
		return timeDiff(a.AverageTime, b.AverageTime)
	case results.TypeClickTracker:
		return countDiff(intVal(a.TotalClicks), intVal(b.TotalClicks))
	case results.TypeDirectionReact:
		if diff := countDiff(a.Accuracy, b.Accuracy); math.Abs(diff) > accuracyTolerance {
			return diff
		}
		return timeDiff(a.AverageTime, b.AverageTime)
	case results.TypeNumberFlash, results.TypeSequenceMemory:
		return countDiff(intVal(a.Score), intVal(b.Score))
	}
	return 0
}

// IsNewPersonalBest reports whether candidate beats the stored best.
// A nil best means no prior result of the type exists.
func IsNewPersonalBest(candidate results.TestResult, best *results.TestResult) bool {
	if best == nil {
		return true
	}
	return CompareScores(candidate, *best) > 0
}

// timeDiff ranks lower-is-better metrics: positive when a is faster.
// Two missing samples are a tie, not Inf-Inf.
func timeDiff(a, b *float64) float64 {
	av, bv := orElse(a, results.WorstTime), orElse(b, results.WorstTime)
	if math.IsInf(av, 1) && math.IsInf(bv, 1) {
		return 0
	}
	return bv - av
}

// countDiff ranks higher-is-better metrics: positive when a is larger.
func countDiff(a, b *float64) float64 {
	return orElse(a, results.WorstCount) - orElse(b, results.WorstCount)
}

func orElse(p *float64, worst float64) float64 {
	if p == nil {
		return worst
	}
	return *p
}

func intVal(p *int) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}
