package grading

import (
	"testing"
	"time"

	"reactiontest/internal/results"
)

func TestFromTime_Boundaries(t *testing.T) {
	cases := []struct {
		ms   float64
		want Grade
	}{
		{0, GradeElite},
		{149, GradeElite},
		{149.99, GradeElite},
		{150, GradePro},
		{199, GradePro},
		{200, GradeAdvanced},
		{299, GradeAdvanced},
		{300, GradeIntermediate},
		{399, GradeIntermediate},
		{400, GradeBeginner},
		{10000, GradeBeginner},
	}
	for _, c := range cases {
		if got := FromTime(c.ms); got != c.want {
			t.Errorf("FromTime(%v) = %s, want %s", c.ms, got, c.want)
		}
	}
}

func timed(typ results.TestType, avg float64) results.TestResult {
	r := results.New(typ, time.Unix(0, 0))
	r.AverageTime = results.Float(avg)
	return r
}

func scored(typ results.TestType, score int) results.TestResult {
	r := results.New(typ, time.Unix(0, 0))
	r.Score = results.Int(score)
	return r
}

func clicked(total int) results.TestResult {
	r := results.New(results.TypeClickTracker, time.Unix(0, 0))
	r.TotalClicks = results.Int(total)
	return r
}

func directed(accuracy, avg float64) results.TestResult {
	r := results.New(results.TypeDirectionReact, time.Unix(0, 0))
	r.Accuracy = results.Float(accuracy)
	r.AverageTime = results.Float(avg)
	return r
}

func TestCompareScores_LowerTimeWins(t *testing.T) {
	fast := timed(results.TypeColorChange, 180)
	slow := timed(results.TypeColorChange, 250)
	if CompareScores(fast, slow) <= 0 {
		t.Error("faster average time should outperform")
	}
	if CompareScores(slow, fast) >= 0 {
		t.Error("slower average time should lose")
	}
}

func TestCompareScores_HigherClicksWin(t *testing.T) {
	if CompareScores(clicked(40), clicked(30)) <= 0 {
		t.Error("more clicks should outperform")
	}
}

func TestCompareScores_HigherScoreWins(t *testing.T) {
	if CompareScores(scored(results.TypeSequenceMemory, 9), scored(results.TypeSequenceMemory, 7)) <= 0 {
		t.Error("higher sequence level should outperform")
	}
	if CompareScores(scored(results.TypeNumberFlash, 3), scored(results.TypeNumberFlash, 5)) >= 0 {
		t.Error("lower number-flash round count should lose")
	}
}

func TestCompareScores_DirectionAccuracyFirst(t *testing.T) {
	accurate := directed(95, 600)
	fast := directed(80, 300)
	if CompareScores(accurate, fast) <= 0 {
		t.Error("higher accuracy should outrank faster time")
	}
}

func TestCompareScores_DirectionTieBreaksOnTime(t *testing.T) {
	a := directed(90, 350)
	b := directed(90.005, 500)
	// accuracy within tolerance, so the faster run wins
	if CompareScores(a, b) <= 0 {
		t.Error("near-equal accuracy should fall through to time comparison")
	}
}

func TestCompareScores_Antisymmetric(t *testing.T) {
	missing := results.New(results.TypeColorChange, time.Unix(0, 0))
	pairs := [][2]results.TestResult{
		{timed(results.TypeColorChange, 180), timed(results.TypeColorChange, 250)},
		{timed(results.TypeAudioReact, 200), timed(results.TypeAudioReact, 200)},
		{clicked(10), clicked(25)},
		{scored(results.TypeNumberFlash, 4), scored(results.TypeNumberFlash, 4)},
		{directed(90, 350), directed(90.005, 500)},
		{missing, timed(results.TypeColorChange, 300)},
		{missing, missing},
	}
	for i, p := range pairs {
		ab, ba := CompareScores(p[0], p[1]), CompareScores(p[1], p[0])
		if ab != -ba {
			t.Errorf("pair %d: CompareScores not antisymmetric: %v vs %v", i, ab, ba)
		}
	}
}

func TestCompareScores_MissingMetricNeverWins(t *testing.T) {
	missing := results.New(results.TypeColorChange, time.Unix(0, 0))
	present := timed(results.TypeColorChange, 9999)
	if CompareScores(missing, present) >= 0 {
		t.Error("missing average time should lose to any finite time")
	}

	missingClicks := results.New(results.TypeClickTracker, time.Unix(0, 0))
	if CompareScores(missingClicks, clicked(1)) >= 0 {
		t.Error("missing click count should lose to any positive count")
	}
}

func TestIsNewPersonalBest(t *testing.T) {
	first := timed(results.TypeColorChange, 300)
	if !IsNewPersonalBest(first, nil) {
		t.Error("first-ever result should be a personal best")
	}

	better := timed(results.TypeColorChange, 200)
	worse := timed(results.TypeColorChange, 400)
	equal := timed(results.TypeColorChange, 300)

	if !IsNewPersonalBest(better, &first) {
		t.Error("faster run should be a new personal best")
	}
	if IsNewPersonalBest(worse, &first) {
		t.Error("slower run should not be a personal best")
	}
	if IsNewPersonalBest(equal, &first) {
		t.Error("equal run should not be a personal best")
	}
}
