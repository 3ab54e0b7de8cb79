package game

import (
	"time"

	"reactiontest/internal/metrics"
	"reactiontest/internal/results"
)

// falseStartAverage is the sentinel average recorded when a run is
// failed outright by an early press. It sorts below any honest run.
const falseStartAverage = 9999

// ReactionConfig tunes the two stimulus-reaction games. Grace is a
// debounce window at the start of each wait; presses inside it are
// swallowed instead of counting as false starts. FatalFalseStart fails
// the whole run on an early press, otherwise only the round restarts.
type ReactionConfig struct {
	Rounds          int
	MinDelay        time.Duration
	MaxDelay        time.Duration
	Grace           time.Duration
	FatalFalseStart bool
}

// ReactionGame runs a fixed number of wait-then-react rounds. It backs
// both the color change test and the audio tone test; the only
// differences between the two are config values.
type ReactionGame struct {
	machine
	cfg        ReactionConfig
	round      int
	samples    []float64
	waitStart  time.Time
	stimulusAt time.Time
}

func newReaction(t results.TestType, cfg ReactionConfig, deps Deps) *ReactionGame {
	return &ReactionGame{machine: newMachine(t, deps), cfg: cfg}
}

func (g *ReactionGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.countdownLocked(g.startRoundLocked)
}

func (g *ReactionGame) Handle(in Input) error {
	if in.Kind != InputPress {
		return errUnexpectedInput(g.typ, in.Kind)
	}
	g.Press()
	return nil
}

// Press registers the player's reaction. During the wait phase it is a
// false start; once the stimulus is showing it closes the round.
func (g *ReactionGame) Press() {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateActive:
		g.sampleLocked()
	case StateWaiting:
		if g.clk.Now().Sub(g.waitStart) < g.cfg.Grace {
			return
		}
		g.falseStartLocked()
	}
}

func (g *ReactionGame) startRoundLocked() {
	g.round++
	g.beginWaitLocked()
}

func (g *ReactionGame) beginWaitLocked() {
	g.state = StateWaiting
	g.waitStart = g.clk.Now()
	g.emitLocked(Event{Kind: EventRound, Round: g.round})
	delay := g.rng.Duration(g.cfg.MinDelay, g.cfg.MaxDelay)
	g.armLocked(delay, g.stimulusLocked)
}

func (g *ReactionGame) stimulusLocked() {
	g.state = StateActive
	g.stimulusAt = g.clk.Now()
	g.emitLocked(Event{Kind: EventStimulus, Round: g.round})
}

func (g *ReactionGame) sampleLocked() {
	elapsed := float64(g.clk.Now().Sub(g.stimulusAt).Milliseconds())
	g.samples = append(g.samples, elapsed)
	metrics.ReactionTime.Observe(elapsed)
	g.emitLocked(Event{Kind: EventRound, Round: g.round, SampleMS: elapsed, Correct: true})
	if len(g.samples) >= g.cfg.Rounds {
		g.completeLocked()
		return
	}
	// every round gets its own 3-2-1 beat
	g.countdownLocked(g.startRoundLocked)
}

func (g *ReactionGame) falseStartLocked() {
	metrics.FalseStarts.WithLabelValues(string(g.typ)).Inc()
	if !g.cfg.FatalFalseStart {
		g.emitLocked(Event{Kind: EventFalseStart, Round: g.round})
		// the retried round replays the countdown, same round number
		g.countdownLocked(g.beginWaitLocked)
		return
	}

	r := g.newResultLocked()
	r.AverageTime = results.Float(falseStartAverage)
	r.TotalClicks = results.Int(len(g.samples))
	if len(g.samples) > 0 {
		_, min, max := meanMinMax(g.samples)
		r.FastestTime = results.Float(min)
		r.SlowestTime = results.Float(max)
	}
	g.finishLocked(Outcome{
		Success:  false,
		Reason:   FailFalseStart,
		Recorded: true,
		Result:   r,
	})
}

func (g *ReactionGame) completeLocked() {
	mean, min, max := meanMinMax(g.samples)
	r := g.newResultLocked()
	r.AverageTime = results.Float(mean)
	r.FastestTime = results.Float(min)
	r.SlowestTime = results.Float(max)
	r.TotalClicks = results.Int(len(g.samples))
	g.finishLocked(Outcome{Success: true, Recorded: true, Result: r})
}
