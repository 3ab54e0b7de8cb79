package game

import (
	"time"

	"reactiontest/internal/metrics"
	"reactiontest/internal/results"
)

// Direction is one of the four arrow prompts.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

var allDirections = []Direction{DirUp, DirDown, DirLeft, DirRight}

// DirectionConfig tunes the arrow key reaction game. Penalty is added
// to the measured time of a prompt answered with the wrong key.
type DirectionConfig struct {
	Duration time.Duration
	Penalty  time.Duration
}

// DirectionGame shows a stream of arrow prompts for a fixed window and
// scores both speed and accuracy. Each key press, right or wrong,
// advances to the next prompt; consecutive prompts never repeat.
type DirectionGame struct {
	machine
	cfg         DirectionConfig
	current     Direction
	promptAt    time.Time
	samples     []float64
	correct     int
	total       int
	secondsLeft int
}

func newDirection(cfg DirectionConfig, deps Deps) *DirectionGame {
	return &DirectionGame{machine: newMachine(results.TypeDirectionReact, deps), cfg: cfg}
}

func (g *DirectionGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.countdownLocked(g.beginLocked)
}

func (g *DirectionGame) Handle(in Input) error {
	if in.Kind != InputDirection {
		return errUnexpectedInput(g.typ, in.Kind)
	}
	g.Press(in.Direction)
	return nil
}

// CurrentPrompt returns the arrow the player should press right now.
func (g *DirectionGame) CurrentPrompt() (Direction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateActive {
		return "", false
	}
	return g.current, true
}

// Press answers the current prompt with the given key.
func (g *DirectionGame) Press(d Direction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateActive {
		return
	}
	elapsed := float64(g.clk.Now().Sub(g.promptAt).Milliseconds())
	hit := d == g.current
	if hit {
		g.correct++
	} else {
		elapsed += float64(g.cfg.Penalty.Milliseconds())
	}
	g.total++
	g.samples = append(g.samples, elapsed)
	metrics.ReactionTime.Observe(elapsed)
	g.emitLocked(Event{Kind: EventRound, Round: g.total, SampleMS: elapsed, Correct: hit})
	g.promptLocked()
}

func (g *DirectionGame) beginLocked() {
	g.state = StateActive
	g.secondsLeft = int(g.cfg.Duration / time.Second)
	g.promptLocked()
	g.armLocked(time.Second, g.tickLocked)
}

func (g *DirectionGame) tickLocked() {
	g.secondsLeft--
	if g.secondsLeft <= 0 {
		g.completeLocked()
		return
	}
	g.emitLocked(Event{Kind: EventTick, SecondsLeft: g.secondsLeft})
	g.armLocked(time.Second, g.tickLocked)
}

func (g *DirectionGame) promptLocked() {
	next := g.current
	for next == g.current || next == "" {
		next = allDirections[g.rng.IntBetween(0, len(allDirections)-1)]
	}
	g.current = next
	g.promptAt = g.clk.Now()
	g.emitLocked(Event{Kind: EventPrompt, Direction: g.current})
}

func (g *DirectionGame) completeLocked() {
	out := Outcome{Success: true}
	if g.correct > 0 {
		mean, min, max := meanMinMax(g.samples)
		r := g.newResultLocked()
		r.AverageTime = results.Float(mean)
		r.FastestTime = results.Float(min)
		r.SlowestTime = results.Float(max)
		r.TotalClicks = results.Int(g.total)
		r.Accuracy = results.Float(float64(g.correct) / float64(g.total) * 100)
		out.Recorded = true
		out.Result = r
	}
	g.finishLocked(out)
}
