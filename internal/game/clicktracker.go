package game

import (
	"time"

	"reactiontest/internal/metrics"
	"reactiontest/internal/results"

	"github.com/google/uuid"
)

// ClickTrackerConfig tunes the timed target clicking game.
type ClickTrackerConfig struct {
	Duration   time.Duration
	AreaWidth  int
	AreaHeight int
	TargetSize int
	Padding    int
}

// Target is the one clickable element on screen. SpawnedAt anchors the
// per-target reaction measurement.
type Target struct {
	ID        string    `json:"id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Size      int       `json:"size"`
	Color     string    `json:"color"`
	SpawnedAt time.Time `json:"-"`
}

// ClickTrackerGame spawns one target at a time inside a fixed area and
// counts hits until the clock runs out. A hit respawns the target
// immediately; there is no miss penalty.
type ClickTrackerGame struct {
	machine
	cfg         ClickTrackerConfig
	target      Target
	samples     []float64
	secondsLeft int
}

func newClickTracker(cfg ClickTrackerConfig, deps Deps) *ClickTrackerGame {
	return &ClickTrackerGame{machine: newMachine(results.TypeClickTracker, deps), cfg: cfg}
}

func (g *ClickTrackerGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.countdownLocked(g.beginLocked)
}

func (g *ClickTrackerGame) Handle(in Input) error {
	if in.Kind != InputClick {
		return errUnexpectedInput(g.typ, in.Kind)
	}
	g.Click(in.Target)
	return nil
}

// Click registers a hit on the target with the given id. Clicks naming
// an already replaced target are ignored; the player raced the respawn.
func (g *ClickTrackerGame) Click(targetID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateActive || targetID != g.target.ID {
		return
	}
	elapsed := float64(g.clk.Now().Sub(g.target.SpawnedAt).Milliseconds())
	g.samples = append(g.samples, elapsed)
	metrics.ReactionTime.Observe(elapsed)
	g.spawnTargetLocked()
}

// CurrentTarget returns the live target while the game is active.
func (g *ClickTrackerGame) CurrentTarget() (Target, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateActive {
		return Target{}, false
	}
	return g.target, true
}

func (g *ClickTrackerGame) beginLocked() {
	g.state = StateActive
	g.secondsLeft = int(g.cfg.Duration / time.Second)
	g.spawnTargetLocked()
	g.armLocked(time.Second, g.tickLocked)
}

func (g *ClickTrackerGame) tickLocked() {
	g.secondsLeft--
	if g.secondsLeft <= 0 {
		g.completeLocked()
		return
	}
	g.emitLocked(Event{Kind: EventTick, SecondsLeft: g.secondsLeft})
	g.armLocked(time.Second, g.tickLocked)
}

func (g *ClickTrackerGame) spawnTargetLocked() {
	pos := g.rng.PositionIn(g.cfg.AreaWidth, g.cfg.AreaHeight, g.cfg.TargetSize, g.cfg.Padding)
	g.target = Target{
		ID:        uuid.New().String(),
		X:         pos.X,
		Y:         pos.Y,
		Size:      g.cfg.TargetSize,
		Color:     g.rng.ColorHex(),
		SpawnedAt: g.clk.Now(),
	}
	t := g.target
	g.emitLocked(Event{Kind: EventTarget, Target: &t})
}

func (g *ClickTrackerGame) completeLocked() {
	out := Outcome{Success: true}
	if len(g.samples) > 0 {
		mean, min, max := meanMinMax(g.samples)
		r := g.newResultLocked()
		r.AverageTime = results.Float(mean)
		r.FastestTime = results.Float(min)
		r.SlowestTime = results.Float(max)
		r.TotalClicks = results.Int(len(g.samples))
		r.Accuracy = results.Float(100)
		out.Recorded = true
		out.Result = r
	}
	g.finishLocked(out)
}
