package game

import (
	"time"

	"reactiontest/internal/results"
)

// SequenceConfig tunes the grid memory game.
type SequenceConfig struct {
	GridSize   int
	Highlight  time.Duration
	Gap        time.Duration
	LevelPause time.Duration
}

// SequenceGame plays back a growing sequence of grid cells, one new
// cell per level, and asks the player to repeat it. The first mistake
// ends the run; the score is the last fully repeated level.
type SequenceGame struct {
	machine
	cfg      SequenceConfig
	sequence []int
	level    int
	inputIdx int
}

func newSequence(cfg SequenceConfig, deps Deps) *SequenceGame {
	return &SequenceGame{machine: newMachine(results.TypeSequenceMemory, deps), cfg: cfg}
}

func (g *SequenceGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.countdownLocked(g.nextLevelLocked)
}

func (g *SequenceGame) Handle(in Input) error {
	if in.Kind != InputCell {
		return errUnexpectedInput(g.typ, in.Kind)
	}
	g.ClickCell(in.Cell)
	return nil
}

// Sequence returns a copy of the cells shown so far.
func (g *SequenceGame) Sequence() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.sequence))
	copy(out, g.sequence)
	return out
}

// ClickCell registers the player's next repeat attempt. Clicks during
// playback are ignored rather than penalized.
func (g *SequenceGame) ClickCell(cell int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateInput {
		return
	}
	if cell != g.sequence[g.inputIdx] {
		g.failLocked()
		return
	}
	g.inputIdx++
	if g.inputIdx < len(g.sequence) {
		return
	}
	g.emitLocked(Event{Kind: EventRound, Level: g.level, Correct: true})
	g.armLocked(g.cfg.LevelPause, g.nextLevelLocked)
}

func (g *SequenceGame) nextLevelLocked() {
	g.level++
	g.sequence = append(g.sequence, g.rng.IntBetween(0, g.cfg.GridSize-1))
	g.inputIdx = 0
	g.emitLocked(Event{Kind: EventLevel, Level: g.level})
	g.showStepLocked(0)
}

// showStepLocked plays back the sequence from index i using chained
// highlight and gap timers, then opens the input phase.
func (g *SequenceGame) showStepLocked(i int) {
	if i >= len(g.sequence) {
		g.state = StateInput
		g.emitLocked(Event{Kind: EventRound, Level: g.level})
		return
	}
	g.state = StateShowing
	g.emitLocked(Event{Kind: EventHighlight, Cell: g.sequence[i], On: true})
	g.armLocked(g.cfg.Highlight, func() {
		g.emitLocked(Event{Kind: EventHighlight, Cell: g.sequence[i]})
		g.armLocked(g.cfg.Gap, func() {
			g.showStepLocked(i + 1)
		})
	})
}

func (g *SequenceGame) failLocked() {
	r := g.newResultLocked()
	r.Score = results.Int(g.level - 1)
	g.finishLocked(Outcome{
		Success:  false,
		Reason:   FailWrongCell,
		Recorded: true,
		Result:   r,
	})
}
