package game

import (
	"time"

	"reactiontest/internal/results"
)

// NumberFlashConfig tunes the digit flash recall game. The flash
// shrinks by CoarseStep per round until it reaches CoarseStep itself,
// then by FineStep, never below MinFlash.
type NumberFlashConfig struct {
	Digits       int
	InitialFlash time.Duration
	CoarseStep   time.Duration
	FineStep     time.Duration
	MinFlash     time.Duration
	CorrectPause time.Duration
	WrongPause   time.Duration
}

// FlashDuration returns how long the digits stay on screen in the
// given 1-based round.
func FlashDuration(cfg NumberFlashConfig, round int) time.Duration {
	d := cfg.InitialFlash
	for i := 1; i < round; i++ {
		if d > cfg.CoarseStep {
			d -= cfg.CoarseStep
		} else {
			d -= cfg.FineStep
		}
		if d < cfg.MinFlash {
			d = cfg.MinFlash
		}
	}
	return d
}

// NumberFlashGame flashes a digit string for an ever shorter moment
// and asks the player to type it back. The first wrong entry ends the
// run; the score is the number of rounds recalled correctly.
type NumberFlashGame struct {
	machine
	cfg    NumberFlashConfig
	round  int
	digits string
}

func newNumberFlash(cfg NumberFlashConfig, deps Deps) *NumberFlashGame {
	return &NumberFlashGame{machine: newMachine(results.TypeNumberFlash, deps), cfg: cfg}
}

func (g *NumberFlashGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return
	}
	g.countdownLocked(g.nextRoundLocked)
}

func (g *NumberFlashGame) Handle(in Input) error {
	if in.Kind != InputEntry {
		return errUnexpectedInput(g.typ, in.Kind)
	}
	g.Submit(in.Entry)
	return nil
}

// Digits returns the string currently being recalled.
func (g *NumberFlashGame) Digits() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.digits
}

// Submit checks the player's entry against the flashed digits. The
// feedback pause differs for correct and wrong answers so a failing
// player gets a longer look at what the digits were.
func (g *NumberFlashGame) Submit(entry string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateInput {
		return
	}
	g.state = StateFeedback
	if entry == g.digits {
		g.emitLocked(Event{Kind: EventRound, Round: g.round, Correct: true})
		g.armLocked(g.cfg.CorrectPause, g.nextRoundLocked)
		return
	}
	g.emitLocked(Event{Kind: EventRound, Round: g.round, Digits: g.digits})
	g.armLocked(g.cfg.WrongPause, g.failLocked)
}

func (g *NumberFlashGame) nextRoundLocked() {
	g.round++
	g.digits = g.rng.Digits(g.cfg.Digits)
	flash := FlashDuration(g.cfg, g.round)
	g.state = StateShowing
	g.emitLocked(Event{Kind: EventFlash, Round: g.round, Digits: g.digits, FlashMS: flash.Milliseconds()})
	g.armLocked(flash, func() {
		g.state = StateInput
		g.emitLocked(Event{Kind: EventRound, Round: g.round})
	})
}

func (g *NumberFlashGame) failLocked() {
	r := g.newResultLocked()
	r.Score = results.Int(g.round - 1)
	g.finishLocked(Outcome{
		Success:  false,
		Reason:   FailWrongEntry,
		Recorded: true,
		Result:   r,
	})
}
