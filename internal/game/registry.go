package game

import (
	"fmt"
	"time"

	"reactiontest/internal/clock"
	"reactiontest/internal/random"
	"reactiontest/internal/results"
)

// Game is one running test instance. Start kicks off the countdown,
// Handle feeds player input, and Outcome is readable once State
// reports finished.
type Game interface {
	Start()
	Teardown()
	State() State
	Outcome() (Outcome, bool)
	Handle(Input) error
}

// Deps are the collaborators injected into every machine. Zero fields
// fall back to the real clock and an unseeded generator.
type Deps struct {
	Clock     clock.Clock
	Scheduler clock.Scheduler
	Random    *random.Source
	Listener  func(Event)
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Scheduler == nil {
		d.Scheduler = clock.System{}
	}
	if d.Random == nil {
		d.Random = random.New()
	}
	return d
}

// Tuning holds the per-game constants. Deployments can override
// individual values from a YAML file; everything else keeps the
// defaults below.
type Tuning struct {
	ColorChange    ReactionConfig
	AudioReact     ReactionConfig
	ClickTracker   ClickTrackerConfig
	SequenceMemory SequenceConfig
	NumberFlash    NumberFlashConfig
	DirectionReact DirectionConfig
}

func DefaultTuning() Tuning {
	return Tuning{
		ColorChange: ReactionConfig{
			Rounds:          5,
			MinDelay:        1 * time.Second,
			MaxDelay:        5 * time.Second,
			FatalFalseStart: true,
		},
		AudioReact: ReactionConfig{
			Rounds:   5,
			MinDelay: 1 * time.Second,
			MaxDelay: 4 * time.Second,
			Grace:    100 * time.Millisecond,
		},
		ClickTracker: ClickTrackerConfig{
			Duration:   30 * time.Second,
			AreaWidth:  600,
			AreaHeight: 400,
			TargetSize: 50,
			Padding:    20,
		},
		SequenceMemory: SequenceConfig{
			GridSize:   9,
			Highlight:  500 * time.Millisecond,
			Gap:        200 * time.Millisecond,
			LevelPause: 500 * time.Millisecond,
		},
		NumberFlash: NumberFlashConfig{
			Digits:       5,
			InitialFlash: 500 * time.Millisecond,
			CoarseStep:   50 * time.Millisecond,
			FineStep:     10 * time.Millisecond,
			MinFlash:     10 * time.Millisecond,
			CorrectPause: 800 * time.Millisecond,
			WrongPause:   1500 * time.Millisecond,
		},
		DirectionReact: DirectionConfig{
			Duration: 30 * time.Second,
			Penalty:  1 * time.Second,
		},
	}
}

// New builds the machine for the given test type.
func New(t results.TestType, tuning Tuning, deps Deps) (Game, error) {
	deps = deps.withDefaults()
	switch t {
	case results.TypeColorChange:
		return newReaction(t, tuning.ColorChange, deps), nil
	case results.TypeAudioReact:
		return newReaction(t, tuning.AudioReact, deps), nil
	case results.TypeClickTracker:
		return newClickTracker(tuning.ClickTracker, deps), nil
	case results.TypeSequenceMemory:
		return newSequence(tuning.SequenceMemory, deps), nil
	case results.TypeNumberFlash:
		return newNumberFlash(tuning.NumberFlash, deps), nil
	case results.TypeDirectionReact:
		return newDirection(tuning.DirectionReact, deps), nil
	}
	return nil, fmt.Errorf("unknown test type %q", t)
}

func errUnexpectedInput(t results.TestType, k InputKind) error {
	return fmt.Errorf("%s does not accept %q input", t, k)
}
