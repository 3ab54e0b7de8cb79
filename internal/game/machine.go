package game

import (
	"sync"
	"time"

	"reactiontest/internal/clock"
	"reactiontest/internal/metrics"
	"reactiontest/internal/random"
	"reactiontest/internal/results"
)

// CountdownTicks is the number of one second countdown beats emitted
// before any game starts measuring.
const CountdownTicks = 3

// State is the coarse phase a game machine is in. Clients render off
// these, so the names are part of the wire contract.
type State string

const (
	StateIdle      State = "idle"
	StateCountdown State = "countdown"
	StateWaiting   State = "waiting"
	StateActive    State = "active"
	StateShowing   State = "showing"
	StateInput     State = "input"
	StateFeedback  State = "feedback"
	StateFinished  State = "finished"
)

// FailReason says why a run ended early.
type FailReason string

const (
	FailNone       FailReason = ""
	FailFalseStart FailReason = "false-start"
	FailWrongCell  FailReason = "wrong-cell"
	FailWrongEntry FailReason = "wrong-entry"
)

// Outcome is the terminal summary of one run. Recorded reports whether
// Result carries a score worth keeping; runs torn down mid-flight or
// finished without a single sample produce Recorded == false.
type Outcome struct {
	Success  bool               `json:"success"`
	Reason   FailReason         `json:"reason,omitempty"`
	Recorded bool               `json:"recorded"`
	Result   results.TestResult `json:"result"`
}

// machine carries the state shared by every game: the clock pair, the
// single live timer with its epoch guard, and the terminal outcome.
// Exactly one timer is armed at a time; arming a new one cancels the
// old. Callbacks fired by the scheduler re-check the epoch under the
// lock so a cancelled or superseded timer can never mutate the run.
type machine struct {
	mu       sync.Mutex
	typ      results.TestType
	clk      clock.Clock
	sched    clock.Scheduler
	rng      *random.Source
	listener func(Event)

	state   State
	epoch   uint64
	cancel  clock.CancelFunc
	outcome *Outcome
}

func newMachine(t results.TestType, deps Deps) machine {
	return machine{
		typ:      t,
		clk:      deps.Clock,
		sched:    deps.Scheduler,
		rng:      deps.Random,
		listener: deps.Listener,
		state:    StateIdle,
	}
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Outcome returns the terminal summary once the run has finished.
func (m *machine) Outcome() (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome == nil {
		return Outcome{}, false
	}
	return *m.outcome, true
}

// Teardown cancels any pending timer and freezes the machine. A torn
// down run that never finished records no outcome.
func (m *machine) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimerLocked()
	m.state = StateFinished
}

// armLocked schedules fn as the machine's single live timer. fn runs
// with the lock held, and only if no cancel or newer arm happened in
// the meantime.
func (m *machine) armLocked(d time.Duration, fn func()) {
	m.cancelTimerLocked()
	token := m.epoch
	m.cancel = m.sched.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch != token || m.state == StateFinished {
			return
		}
		m.cancel = nil
		fn()
	})
}

func (m *machine) cancelTimerLocked() {
	m.epoch++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// countdownLocked runs the 3-2-1 beat and then hands off to next.
func (m *machine) countdownLocked(next func()) {
	m.state = StateCountdown
	m.countdownTickLocked(CountdownTicks, next)
}

func (m *machine) countdownTickLocked(n int, next func()) {
	if n == 0 {
		next()
		return
	}
	m.emitLocked(Event{Kind: EventCountdown, Countdown: n})
	m.armLocked(time.Second, func() {
		m.countdownTickLocked(n-1, next)
	})
}

// emitLocked delivers an event to the listener with the machine lock
// held. Listeners must not call back into the machine synchronously.
func (m *machine) emitLocked(ev Event) {
	if m.listener == nil {
		return
	}
	ev.State = m.state
	m.listener(ev)
}

func (m *machine) finishLocked(out Outcome) {
	if m.state == StateFinished {
		return
	}
	m.cancelTimerLocked()
	m.state = StateFinished
	m.outcome = &out
	metrics.TestsCompleted.WithLabelValues(string(m.typ)).Inc()
	m.emitLocked(Event{Kind: EventFinished, Outcome: &out})
}

// newResultLocked starts a result shell stamped with the machine clock.
func (m *machine) newResultLocked() results.TestResult {
	return results.New(m.typ, m.clk.Now())
}

func meanMinMax(samples []float64) (mean, min, max float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	min, max = samples[0], samples[0]
	var sum float64
	for _, s := range samples {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return sum / float64(len(samples)), min, max
}
