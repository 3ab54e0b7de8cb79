package game

// EventKind tags the payload variant of an Event.
type EventKind string

const (
	EventCountdown  EventKind = "countdown"
	EventStimulus   EventKind = "stimulus"
	EventFalseStart EventKind = "false-start"
	EventRound      EventKind = "round"
	EventTarget     EventKind = "target"
	EventTick       EventKind = "tick"
	EventHighlight  EventKind = "highlight"
	EventLevel      EventKind = "level"
	EventFlash      EventKind = "flash"
	EventPrompt     EventKind = "prompt"
	EventFinished   EventKind = "finished"
)

// Event is a state update pushed to the client while a run is in
// flight. Only the fields relevant to Kind are populated.
type Event struct {
	Kind        EventKind `json:"kind"`
	State       State     `json:"state"`
	Countdown   int       `json:"countdown,omitempty"`
	Round       int       `json:"round,omitempty"`
	Level       int       `json:"level,omitempty"`
	SecondsLeft int       `json:"secondsLeft,omitempty"`
	SampleMS    float64   `json:"sampleMs,omitempty"`
	Correct     bool      `json:"correct,omitempty"`
	Target      *Target   `json:"target,omitempty"`
	Cell        int       `json:"cell"`
	On          bool      `json:"on,omitempty"`
	Digits      string    `json:"digits,omitempty"`
	FlashMS     int64     `json:"flashMs,omitempty"`
	Direction   Direction `json:"direction,omitempty"`
	Outcome     *Outcome  `json:"outcome,omitempty"`
}

// InputKind tags a player input coming off the wire.
type InputKind string

const (
	InputPress     InputKind = "press"
	InputClick     InputKind = "click"
	InputCell      InputKind = "cell"
	InputEntry     InputKind = "entry"
	InputDirection InputKind = "direction"
)

// Input is one player action. Only the field matching Kind is read.
type Input struct {
	Kind      InputKind `json:"kind"`
	Target    string    `json:"target,omitempty"`
	Cell      int       `json:"cell"`
	Entry     string    `json:"entry,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}
