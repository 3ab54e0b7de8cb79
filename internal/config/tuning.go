package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"reactiontest/internal/game"
)

// Duration decodes "250ms" style YAML strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// The override structs mirror the game configs with pointer fields, so
// a tuning file only changes the values it actually mentions.

type reactionOverride struct {
	Rounds          *int      `yaml:"rounds"`
	MinDelay        *Duration `yaml:"min_delay"`
	MaxDelay        *Duration `yaml:"max_delay"`
	Grace           *Duration `yaml:"grace"`
	FatalFalseStart *bool     `yaml:"fatal_false_start"`
}

func (o reactionOverride) apply(cfg *game.ReactionConfig) {
	if o.Rounds != nil {
		cfg.Rounds = *o.Rounds
	}
	if o.MinDelay != nil {
		cfg.MinDelay = time.Duration(*o.MinDelay)
	}
	if o.MaxDelay != nil {
		cfg.MaxDelay = time.Duration(*o.MaxDelay)
	}
	if o.Grace != nil {
		cfg.Grace = time.Duration(*o.Grace)
	}
	if o.FatalFalseStart != nil {
		cfg.FatalFalseStart = *o.FatalFalseStart
	}
}

type clickTrackerOverride struct {
	Duration   *Duration `yaml:"duration"`
	AreaWidth  *int      `yaml:"area_width"`
	AreaHeight *int      `yaml:"area_height"`
	TargetSize *int      `yaml:"target_size"`
	Padding    *int      `yaml:"padding"`
}

func (o clickTrackerOverride) apply(cfg *game.ClickTrackerConfig) {
	if o.Duration != nil {
		cfg.Duration = time.Duration(*o.Duration)
	}
	if o.AreaWidth != nil {
		cfg.AreaWidth = *o.AreaWidth
	}
	if o.AreaHeight != nil {
		cfg.AreaHeight = *o.AreaHeight
	}
	if o.TargetSize != nil {
		cfg.TargetSize = *o.TargetSize
	}
	if o.Padding != nil {
		cfg.Padding = *o.Padding
	}
}

type sequenceOverride struct {
	GridSize   *int      `yaml:"grid_size"`
	Highlight  *Duration `yaml:"highlight"`
	Gap        *Duration `yaml:"gap"`
	LevelPause *Duration `yaml:"level_pause"`
}

func (o sequenceOverride) apply(cfg *game.SequenceConfig) {
	if o.GridSize != nil {
		cfg.GridSize = *o.GridSize
	}
	if o.Highlight != nil {
		cfg.Highlight = time.Duration(*o.Highlight)
	}
	if o.Gap != nil {
		cfg.Gap = time.Duration(*o.Gap)
	}
	if o.LevelPause != nil {
		cfg.LevelPause = time.Duration(*o.LevelPause)
	}
}

type numberFlashOverride struct {
	Digits       *int      `yaml:"digits"`
	InitialFlash *Duration `yaml:"initial_flash"`
	CoarseStep   *Duration `yaml:"coarse_step"`
	FineStep     *Duration `yaml:"fine_step"`
	MinFlash     *Duration `yaml:"min_flash"`
	CorrectPause *Duration `yaml:"correct_pause"`
	WrongPause   *Duration `yaml:"wrong_pause"`
}

func (o numberFlashOverride) apply(cfg *game.NumberFlashConfig) {
	if o.Digits != nil {
		cfg.Digits = *o.Digits
	}
	if o.InitialFlash != nil {
		cfg.InitialFlash = time.Duration(*o.InitialFlash)
	}
	if o.CoarseStep != nil {
		cfg.CoarseStep = time.Duration(*o.CoarseStep)
	}
	if o.FineStep != nil {
		cfg.FineStep = time.Duration(*o.FineStep)
	}
	if o.MinFlash != nil {
		cfg.MinFlash = time.Duration(*o.MinFlash)
	}
	if o.CorrectPause != nil {
		cfg.CorrectPause = time.Duration(*o.CorrectPause)
	}
	if o.WrongPause != nil {
		cfg.WrongPause = time.Duration(*o.WrongPause)
	}
}

type directionOverride struct {
	Duration *Duration `yaml:"duration"`
	Penalty  *Duration `yaml:"penalty"`
}

func (o directionOverride) apply(cfg *game.DirectionConfig) {
	if o.Duration != nil {
		cfg.Duration = time.Duration(*o.Duration)
	}
	if o.Penalty != nil {
		cfg.Penalty = time.Duration(*o.Penalty)
	}
}

type tuningFile struct {
	ColorChange    reactionOverride     `yaml:"color_change"`
	AudioReact     reactionOverride     `yaml:"audio_react"`
	ClickTracker   clickTrackerOverride `yaml:"click_tracker"`
	SequenceMemory sequenceOverride     `yaml:"sequence_memory"`
	NumberFlash    numberFlashOverride  `yaml:"number_flash"`
	DirectionReact directionOverride    `yaml:"direction_react"`
}

// LoadTuning returns the game constants, with any overrides from the
// YAML file at path layered over the defaults. An empty path means
// defaults only.
func LoadTuning(path string) (game.Tuning, error) {
	t := game.DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	var f tuningFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return t, fmt.Errorf("parsing tuning file: %w", err)
	}
	f.ColorChange.apply(&t.ColorChange)
	f.AudioReact.apply(&t.AudioReact)
	f.ClickTracker.apply(&t.ClickTracker)
	f.SequenceMemory.apply(&t.SequenceMemory)
	f.NumberFlash.apply(&t.NumberFlash)
	f.DirectionReact.apply(&t.DirectionReact)
	return t, nil
}
