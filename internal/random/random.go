package random

import (
	"fmt"
	"math/rand"
	"time"
)

// Source wraps a uniform generator behind the handful of draws the games
// need: stimulus delays, target placement, digit strings. Seedable so
// tests can fix sequences.
type Source struct {
	rng *rand.Rand
}

func New() *Source {
	return NewSeeded(time.Now().UnixNano())
}

func NewSeeded(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// IntBetween returns a uniform integer in [min, max], both ends inclusive.
func (s *Source) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return s.rng.Intn(max-min+1) + min
}

// Duration returns a uniform duration in [min, max], millisecond granularity.
func (s *Source) Duration(min, max time.Duration) time.Duration {
	ms := s.IntBetween(int(min.Milliseconds()), int(max.Milliseconds()))
	return time.Duration(ms) * time.Millisecond
}

// Digits returns a string of n uniform decimal digits.
func (s *Source) Digits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte('0' + s.rng.Intn(10))
	}
	return string(buf)
}

// Position is a target placement inside a game area.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PositionIn places an element of the given size inside a width×height
// area, keeping at least padding pixels from every edge.
func (s *Source) PositionIn(width, height, size, padding int) Position {
	maxX := width - size - padding
	maxY := height - size - padding
	if maxX < padding {
		maxX = padding
	}
	if maxY < padding {
		maxY = padding
	}
	return Position{
		X: s.IntBetween(padding, maxX),
		Y: s.IntBetween(padding, maxY),
	}
}

// ColorHex returns a random #rrggbb color, avoiding near-black and
// near-white extremes so targets stay visible on any background.
func (s *Source) ColorHex() string {
	r := s.rng.Intn(248) + 4
	g := s.rng.Intn(248) + 4
	b := s.rng.Intn(248) + 4
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
