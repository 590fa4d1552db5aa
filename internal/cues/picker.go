package cues

import (
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultMinDelay = 2000 * time.Millisecond
	DefaultMaxDelay = 5000 * time.Millisecond
)

// Window is the half-open range [Min, Max) a cue delay is drawn from.
type Window struct {
	Min time.Duration
	Max time.Duration
}

func DefaultWindow() Window {
	return Window{Min: DefaultMinDelay, Max: DefaultMaxDelay}
}

// Delayer yields the delay before the next cue is shown.
type Delayer interface {
	Next() time.Duration
}

// Picker draws delays uniformly at millisecond granularity from a Window.
type Picker struct {
	mu     sync.Mutex
	rng    *rand.Rand
	window Window
}

func NewPicker(w Window, src rand.Source) *Picker {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Picker{rng: rand.New(src), window: w}
}

func (p *Picker) Next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	span := (p.window.Max - p.window.Min).Milliseconds()
	if span <= 0 {
		return p.window.Min
	}
	return p.window.Min + time.Duration(p.rng.Int63n(span))*time.Millisecond
}
