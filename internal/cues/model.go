package cues

import "time"

// Cue is the visual trigger for one attempt. ShownAt is only meaningful once Visible is set.
type Cue struct {
	Delay   time.Duration
	ShownAt time.Time
	Visible bool
}

// Show marks the cue visible at the given instant.
func (c *Cue) Show(at time.Time) {
	c.ShownAt = at
	c.Visible = true
}

// ReactionTime is the delta from the cue becoming visible to at. It is zero
// for a cue that was never shown.
func (c *Cue) ReactionTime(at time.Time) time.Duration {
	if !c.Visible {
		return 0
	}
	d := at.Sub(c.ShownAt)
	if d < 0 {
		return 0
	}
	return d
}
