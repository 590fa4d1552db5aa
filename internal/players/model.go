package players

import "time"

// Player is one occupant of a duel slot. Rounds holds one reaction time per
// completed round, in round order.
type Player struct {
	ID     string
	Name   string
	Number int // 1 or 2
	Color  string
	Total  time.Duration
	Rounds []time.Duration
}

// Record appends a reaction time for a completed turn.
func (p *Player) Record(d time.Duration) {
	p.Rounds = append(p.Rounds, d)
	p.Total += d
}

// AverageMs is the unrounded mean reaction time in milliseconds, or 0 before any round.
func (p *Player) AverageMs() float64 {
	if len(p.Rounds) == 0 {
		return 0
	}
	return float64(p.Total) / float64(time.Millisecond) / float64(len(p.Rounds))
}

// RoundsMs returns the per-round reaction times in whole milliseconds.
func (p *Player) RoundsMs() []int64 {
	out := make([]int64, len(p.Rounds))
	for i, d := range p.Rounds {
		out[i] = d.Milliseconds()
	}
	return out
}

func (p *Player) resetTimes() {
	p.Total = 0
	p.Rounds = nil
}
