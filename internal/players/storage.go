package players

import "reactionduel/internal/utility"

// Slots is the fixed number of seats in a duel.
const Slots = 2

// Roster holds the players of one session in slot order. Slot order is also
// the turn order of round 1. A Roster is owned by a single session and is not
// safe for concurrent use.
type Roster struct {
	slots [Slots]*Player
}

func NewRoster() *Roster {
	return &Roster{}
}

// Add seats a player in the lowest free slot. It returns nil when both slots are taken.
func (r *Roster) Add(id string, name string) *Player {
	var taken []string
	for _, p := range r.slots {
		if p != nil {
			taken = append(taken, p.Color)
		}
	}
	for i := range r.slots {
		if r.slots[i] == nil {
			p := &Player{ID: id, Name: name, Number: i + 1, Color: utility.DistinctColorHex(taken...)}
			r.slots[i] = p
			return p
		}
	}
	return nil
}

func (r *Roster) Get(id string) *Player {
	for _, p := range r.slots {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// At returns the player in the zero-based slot index, or nil.
func (r *Roster) At(index int) *Player {
	if index < 0 || index >= Slots {
		return nil
	}
	return r.slots[index]
}

// IndexOf returns the zero-based slot index of id, or -1.
func (r *Roster) IndexOf(id string) int {
	for i, p := range r.slots {
		if p != nil && p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Roster) GetList() []*Player {
	list := make([]*Player, 0, Slots)
	for _, p := range r.slots {
		if p != nil {
			list = append(list, p)
		}
	}
	return list
}

func (r *Roster) Remove(id string) bool {
	for i, p := range r.slots {
		if p != nil && p.ID == id {
			r.slots[i] = nil
			return true
		}
	}
	return false
}

// Compact shifts the remaining players into the lowest slots and renumbers
// them, so the earliest arrival keeps slot 1.
func (r *Roster) Compact() {
	list := r.GetList()
	r.slots = [Slots]*Player{}
	for i, p := range list {
		p.Number = i + 1
		r.slots[i] = p
	}
}

func (r *Roster) Count() int {
	n := 0
	for _, p := range r.slots {
		if p != nil {
			n++
		}
	}
	return n
}

func (r *Roster) Full() bool {
	return r.Count() == Slots
}

// ResetAll clears every seated player's reaction times but keeps the seats.
func (r *Roster) ResetAll() {
	for _, p := range r.slots {
		if p != nil {
			p.resetTimes()
		}
	}
}

func (r *Roster) Clear() {
	r.slots = [Slots]*Player{}
}
