package players

import (
	"testing"
	"time"
)

func TestNewRoster(t *testing.T) {
	r := NewRoster()
	if r == nil {
		t.Fatal("NewRoster() returned nil")
	}
	if len(r.GetList()) != 0 {
		t.Errorf("new roster should be empty, got %d players", len(r.GetList()))
	}
}

func TestRoster_Add(t *testing.T) {
	r := NewRoster()
	p := r.Add("id1", "Ann")

	if p.ID != "id1" {
		t.Errorf("player ID = %q, want %q", p.ID, "id1")
	}
	if p.Name != "Ann" {
		t.Errorf("player Name = %q, want %q", p.Name, "Ann")
	}
	if p.Number != 1 {
		t.Errorf("player Number = %d, want 1", p.Number)
	}
	if p.Color == "" {
		t.Error("player Color should not be empty")
	}
	if p.Total != 0 || len(p.Rounds) != 0 {
		t.Error("new player should have no reaction times")
	}
}

func TestRoster_AddArrivalOrder(t *testing.T) {
	r := NewRoster()
	ann := r.Add("a", "Ann")
	bo := r.Add("b", "Bo")

	if ann.Number != 1 || bo.Number != 2 {
		t.Errorf("numbers = %d, %d; want 1, 2", ann.Number, bo.Number)
	}
	if r.At(0) != ann || r.At(1) != bo {
		t.Error("slot order should follow arrival order")
	}
}

func TestRoster_AddWhenFull(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Ann")
	r.Add("b", "Bo")

	if p := r.Add("c", "Cy"); p != nil {
		t.Errorf("Add on a full roster = %+v, want nil", p)
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
	if r.At(0).Name != "Ann" || r.At(1).Name != "Bo" {
		t.Error("slot assignment changed after a rejected add")
	}
}

func TestRoster_AddFillsFreedSlot(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Ann")
	r.Add("b", "Bo")
	r.Remove("a")

	cy := r.Add("c", "Cy")
	if cy == nil {
		t.Fatal("Add should succeed after a removal")
	}
	if cy.Number != 1 {
		t.Errorf("Number = %d, want 1 (lowest free slot)", cy.Number)
	}
}

func TestRoster_Get(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Ann")

	p := r.Get("id1")
	if p == nil {
		t.Fatal("Get returned nil for existing player")
	}
	if p.Name != "Ann" {
		t.Errorf("Name = %q, want %q", p.Name, "Ann")
	}

	if r.Get("nonexistent") != nil {
		t.Error("Get should return nil for nonexistent player")
	}
}

func TestRoster_IndexOf(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Ann")
	r.Add("b", "Bo")

	if r.IndexOf("b") != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", r.IndexOf("b"))
	}
	if r.IndexOf("zz") != -1 {
		t.Errorf("IndexOf(zz) = %d, want -1", r.IndexOf("zz"))
	}
	if r.At(2) != nil || r.At(-1) != nil {
		t.Error("At should return nil out of range")
	}
}

func TestRoster_Remove(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Ann")
	r.Add("id2", "Bo")

	if !r.Remove("id1") {
		t.Error("Remove should return true for existing player")
	}
	if r.Get("id1") != nil {
		t.Error("player should be nil after removal")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1 after removal", r.Count())
	}
	if r.Remove("nonexistent") {
		t.Error("Remove should return false for nonexistent player")
	}
}

func TestRoster_ResetAll(t *testing.T) {
	r := NewRoster()
	ann := r.Add("a", "Ann")
	bo := r.Add("b", "Bo")
	ann.Record(250 * time.Millisecond)
	bo.Record(300 * time.Millisecond)

	r.ResetAll()

	if ann.Total != 0 || bo.Total != 0 {
		t.Error("totals should be reset to 0")
	}
	if len(ann.Rounds) != 0 || len(bo.Rounds) != 0 {
		t.Error("round times should be cleared")
	}
	if r.Count() != 2 {
		t.Error("players should still be seated after ResetAll")
	}
}

func TestRoster_Clear(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Ann")
	r.Add("b", "Bo")

	r.Clear()

	if r.Count() != 0 {
		t.Errorf("Count = %d, want 0 after Clear", r.Count())
	}
	if p := r.Add("c", "Cy"); p.Number != 1 {
		t.Errorf("Number after Clear = %d, want 1", p.Number)
	}
}

func TestPlayer_RecordAndAverage(t *testing.T) {
	p := &Player{}
	if p.AverageMs() != 0 {
		t.Errorf("AverageMs with no rounds = %v, want 0", p.AverageMs())
	}

	p.Record(250 * time.Millisecond)
	p.Record(271 * time.Millisecond)

	if p.Total != 521*time.Millisecond {
		t.Errorf("Total = %s, want 521ms", p.Total)
	}
	if p.AverageMs() != 260.5 {
		t.Errorf("AverageMs = %v, want 260.5", p.AverageMs())
	}
	got := p.RoundsMs()
	if len(got) != 2 || got[0] != 250 || got[1] != 271 {
		t.Errorf("RoundsMs = %v, want [250 271]", got)
	}
}

func TestRoster_Compact(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Ann")
	r.Add("b", "Bo")
	r.Remove("a")
	r.Compact()

	if r.At(0) == nil || r.At(0).ID != "b" || r.At(0).Number != 1 {
		t.Fatalf("slot 0 = %+v, want Bo as number 1", r.At(0))
	}
	if r.At(1) != nil {
		t.Errorf("slot 1 = %+v, want empty", r.At(1))
	}

	cy := r.Add("c", "Cy")
	if cy.Number != 2 || r.IndexOf("c") != 1 {
		t.Errorf("Cy number=%d index=%d, want 2/1", cy.Number, r.IndexOf("c"))
	}
}
