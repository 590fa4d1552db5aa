package utility

import (
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestDistinctColorHex_Channels(t *testing.T) {
	for i := 0; i < 100; i++ {
		color := DistinctColorHex()
		if !hexPattern.MatchString(color) {
			t.Errorf("DistinctColorHex() = %q, want matching #rrggbb pattern", color)
		}
		c, ok := parseHex(color)
		if !ok {
			t.Fatalf("parseHex(%q) failed", color)
		}
		for _, ch := range c {
			if ch < 4 || ch > 251 {
				t.Errorf("%q has channel %d outside [4, 251]", color, ch)
			}
		}
	}
}

func TestDistinctColorHex(t *testing.T) {
	for i := 0; i < 100; i++ {
		first := DistinctColorHex()
		second := DistinctColorHex(first)
		if !hexPattern.MatchString(second) {
			t.Fatalf("DistinctColorHex() = %q, want matching #rrggbb pattern", second)
		}
		a, _ := parseHex(first)
		b, _ := parseHex(second)
		if !farFromAll(b, [][3]int{a}) {
			t.Errorf("%s and %s are too close", first, second)
		}
	}
}

func TestDistinctColorHex_IgnoresGarbage(t *testing.T) {
	if c := DistinctColorHex("", "red", "#zzzzzz"); !hexPattern.MatchString(c) {
		t.Errorf("DistinctColorHex() = %q", c)
	}
}

func TestParseHex(t *testing.T) {
	c, ok := parseHex("#0a10ff")
	if !ok || c != [3]int{10, 16, 255} {
		t.Errorf("parseHex = %v, %v", c, ok)
	}
}
