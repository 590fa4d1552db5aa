package utility

import (
	"fmt"
	"math/rand"
)

// minColorDistance is the squared RGB distance two players' colors must keep.
const minColorDistance = 120 * 120

const colorAttempts = 32

// DistinctColorHex returns a random #rrggbb color, its channels clear of pure
// black and white, far enough from every color in taken to tell the two sides
// of a duel apart. Unparseable entries are ignored.
func DistinctColorHex(taken ...string) string {
	var others [][3]int
	for _, t := range taken {
		if c, ok := parseHex(t); ok {
			others = append(others, c)
		}
	}

	c := randomRGB()
	for range colorAttempts {
		if farFromAll(c, others) {
			break
		}
		c = randomRGB()
	}
	return hex(c)
}

func randomRGB() [3]int {
	return [3]int{rand.Intn(248) + 4, rand.Intn(248) + 4, rand.Intn(248) + 4}
}

func farFromAll(c [3]int, others [][3]int) bool {
	for _, o := range others {
		d := 0
		for i := range c {
			d += (c[i] - o[i]) * (c[i] - o[i])
		}
		if d < minColorDistance {
			return false
		}
	}
	return true
}

func hex(c [3]int) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func parseHex(s string) ([3]int, bool) {
	var c [3]int
	if len(s) != 7 {
		return c, false
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c[0], &c[1], &c[2]); err != nil {
		return c, false
	}
	return c, true
}
