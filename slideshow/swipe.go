package slideshow

import "math"

// SwipeThreshold is the horizontal distance in pixels a drag must exceed.
const SwipeThreshold = 60

type Direction int

const (
	None Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "next"
	case Backward:
		return "prev"
	default:
		return "none"
	}
}

// ClassifySwipe maps a drag from pointer-down to pointer-up onto a slide direction. A
// leftward drag moves forward. Short or mostly vertical drags are ignored.
func ClassifySwipe(dx, dy float64) Direction {
	if math.Abs(dx) <= SwipeThreshold || math.Abs(dx) <= math.Abs(dy) {
		return None
	}
	if dx < 0 {
		return Forward
	}
	return Backward
}

// ClassifyKey maps the arrow keys onto a slide direction.
func ClassifyKey(key string) Direction {
	switch key {
	case "ArrowRight":
		return Forward
	case "ArrowLeft":
		return Backward
	default:
		return None
	}
}
