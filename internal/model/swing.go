package model

// SwingKind labels a confirmed local price extreme.
type SwingKind int

const (
	SwingHigh SwingKind = iota
	SwingLow
)

func (k SwingKind) String() string {
	if k == SwingHigh {
		return "HIGH"
	}
	return "LOW"
}

// SwingPoint is a confirmed extreme within one Series snapshot. It is
// derived data keyed by bar index; the source Series is never touched.
type SwingPoint struct {
	Index int
	Price float64
	Kind  SwingKind
}

// LastSwing returns the most recent swing point of the given kind, or
// false if none exists. Points are expected in index order.
func LastSwing(points []SwingPoint, kind SwingKind) (SwingPoint, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Kind == kind {
			return points[i], true
		}
	}
	return SwingPoint{}, false
}
