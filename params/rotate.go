package params

// Rotate is the clockwise rotation applied to a derivative, expressed as
// its final clockwise degree value.
type Rotate int

const (
	RotateNo         Rotate = 0
	RotateLeft       Rotate = 90
	RotateUpsideDown Rotate = 180
	RotateRight      Rotate = 270
)

// ParseRotate keeps the upstream converter's rotate vocabulary verbatim,
// including its left/right naming: a request for "left" or "90" produces
// a 270-degree clockwise rotation (Right), and "right"/"270" produces a
// 90-degree clockwise rotation (Left). This looks inverted at first read
// but is intentional — see DESIGN.md's Open Questions entry.
func ParseRotate(value string) Rotate {
	switch value {
	case "90", "left", "anticlockwise":
		return RotateRight
	case "180", "bottom-up", "upside-down":
		return RotateUpsideDown
	case "270", "right", "clockwise":
		return RotateLeft
	default:
		return RotateNo
	}
}

// Swaps reports whether this rotation exchanges width and height.
func (r Rotate) Swaps() bool {
	return r == RotateLeft || r == RotateRight
}
