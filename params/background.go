package params

import (
	"strconv"
	"strings"
)

// Background is an RGBA fill color composited under a source whose format
// supports transparency, when the output format is not JPEG.
type Background struct {
	R, G, B, A uint8
}

func (bg Background) IsTransparent() bool { return bg.A == 0 }

// RGBA returns the color as a four-element float64 array, the shape the
// imaging backend's background-fill operation expects.
func (bg Background) RGBA() [4]float64 {
	return [4]float64{float64(bg.R), float64(bg.G), float64(bg.B), float64(bg.A)}
}

var namedBackgrounds = map[string]Background{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
}

// ParseBackground accepts a named color, a "#rrggbb"/"#rrggbbaa" hex
// token (the leading "#" is optional), or a "r,g,b[,a]" comma form.
// Returns false if the value does not parse, in which case the caller
// drops the background entirely rather than guessing.
func ParseBackground(value string) (Background, bool) {
	if bg, ok := namedBackgrounds[value]; ok {
		return bg, true
	}

	if strings.Contains(value, ",") {
		return parseBackgroundCSV(value)
	}

	return parseBackgroundHex(value)
}

func parseBackgroundHex(value string) (Background, bool) {
	value = strings.TrimPrefix(value, "#")
	if len(value) != 6 && len(value) != 8 {
		return Background{}, false
	}

	r, err := strconv.ParseUint(value[0:2], 16, 8)
	if err != nil {
		return Background{}, false
	}
	g, err := strconv.ParseUint(value[2:4], 16, 8)
	if err != nil {
		return Background{}, false
	}
	b, err := strconv.ParseUint(value[4:6], 16, 8)
	if err != nil {
		return Background{}, false
	}

	a := uint64(255)
	if len(value) == 8 {
		a, err = strconv.ParseUint(value[6:8], 16, 8)
		if err != nil {
			return Background{}, false
		}
	}

	return Background{uint8(r), uint8(g), uint8(b), uint8(a)}, true
}

func parseBackgroundCSV(value string) (Background, bool) {
	parts := strings.Split(value, ",")
	if len(parts) < 3 || len(parts) > 4 {
		return Background{}, false
	}

	r, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Background{}, false
	}
	g, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Background{}, false
	}
	b, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return Background{}, false
	}

	a := uint64(255)
	if len(parts) == 4 {
		a, err = strconv.ParseUint(parts[3], 10, 8)
		if err != nil {
			return Background{}, false
		}
	}

	return Background{uint8(r), uint8(g), uint8(b), uint8(a)}, true
}
