package params

import "strconv"

// AspectAuto pins no ratio — the derivative keeps whatever ratio its
// width/height parameters imply.
const AspectAuto = 0.0

const (
	videoAspectRatio  = 16.0 / 9.0
	squareAspectRatio = 1.0
)

// ParseAspect reads the independent `aspect=W/H` query parameter (also
// accepting the "video" and "square" shorthands). It is distinct from
// Crop's own aspect-ratio token. The parsed ratio is stored on
// DerivativeRequest.Aspect and takes part in the cache fingerprint; no
// pipeline stage applies it to the output. Returns AspectAuto on
// anything unparsable.
func ParseAspect(value string) float64 {
	switch value {
	case "", "auto":
		return AspectAuto
	case "video":
		return videoAspectRatio
	case "square":
		return squareAspectRatio
	}

	slash := -1
	for i, c := range value {
		if c == '/' {
			slash = i
			break
		}
	}
	if slash < 0 {
		return AspectAuto
	}

	w, err := strconv.ParseFloat(value[:slash], 64)
	if err != nil || w <= 0 {
		return AspectAuto
	}
	h, err := strconv.ParseFloat(value[slash+1:], 64)
	if err != nil || h <= 0 {
		return AspectAuto
	}

	return w / h
}
