package params

import "strconv"

// AspectRatioKind distinguishes the fixed aspect-ratio shorthands from a
// caller-supplied custom ratio.
type AspectRatioKind int

const (
	AspectRatioVideo AspectRatioKind = iota
	AspectRatioSquare
	AspectRatioCustom
	AspectRatioFree
)

// CropAspectRatio is "video" (16:9), "square" (1:1), "free" (width/height
// independent), or an explicit "N:M" integer ratio.
type CropAspectRatio struct {
	Kind         AspectRatioKind
	CustomW      uint8
	CustomH      uint8
}

// Crop describes a requested crop: its target aspect ratio, an optional
// width/height pin, a gravity anchor, and a pixel offset from that
// anchor.
type Crop struct {
	AspectRatio CropAspectRatio
	Width       *uint16
	Height      *uint16
	Gravity     Origin
	OffsetX     int16
	OffsetY     int16
}

// ParseCrop implements the `crop=aspect_ratio,width?,height?,origin?,
// offset_x?,offset_y?` grammar. Parsing fails atomically: any malformed
// token drops the whole crop rather than applying it partially.
func ParseCrop(value string) (Crop, bool) {
	if value == "" {
		return Crop{}, false
	}

	parts := splitN(value, ',')

	aspectRatio, ok := parseCropAspectRatio(parts[0])
	if !ok {
		return Crop{}, false
	}

	var width *uint16
	if len(parts) > 1 {
		w, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return Crop{}, false
		}
		if w != 0 {
			v := uint16(w)
			width = &v
		}
	}

	var rawHeight uint64
	if len(parts) > 2 {
		var err error
		if rawHeight, err = strconv.ParseUint(parts[2], 10, 16); err != nil {
			return Crop{}, false
		}
	}

	var height *uint16
	switch {
	case aspectRatio.Kind == AspectRatioFree:
		if rawHeight == 0 || width == nil {
			return Crop{}, false
		}
		h := uint16(rawHeight)
		height = &h
	case width != nil && rawHeight == 0:
		height = nil
	case rawHeight != 0:
		h := uint16(rawHeight)
		height = &h
	default:
		height = nil
	}

	gravity := OriginCenter
	if len(parts) > 3 {
		gravity = ParseOrigin(parts[3])
	}

	var offsetX, offsetY int64
	var err error
	if len(parts) > 4 {
		if offsetX, err = strconv.ParseInt(parts[4], 10, 16); err != nil {
			return Crop{}, false
		}
	}
	if len(parts) > 5 {
		if offsetY, err = strconv.ParseInt(parts[5], 10, 16); err != nil {
			return Crop{}, false
		}
	}

	return Crop{
		AspectRatio: aspectRatio,
		Width:       width,
		Height:      height,
		Gravity:     gravity,
		OffsetX:     int16(offsetX),
		OffsetY:     int16(offsetY),
	}, true
}

func parseCropAspectRatio(token string) (CropAspectRatio, bool) {
	switch token {
	case "video":
		return CropAspectRatio{Kind: AspectRatioVideo}, true
	case "square":
		return CropAspectRatio{Kind: AspectRatioSquare}, true
	case "free":
		return CropAspectRatio{Kind: AspectRatioFree}, true
	}

	colon := -1
	for i, c := range token {
		if c == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return CropAspectRatio{}, false
	}

	w, err := strconv.ParseUint(token[:colon], 10, 8)
	if err != nil {
		return CropAspectRatio{}, false
	}
	h, err := strconv.ParseUint(token[colon+1:], 10, 8)
	if err != nil {
		return CropAspectRatio{}, false
	}

	return CropAspectRatio{Kind: AspectRatioCustom, CustomW: uint8(w), CustomH: uint8(h)}, true
}

func splitN(value string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(value); i++ {
		if value[i] == sep {
			parts = append(parts, value[start:i])
			start = i + 1
		}
	}
	return append(parts, value[start:])
}
