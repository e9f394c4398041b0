// Package dimensions computes the target sizes for each stage of the
// pipeline from a source image's dimensions and the caller's request.
package dimensions

import (
	"math"

	"pixgate/params"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// Source is the minimal shape dimensions needs from a loaded image
// handle: its natural pixel dimensions.
type Source struct {
	Width, Height int
}

// Requested computes the width/height the caller asked for, filling in
// whichever dimension was omitted from the source's aspect ratio. If
// neither was given, the source's own width is used as the anchor.
func Requested(src Source, width, height *uint16) Size {
	w, h := width, height

	if w == nil && h == nil {
		v := uint16(src.Width)
		w = &v
	}

	ratio := float64(src.Width) / float64(src.Height)

	var resultW, resultH int
	if w != nil {
		resultW = int(*w)
	} else {
		resultW = int(math.Round(float64(*h) * ratio))
	}
	if h != nil {
		resultH = int(*h)
	} else {
		resultH = int(math.Round(float64(resultW) / ratio))
	}

	return Size{Width: resultW, Height: resultH}
}

// Output computes the final output dimensions, swapping width/height
// when the request rotates the image 90 or 270 degrees.
func Output(src Source, width, height *uint16, rotate params.Rotate) Size {
	w, h := width, height
	if rotate.Swaps() {
		w, h = h, w
	}
	return Requested(src, w, h)
}

// Rasterize computes the minimum dimensions a vector source (or a
// document page) must be rendered at before the rest of the pipeline
// runs, accounting for a pending rotation. For a quarter-turn rotation
// the longer requested side is set to the shorter side plus two pixels,
// and the other side is scaled from the source by the requested ratio.
func Rasterize(src Source, width, height *uint16, rotate params.Rotate) Size {
	result := Requested(src, width, height)

	if rotate == params.RotateNo || rotate == params.RotateUpsideDown {
		return result
	}

	ratio := float64(result.Width) / float64(src.Height)

	if result.Width > result.Height {
		newWidth := result.Height + 2
		newHeight := int(math.Round(float64(src.Height) * ratio))
		return Size{Width: newWidth, Height: newHeight}
	}

	newHeight := result.Width + 2
	newWidth := int(math.Round(float64(src.Width) * ratio))
	return Size{Width: newWidth, Height: newHeight}
}
