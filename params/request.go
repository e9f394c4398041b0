// Package params parses and models the query-string parameters attached
// to a derivative request: dimensions, crop, rotation, background,
// format, thumbnail page, and the HMAC token.
package params

import (
	"net/url"
	"strconv"
)

// DerivativeRequest is the fully parsed, validated shape of one
// derivative request: the source path plus every transform knob a
// caller can set.
type DerivativeRequest struct {
	Path    string
	Width   *uint16
	Height  *uint16
	Quality Quality
	Crop    *Crop
	Aspect  float64
	Thumbnail Thumbnail
	Original  bool
	Rotate    Rotate
	Background *Background
	Format     Format
	Token      string
}

// Raw holds the unvalidated query-string values exactly as received,
// mirroring the wire shape before any dpr scaling or enum parsing.
type Raw struct {
	W, H       string
	Q          string
	DPR        string
	Crop       string
	Thumb      string
	Original   string
	Rot        string
	Bg         string
	F          string
	Aspect     string
	Token      string
}

// ParseRaw extracts the recognized query keys from a url.Values,
// leaving every other caller-supplied key (used only by token
// verification, which needs the full set) untouched.
func ParseRaw(query url.Values) Raw {
	return Raw{
		W:        query.Get("w"),
		H:        query.Get("h"),
		Q:        query.Get("q"),
		DPR:      query.Get("dpr"),
		Crop:     query.Get("crop"),
		Thumb:    query.Get("thumb"),
		Original: query.Get("original"),
		Rot:      query.Get("rot"),
		Bg:       query.Get("bg"),
		F:        query.Get("f"),
		Aspect:   query.Get("aspect"),
		Token:    query.Get("token"),
	}
}

// New builds a DerivativeRequest from a path and its raw query values,
// applying the device-pixel-ratio scale to width/height before any other
// parameter resolution, matching the upstream parameter model.
func New(path string, raw Raw) DerivativeRequest {
	dpr := float32(1.0)
	if raw.DPR != "" {
		if parsed, err := strconv.ParseFloat(raw.DPR, 32); err == nil && parsed > 0 {
			dpr = float32(parsed)
		}
	}

	width := scaleDimension(raw.W, dpr)
	height := scaleDimension(raw.H, dpr)

	quality := DefaultQuality()
	if raw.Q != "" {
		if q, err := strconv.ParseUint(raw.Q, 10, 8); err == nil {
			quality = CustomQuality(uint8(q))
		}
	}

	var crop *Crop
	if c, ok := ParseCrop(raw.Crop); ok {
		crop = &c
	}

	var background *Background
	if bg, ok := ParseBackground(raw.Bg); ok {
		background = &bg
	}

	original := raw.Original == "true" || raw.Original == "1"

	return DerivativeRequest{
		Path:       path,
		Width:      width,
		Height:     height,
		Quality:    quality,
		Crop:       crop,
		Aspect:     ParseAspect(raw.Aspect),
		Thumbnail:  ParseThumbnail(raw.Thumb),
		Original:   original,
		Rotate:     ParseRotate(raw.Rot),
		Background: background,
		Format:     ParseFormat(raw.F),
		Token:      raw.Token,
	}
}

func scaleDimension(value string, dpr float32) *uint16 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return nil
	}
	scaled := uint16(roundFloat32(float32(parsed) * dpr))
	return &scaled
}

func roundFloat32(v float32) float32 {
	if v < 0 {
		return float32(int(v - 0.5))
	}
	return float32(int(v + 0.5))
}
