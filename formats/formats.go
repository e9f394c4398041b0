// Package formats implements input-extension whitelisting and output
// format negotiation/validation, including the encoder-ceiling fallback
// chains.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	pixerr "pixgate/errors"
	"pixgate/params"
)

// OutputFormat is the encoder selected for a derivative.
type OutputFormat int

const (
	OutputJpg OutputFormat = iota
	OutputPng
	OutputWebp
	OutputAvif
	OutputPdf
)

func (f OutputFormat) String() string {
	switch f {
	case OutputPng:
		return "png"
	case OutputWebp:
		return "webp"
	case OutputAvif:
		return "avif"
	case OutputPdf:
		return "pdf"
	default:
		return "jpg"
	}
}

var supportedInputExtensions = map[string]bool{
	// raster
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
	"bmp": true, "tif": true, "tiff": true, "ico": true, "svg": true,
	// modern raster
	"heic": true, "heif": true, "jp2": true, "jpm": true, "jpx": true,
	"jpf": true, "avif": true, "avifs": true,
	// documents
	"doc": true, "docx": true, "odt": true, "xls": true, "xlsx": true,
	"ods": true, "ppt": true, "pptx": true, "odp": true, "rtf": true,
	"pdf": true,
}

var documentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "odt": true, "xls": true,
	"xlsx": true, "ods": true, "ppt": true, "pptx": true, "odp": true, "rtf": true,
}

var generatedExtensions = map[string]bool{
	"doc": true, "docx": true, "odt": true, "xls": true, "xlsx": true,
	"ods": true, "ppt": true, "pptx": true, "odp": true, "rtf": true,
}

var videoExtensions = map[string]bool{
	"mp4": true, "mkv": true, "webm": true, "avi": true, "mov": true,
	"flv": true, "wmv": true, "mpg": true, "mpeg": true, "3gp": true,
	"ogv": true, "m4v": true,
}

// Extension returns the lowercased extension of path without its dot.
func Extension(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsVideo reports whether path's extension is one the mpv frame
// extractor knows how to handle.
func IsVideo(path string) bool {
	return videoExtensions[Extension(path)]
}

// SupportedInput reports whether the gateway knows how to open path at
// all (raster, modern raster, or a document the converter bridge can
// rasterize). It does not include video — video frame extraction is an
// opt-in capability; use Policy.SupportedInput when it's enabled.
func SupportedInput(path string) bool {
	return supportedInputExtensions[Extension(path)]
}

// IsThumbnailSource reports whether path needs page-based rasterization
// (documents and PDFs) rather than direct image loading.
func IsThumbnailSource(path string) bool {
	return documentExtensions[Extension(path)]
}

// IsSVG reports whether path is an SVG vector source.
func IsSVG(path string) bool {
	return Extension(path) == "svg"
}

// IsGenerated reports whether path needs the external office-document
// converter to produce a PDF before rasterization.
func IsGenerated(path string) bool {
	return generatedExtensions[Extension(path)]
}

// SupportsTransparency reports whether path's *source* format can carry
// an alpha channel (used to decide whether the background-fill stage
// runs at all).
func SupportsTransparency(path string) bool {
	ext := Extension(path)
	return ext != "jpg" && ext != "jpeg"
}

// Policy bundles the deployment-configurable knobs that affect which
// inputs are accepted and how output format is negotiated.
type Policy struct {
	AvifEnable  bool
	VideoEnable bool
}

// SupportedInput reports whether path is acceptable input under this
// policy, including video when VideoEnable is set.
func (p Policy) SupportedInput(path string) bool {
	if SupportedInput(path) {
		return true
	}
	return p.VideoEnable && IsVideo(path)
}

// Negotiator resolves the output format, given the caller's explicit
// format request and AVIF_ENABLE / accept-header negotiation policy.
type Negotiator struct {
	AvifEnable bool
}

// Determine picks the output format. An explicit, non-Auto request wins
// outright. An empty Accept header yields WebP; otherwise AVIF is
// offered only when AvifEnable is set and the client accepts it, then
// WebP, falling back to JPEG.
func (n Negotiator) Determine(req params.DerivativeRequest, accept string) OutputFormat {
	if req.Format != params.FormatAuto {
		switch req.Format {
		case params.FormatJpg:
			return OutputJpg
		case params.FormatPng:
			return OutputPng
		case params.FormatWebp:
			return OutputWebp
		case params.FormatAvif:
			return OutputAvif
		case params.FormatPdf:
			return OutputPdf
		default:
			return OutputWebp
		}
	}

	if accept == "" {
		return OutputWebp
	}

	if n.AvifEnable && strings.Contains(accept, "image/avif") {
		return OutputAvif
	}
	if strings.Contains(accept, "image/webp") {
		return OutputWebp
	}

	return OutputJpg
}

const (
	webpMaxWidth      = 16383
	webpMaxHeight     = 16383
	webpMaxResolution = 170.0 * 1_000_000

	avifMaxWidth  = 16384
	avifMaxHeight = 16384

	pngMaxWidth  = 16384
	pngMaxHeight = 16384
)

// ImageInfo is the minimal shape Validate needs from the image about to
// be encoded.
type ImageInfo struct {
	Width, Height int
	HasAlpha      bool
}

// Validate checks the negotiated format against the encoder's dimension
// ceiling. When the request format was explicit (not Auto), exceeding
// the ceiling is a hard PipelineError — the caller asked for a specific
// format and the gateway will not silently substitute one. When the
// format was auto-negotiated, it falls back per format: WebP falls back
// to PNG (if the source has alpha) or JPEG, AVIF and PNG both fall back
// to JPEG.
func Validate(image ImageInfo, explicit bool, format OutputFormat) (OutputFormat, error) {
	switch format {
	case OutputWebp:
		downsize := image.Width > webpMaxWidth || image.Height > webpMaxHeight ||
			float64(image.Width*image.Height) > webpMaxResolution
		if !downsize {
			return format, nil
		}
		if explicit {
			return format, pixerr.NewPipelineError("finalize", "", fmt.Errorf("too large for webp (max %dx%d or %.0fMPix)", webpMaxWidth, webpMaxHeight, webpMaxResolution/1_000_000))
		}
		if image.HasAlpha && image.Width <= pngMaxWidth && image.Height <= pngMaxHeight {
			return OutputPng, nil
		}
		return OutputJpg, nil

	case OutputAvif:
		downsize := image.Width > avifMaxWidth || image.Height > avifMaxHeight
		if !downsize {
			return format, nil
		}
		if explicit {
			return format, pixerr.NewPipelineError("finalize", "", fmt.Errorf("too large for avif (max %dx%d)", avifMaxWidth, avifMaxHeight))
		}
		return OutputJpg, nil

	case OutputPng:
		downsize := image.Width > pngMaxWidth || image.Height > pngMaxHeight
		if !downsize {
			return format, nil
		}
		if explicit {
			return format, pixerr.NewPipelineError("finalize", "", fmt.Errorf("too large for png (max %dx%d)", pngMaxWidth, pngMaxHeight))
		}
		return OutputJpg, nil

	default:
		return format, nil
	}
}
