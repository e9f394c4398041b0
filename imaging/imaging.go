// Package imaging wraps libvips (via bimg) with the operations the
// pipeline composes: loading, thumbnailing, autorotation, resizing,
// rotation, background compositing, ICC transforms, and encoding with
// the per-format dynamic quality curve.
package imaging

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/h2non/bimg"

	"pixgate/formats"
	"pixgate/params"
)

// Info describes a loaded source image's natural properties.
type Info struct {
	Width, Height int
	Pages         int
	HasAlpha      bool
	Colourspace   string
}

// NeedsICCTransform reports whether the source's declared colourspace
// is anything other than sRGB, in which case the pipeline runs an ICC
// transform before encoding.
func (i Info) NeedsICCTransform() bool {
	if i.Colourspace == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(i.Colourspace), "srgb")
}

// SetConcurrency configures libvips' internal thread pool. Picturium
// reads this from VIPS_CONCURRENCY at startup and forwards it straight
// to the vips scheduler; bimg does not expose vips_concurrency_set
// directly, so the gateway does the same thing libvips itself does when
// the C library starts up: read the env var before Initialize runs.
func SetConcurrency(n int) {
	if n > 0 {
		os.Setenv("VIPS_CONCURRENCY", fmt.Sprintf("%d", n))
	}
}

// Initialize starts up libvips. Call once at process startup.
func Initialize() {
	bimg.Initialize()
}

// Shutdown tears down libvips. Call once at process exit.
func Shutdown() {
	bimg.Shutdown()
}

// ThreadShutdown releases the libvips thread-local caches accumulated by
// the current goroutine. The pipeline calls this after every request so
// long-lived worker goroutines don't pin memory between requests.
func ThreadShutdown() {
	bimg.VipsCacheDropAll()
}

// Inspect reads a loaded source's dimensions, page count, and alpha
// channel without doing any processing.
func Inspect(data []byte) (Info, error) {
	meta, err := bimg.NewImage(data).Metadata()
	if err != nil {
		return Info{}, fmt.Errorf("inspect: %w", err)
	}
	return Info{
		Width:       meta.Size.Width,
		Height:      meta.Size.Height,
		Pages:       meta.Pages,
		HasAlpha:    meta.Alpha,
		Colourspace: string(meta.Space),
	}, nil
}

// Rasterize renders a specific page of a document/vector source (PDF,
// SVG, or an already-converted office document) at the given pixel
// dimensions. The dpi argument appears only in the error message; it is
// not passed to the renderer and does not change the output.
func Rasterize(data []byte, page int, width, height int, dpi int) ([]byte, error) {
	opts := bimg.Options{
		Page:   page,
		Width:  width,
		Height: height,
		Force:  true,
	}
	out, err := bimg.NewImage(data).Process(opts)
	if err != nil {
		return nil, fmt.Errorf("rasterize page %d at %d dpi: %w", page, dpi, err)
	}
	return out, nil
}

// Autorotate applies the EXIF orientation tag physically to the pixel
// data and strips the tag, so every later stage can ignore orientation
// entirely.
func Autorotate(data []byte) ([]byte, error) {
	out, err := bimg.NewImage(data).AutoRotate()
	if err != nil {
		return nil, fmt.Errorf("autorotate: %w", err)
	}
	return out, nil
}

// Resize scales the image to exactly width x height, without preserving
// aspect ratio — the caller (dimensions package) has already computed an
// aspect-correct target.
func Resize(data []byte, width, height int) ([]byte, error) {
	out, err := bimg.NewImage(data).Process(bimg.Options{
		Width:  width,
		Height: height,
		Force:  true,
		Embed:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	return out, nil
}

// Crop extracts a width x height region anchored at gravity, offset by
// (offsetX, offsetY) pixels.
func Crop(data []byte, width, height int, gravity params.Origin, offsetX, offsetY int) ([]byte, error) {
	out, err := bimg.NewImage(data).Process(bimg.Options{
		Width:   width,
		Height:  height,
		Crop:    true,
		Gravity: originToGravity(gravity),
		Top:     offsetY,
		Left:    offsetX,
	})
	if err != nil {
		return nil, fmt.Errorf("crop to %dx%d: %w", width, height, err)
	}
	return out, nil
}

func originToGravity(o params.Origin) bimg.Gravity {
	switch o {
	case params.OriginTopLeft, params.OriginTopCenter, params.OriginTopRight:
		return bimg.GravityNorth
	case params.OriginBottomLeft, params.OriginBottomCenter, params.OriginBottomRight:
		return bimg.GravitySouth
	case params.OriginLeftCenter:
		return bimg.GravityWest
	case params.OriginRightCenter:
		return bimg.GravityEast
	default:
		return bimg.GravityCentre
	}
}

// Rotate applies a physical rotation. params.RotateNo is a no-op.
func Rotate(data []byte, rotate params.Rotate) ([]byte, error) {
	if rotate == params.RotateNo {
		return data, nil
	}
	out, err := bimg.NewImage(data).Process(bimg.Options{Rotate: rotateToAngle(rotate)})
	if err != nil {
		return nil, fmt.Errorf("rotate %d: %w", rotate, err)
	}
	return out, nil
}

func rotateToAngle(r params.Rotate) bimg.Angle {
	switch r {
	case params.RotateLeft:
		return bimg.D90
	case params.RotateUpsideDown:
		return bimg.D180
	case params.RotateRight:
		return bimg.D270
	default:
		return bimg.D0
	}
}

// CompositeBackground flattens any alpha channel onto an opaque
// background. The pipeline calls it only when the source format supports
// transparency, the output is not JPEG, and a non-transparent background
// was requested.
func CompositeBackground(data []byte, bg params.Background) ([]byte, error) {
	out, err := bimg.NewImage(data).Process(bimg.Options{
		Background: bimg.Color{R: bg.R, G: bg.G, B: bg.B},
		Flatten:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("composite background: %w", err)
	}
	return out, nil
}

// ICCTransform converts the image to the given output ICC profile.
func ICCTransform(data []byte, outputICCPath string) ([]byte, error) {
	if outputICCPath == "" {
		return data, nil
	}
	out, err := bimg.NewImage(data).Process(bimg.Options{OutputICC: outputICCPath})
	if err != nil {
		return nil, fmt.Errorf("icc transform: %w", err)
	}
	return out, nil
}

// megapixels of an image's pixel area.
func megapixels(width, height int) float64 {
	return float64(width) * float64(height) / 1_000_000
}

// DynamicQuality implements the shared lo/hi falloff curve picturium
// uses for its lossy encoders: quality is hi below 0.25 megapixels, lo
// at 8 megapixels and above, and falls linearly in between (the 7.75
// clamp is what makes it flat below 0.25 megapixels).
func DynamicQuality(width, height int, lo, hi float64) int {
	area := megapixels(width, height)
	t := math.Max(0, math.Min(8-area, 7.75))
	quality := t*(hi-lo)/7.75 + lo
	return int(math.Round(quality))
}

const (
	avifQualityLo, avifQualityHi = 40.0, 59.0
	webpQualityLo, webpQualityHi = 16.0, 78.0
	jpegQualityLo, jpegQualityHi = 40.0, 75.0
	pngFixedQuality              = 78
)

// EncodeOptions carries the per-format encoder knobs Encode derives from
// a (possibly caller-overridden) quality.
type EncodeOptions struct {
	Format   formats.OutputFormat
	Width    int
	Height   int
	Quality  params.Quality
	Lossless bool
}

// Encode picks the dynamic quality curve for the negotiated format
// (unless the caller supplied an explicit quality) and runs the final
// libvips save.
func Encode(data []byte, opts EncodeOptions) ([]byte, error) {
	quality := resolveQuality(opts)
	bimgOpts := bimg.Options{Quality: quality}

	switch opts.Format {
	case formats.OutputAvif:
		bimgOpts.Type = bimg.AVIF
	case formats.OutputWebp:
		bimgOpts.Type = bimg.WEBP
	case formats.OutputPng:
		bimgOpts.Type = bimg.PNG
		bimgOpts.Compression = 6
		if quality < 90 {
			bimgOpts.Interpretation = bimg.InterpretationSRGB
		}
	default:
		bimgOpts.Type = bimg.JPEG
		bimgOpts.Interlace = true
	}

	out, err := bimg.NewImage(data).Process(bimgOpts)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return out, nil
}

func resolveQuality(opts EncodeOptions) int {
	if opts.Quality.IsCustom {
		return int(opts.Quality.Custom)
	}
	switch opts.Format {
	case formats.OutputAvif:
		return DynamicQuality(opts.Width, opts.Height, avifQualityLo, avifQualityHi)
	case formats.OutputWebp:
		return DynamicQuality(opts.Width, opts.Height, webpQualityLo, webpQualityHi)
	case formats.OutputPng:
		return pngFixedQuality
	default:
		return DynamicQuality(opts.Width, opts.Height, jpegQualityLo, jpegQualityHi)
	}
}

// Dither returns the dithering strength png encoding should use: 0.8
// below quality 90, and the full 1.0 at quality 90 and above.
func Dither(quality int) float64 {
	if quality < 90 {
		return 0.8
	}
	return 1.0
}

// Backend is the seam between the pipeline orchestrator and the actual
// imaging library. BimgBackend is the production implementation; tests
// substitute a fake so the orchestrator's stage sequencing can be
// verified without linking libvips.
type Backend interface {
	Inspect(data []byte) (Info, error)
	Rasterize(data []byte, page, width, height, dpi int) ([]byte, error)
	Autorotate(data []byte) ([]byte, error)
	Resize(data []byte, width, height int) ([]byte, error)
	Rotate(data []byte, rotate params.Rotate) ([]byte, error)
	CompositeBackground(data []byte, bg params.Background) ([]byte, error)
	ICCTransform(data []byte, outputICCPath string) ([]byte, error)
	Encode(data []byte, opts EncodeOptions) ([]byte, error)
}

// BimgBackend delegates to the package-level functions, which call into
// libvips through bimg.
type BimgBackend struct{}

func (BimgBackend) Inspect(data []byte) (Info, error) { return Inspect(data) }

func (BimgBackend) Rasterize(data []byte, page, width, height, dpi int) ([]byte, error) {
	return Rasterize(data, page, width, height, dpi)
}

func (BimgBackend) Autorotate(data []byte) ([]byte, error) { return Autorotate(data) }

func (BimgBackend) Resize(data []byte, width, height int) ([]byte, error) {
	return Resize(data, width, height)
}

func (BimgBackend) Rotate(data []byte, rotate params.Rotate) ([]byte, error) {
	return Rotate(data, rotate)
}

func (BimgBackend) CompositeBackground(data []byte, bg params.Background) ([]byte, error) {
	return CompositeBackground(data, bg)
}

func (BimgBackend) ICCTransform(data []byte, outputICCPath string) ([]byte, error) {
	return ICCTransform(data, outputICCPath)
}

func (BimgBackend) Encode(data []byte, opts EncodeOptions) ([]byte, error) {
	return Encode(data, opts)
}
