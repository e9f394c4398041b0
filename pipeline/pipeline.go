// Package pipeline orchestrates the imaging-backend stages that turn a
// source file plus a DerivativeRequest into an encoded derivative:
// thumbnail/rasterize, autorotate, output-format validation, resize,
// rotate, background composite, ICC transform, and encode.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pixgate/cache"
	"pixgate/converter"
	"pixgate/dimensions"
	pixerr "pixgate/errors"
	"pixgate/formats"
	"pixgate/imaging"
	"pixgate/logging"
	"pixgate/params"
)

// FormatMismatch signals that output-format validation selected a
// different format than the caller negotiated (the source turned out
// too large for the requested encoder). The caller re-derives a cache
// path for the new format and re-invokes Run exactly once; a second
// mismatch on that retry is the fatal "resolution recursion" case.
type FormatMismatch struct {
	Format formats.OutputFormat
}

func (e *FormatMismatch) Error() string {
	return fmt.Sprintf("output format resolved to %s", e.Format)
}

// Result is a successfully produced derivative.
type Result struct {
	Path   string
	Format formats.OutputFormat
}

// Orchestrator holds everything a pipeline run needs beyond the request
// itself: the converter bridge, the cache store it reads/writes
// intermediates and derivatives through, and the imaging backend.
type Orchestrator struct {
	Converter converter.Config
	Cache     *cache.Store
	Backend   imaging.Backend
	SVGDPI    int
	Log       *logging.Logger
}

// NewOrchestrator wires a production BimgBackend into the given
// converter/cache pair.
func NewOrchestrator(conv converter.Config, store *cache.Store, svgDPI int, log *logging.Logger) *Orchestrator {
	return &Orchestrator{Converter: conv, Cache: store, Backend: imaging.BimgBackend{}, SVGDPI: svgDPI, Log: log}
}

// Run executes one full pipeline pass for req against sourcePath,
// targeting outputFormat. On success it returns the path the derivative
// was written to. A *FormatMismatch error means the caller should
// recompute the cache path for the new format and call Run again.
func (o *Orchestrator) Run(ctx context.Context, req params.DerivativeRequest, sourcePath string, outputFormat formats.OutputFormat) (Result, error) {
	defer imaging.ThreadShutdown()

	workingPath, err := o.resolveWorkingFile(ctx, req, sourcePath)
	if err != nil {
		return Result{}, err
	}

	if outputFormat == formats.OutputPdf {
		return Result{Path: workingPath, Format: formats.OutputPdf}, nil
	}

	data, err := os.ReadFile(workingPath)
	if err != nil {
		return Result{}, pixerr.NewPipelineError("load", workingPath, err)
	}

	info, err := o.Backend.Inspect(data)
	if err != nil {
		return Result{}, pixerr.NewPipelineError("load", workingPath, err)
	}
	src := dimensions.Source{Width: info.Width, Height: info.Height}

	if formats.IsThumbnailSource(workingPath) || formats.IsSVG(workingPath) {
		rsize := dimensions.Rasterize(src, req.Width, req.Height, req.Rotate)
		dpi := o.SVGDPI
		if req.Thumbnail.DPI > 0 {
			dpi = req.Thumbnail.DPI
		}
		data, err = o.Backend.Rasterize(data, page(req), rsize.Width, rsize.Height, dpi)
		if err != nil {
			return Result{}, pixerr.NewPipelineError("thumbnail", workingPath, err)
		}
		info, err = o.Backend.Inspect(data)
		if err != nil {
			return Result{}, pixerr.NewPipelineError("thumbnail", workingPath, err)
		}
		src = dimensions.Source{Width: info.Width, Height: info.Height}
	}

	data, err = o.Backend.Autorotate(data)
	if err != nil {
		return Result{}, pixerr.NewPipelineError("autorotate", workingPath, err)
	}
	if info, err = o.Backend.Inspect(data); err != nil {
		return Result{}, pixerr.NewPipelineError("autorotate", workingPath, err)
	}
	src = dimensions.Source{Width: info.Width, Height: info.Height}

	explicitFormat := req.Format != params.FormatAuto
	validated, err := formats.Validate(formats.ImageInfo{Width: info.Width, Height: info.Height, HasAlpha: info.HasAlpha}, explicitFormat, outputFormat)
	if err != nil {
		return Result{}, err
	}
	if validated != outputFormat {
		return Result{}, &FormatMismatch{Format: validated}
	}

	if req.Width != nil || req.Height != nil {
		outSize := dimensions.Output(src, req.Width, req.Height, req.Rotate)
		data, err = o.Backend.Resize(data, outSize.Width, outSize.Height)
		if err != nil {
			return Result{}, pixerr.NewPipelineError("resize", workingPath, err)
		}
	}

	if req.Rotate != params.RotateNo {
		data, err = o.Backend.Rotate(data, req.Rotate)
		if err != nil {
			return Result{}, pixerr.NewPipelineError("rotate", workingPath, err)
		}
	}

	if formats.SupportsTransparency(workingPath) && outputFormat != formats.OutputJpg && req.Background != nil && !req.Background.IsTransparent() {
		data, err = o.Backend.CompositeBackground(data, *req.Background)
		if err != nil {
			return Result{}, pixerr.NewPipelineError("background", workingPath, err)
		}
	}

	if info.NeedsICCTransform() {
		data, err = o.Backend.ICCTransform(data, "sRGB")
		if err != nil {
			return Result{}, pixerr.NewPipelineError("icc", workingPath, err)
		}
	}

	finalInfo, err := o.Backend.Inspect(data)
	if err != nil {
		return Result{}, pixerr.NewPipelineError("encode", workingPath, err)
	}

	encoded, err := o.Backend.Encode(data, imaging.EncodeOptions{
		Format:  outputFormat,
		Width:   finalInfo.Width,
		Height:  finalInfo.Height,
		Quality: req.Quality,
	})
	if err != nil {
		return Result{}, pixerr.NewPipelineError("encode", workingPath, err)
	}

	derivativePath := o.Cache.DerivativePath(req, outputFormat)
	if err := o.Cache.Write(derivativePath, encoded); err != nil {
		return Result{}, pixerr.NewPipelineError("encode", derivativePath, err)
	}
	o.Cache.WriteIndex(derivativePath, sourcePath, o.Log)

	return Result{Path: derivativePath, Format: outputFormat}, nil
}

// resolveWorkingFile produces the file the rest of the pipeline reads
// from: the source itself for ordinary images, a converted PDF for
// office documents, or an extracted still frame for video.
func (o *Orchestrator) resolveWorkingFile(ctx context.Context, req params.DerivativeRequest, sourcePath string) (string, error) {
	switch {
	case formats.IsGenerated(sourcePath):
		docPath := o.Cache.DocumentPath(req)
		if !o.Cache.IsFresh(docPath, sourcePath) {
			converted, err := o.Converter.ConvertDocument(ctx, sourcePath, filepath.Dir(docPath))
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(converted)
			if err != nil {
				return "", pixerr.NewPipelineError("convert-document", sourcePath, err)
			}
			if err := o.Cache.Write(docPath, data); err != nil && o.Log != nil {
				o.Log.WarnWithFields("failed to cache converted document", "path", docPath, "error", err)
			}
			o.Cache.WriteIndex(docPath, sourcePath, o.Log)
		}
		return docPath, nil

	case formats.IsVideo(sourcePath):
		width := 300
		if req.Width != nil {
			width = int(*req.Width)
		}
		return o.Converter.ExtractVideoFrame(ctx, sourcePath, width)

	default:
		return sourcePath, nil
	}
}

func page(req params.DerivativeRequest) int {
	if req.Thumbnail.Page < 1 {
		return 0
	}
	return req.Thumbnail.Page - 1
}
