// Package handlers implements the gateway's single HTTP surface: one
// wildcard GET route that resolves a source path, checks the HMAC
// token, negotiates an output format, serves a cached derivative, or
// falls through to the pipeline.
package handlers

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pixgate/cache"
	pixerr "pixgate/errors"
	"pixgate/fingerprint"
	"pixgate/formats"
	"pixgate/logging"
	"pixgate/params"
	"pixgate/pipeline"
)

// contentTypes maps a negotiated output format's extension to the MIME
// type an encoded derivative is served under.
var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"avif": "image/avif",
	"pdf":  "application/pdf",
}

// ImageHandler serves the gateway's single route: verify token,
// resolve source, negotiate format, serve from cache or run the
// pipeline.
type ImageHandler struct {
	Cache        *cache.Store
	Orchestrator *pipeline.Orchestrator
	Negotiator   formats.Negotiator
	Policy       formats.Policy
	Key          string
	CacheEnable  bool
	Log          *logging.Logger
	Perf         *logging.PerformanceLogger
}

// NewImageHandler wires the handler's collaborators.
func NewImageHandler(store *cache.Store, orch *pipeline.Orchestrator, negotiator formats.Negotiator, policy formats.Policy, key string, cacheEnable bool, log *logging.Logger) *ImageHandler {
	return &ImageHandler{
		Cache:        store,
		Orchestrator: orch,
		Negotiator:   negotiator,
		Policy:       policy,
		Key:          key,
		CacheEnable:  cacheEnable,
		Log:          log,
		Perf:         logging.NewPerformanceLogger(log),
	}
}

// ServeImage handles GET /*path.
func (h *ImageHandler) ServeImage(c *gin.Context) {
	sourcePath := c.Param("path")
	query := c.Request.URL.Query()

	ctx := h.Perf.StartOperation(c.Request.Context(), "serve_image")
	var serveErr error
	defer func() {
		if serveErr != nil {
			h.Perf.EndOperationWithError(ctx, "serve_image", serveErr)
			return
		}
		h.Perf.EndOperation(ctx, "serve_image", map[string]interface{}{"path": sourcePath})
	}()

	if !fingerprint.VerifyToken(h.Key, sourcePath, query.Get("token"), query) {
		pixerr.Handle(c, h.Log.Slog(), pixerr.ErrForbidden("Invalid token"))
		return
	}

	if _, err := os.Stat(sourcePath); err != nil {
		pixerr.Handle(c, h.Log.Slog(), pixerr.ErrNotFound("source not found"))
		return
	}

	req := params.New(sourcePath, params.ParseRaw(query))
	supported := h.Policy.SupportedInput(sourcePath)

	if req.Original || !supported {
		if !req.Original && !supported {
			pixerr.Handle(c, h.Log.Slog(), pixerr.ErrBadRequest("unsupported input format"))
			return
		}
		h.serveFile(c, sourcePath, sourcePath)
		return
	}

	outputFormat := h.Negotiator.Determine(req, c.GetHeader("Accept"))
	cacheEnable := h.CacheEnable

	if formats.IsGenerated(sourcePath) {
		docPath := h.Cache.DocumentPath(req)
		if !h.Cache.IsFresh(docPath, sourcePath) {
			cacheEnable = false
		}
	}

	cachePath := h.Cache.DerivativePath(req, outputFormat)
	if cacheEnable && h.Cache.IsFresh(cachePath, sourcePath) {
		h.serveFile(c, cachePath, sourcePath)
		return
	}

	result, err := h.Orchestrator.Run(ctx, req, sourcePath, outputFormat)
	if err != nil {
		mismatch, ok := err.(*pipeline.FormatMismatch)
		if !ok {
			serveErr = err
			pixerr.Handle(c, h.Log.Slog(), err)
			return
		}

		cachePath = h.Cache.DerivativePath(req, mismatch.Format)
		if cacheEnable && h.Cache.IsFresh(cachePath, sourcePath) {
			h.serveFile(c, cachePath, sourcePath)
			return
		}

		result, err = h.Orchestrator.Run(ctx, req, sourcePath, mismatch.Format)
		if err != nil {
			if _, ok := err.(*pipeline.FormatMismatch); ok {
				serveErr = errFormatRecursion
				pixerr.Handle(c, h.Log.Slog(), pixerr.NewPipelineError("finalize", sourcePath, errFormatRecursion))
				return
			}
			serveErr = err
			pixerr.Handle(c, h.Log.Slog(), err)
			return
		}
	}

	h.serveFile(c, result.Path, sourcePath)
}

var errFormatRecursion = errors.New("output format resolution recursion")

// serveFile streams the file at diskPath to the client with the headers
// the response-code table's 200 row requires, naming the
// Content-Disposition after originalName (the requested source path)
// regardless of which file on disk is actually served.
func (h *ImageHandler) serveFile(c *gin.Context, diskPath, originalName string) {
	if _, err := os.Stat(diskPath); err != nil {
		pixerr.Handle(c, h.Log.Slog(), pixerr.ErrBadRequest("failed to open source"))
		return
	}

	c.Header("Cache-Control", "public, max-age=604800, must-revalidate")
	c.Header("Content-Disposition", `inline; filename="`+filepath.Base(originalName)+`"`)
	if ct, ok := contentTypes[formats.Extension(diskPath)]; ok {
		c.Header("Content-Type", ct)
	}

	c.File(diskPath)
}
