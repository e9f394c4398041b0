// Package converter bridges to the external subprocesses the pipeline
// delegates to: LibreOffice for document-to-PDF conversion, and mpv for
// extracting a still frame from a video source.
package converter

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"

	pixerr "pixgate/errors"
)

// Config names the external binaries and scratch directories the
// converter bridge shells out to.
type Config struct {
	SofficePath string
	MpvPath     string
	CacheRoot   string
}

// DefaultConfig returns the bare binary names, resolved through PATH,
// and a cache root under the OS temp directory.
func DefaultConfig() Config {
	return Config{
		SofficePath: "soffice",
		MpvPath:     "mpv",
		CacheRoot:   os.TempDir(),
	}
}

var mpvStartPositions = []string{"25%", "20%", "15%", "0"}

// ConvertDocument runs `soffice --headless --convert-to pdf` against
// inputPath and returns the path to the produced PDF, which the caller
// then treats as a normal cacheable intermediate. LibreOffice derives
// the output filename from the input's stem, so outDir must be empty or
// dedicated to this conversion.
func (c Config) ConvertDocument(ctx context.Context, inputPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", pixerr.NewPipelineError("convert-document", inputPath, fmt.Errorf("create outdir: %w", err))
	}

	cmd := exec.CommandContext(ctx, c.SofficePath,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, inputPath)

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", pixerr.NewPipelineError("convert-document", inputPath, fmt.Errorf("soffice: %w: %s", err, out))
	}

	stem := filepath.Base(inputPath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	pdfPath := filepath.Join(outDir, stem+".pdf")

	info, err := os.Stat(pdfPath)
	if err != nil || info.Size() == 0 {
		return "", pixerr.NewPipelineError("convert-document", inputPath, fmt.Errorf("soffice did not produce %s", pdfPath))
	}

	return pdfPath, nil
}

// ExtractVideoFrame tries each of the ordered start positions in turn
// and returns the path to the first non-empty still frame mpv produces.
// Temp frames land under CacheRoot/video, named after an fnv hash of the
// source path so repeated requests for the same video reuse the
// positional collisions deterministically.
func (c Config) ExtractVideoFrame(ctx context.Context, inputPath string, width int) (string, error) {
	videoDir := filepath.Join(c.CacheRoot, "video")
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return "", pixerr.NewPipelineError("extract-video-frame", inputPath, fmt.Errorf("create video cache dir: %w", err))
	}

	if width <= 0 {
		width = 300
	}
	hashed := hashPath(inputPath)

	for _, pos := range mpvStartPositions {
		outPath := filepath.Join(videoDir, fmt.Sprintf("mpv-thumbnailer-%d-%s.png", hashed, trimPercent(pos)))

		cmd := exec.CommandContext(ctx, c.MpvPath,
			"--really-quiet", "--no-config", "--aid=no", "--sid=no",
			fmt.Sprintf("--vf=scale=%d:%d/dar", width, width),
			fmt.Sprintf("--start=%s", pos),
			"--frames=1",
			fmt.Sprintf("--o=%s", outPath),
			inputPath,
		)

		if err := cmd.Run(); err != nil {
			continue
		}

		info, err := os.Stat(outPath)
		if err != nil || info.Size() == 0 {
			continue
		}

		return outPath, nil
	}

	return "", pixerr.NewPipelineError("extract-video-frame", inputPath, fmt.Errorf("mpv produced no frame at any of %v", mpvStartPositions))
}

func trimPercent(pos string) string {
	result := make([]byte, 0, len(pos))
	for i := 0; i < len(pos); i++ {
		if pos[i] != '%' {
			result = append(result, pos[i])
		}
	}
	return string(result)
}

func hashPath(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}
