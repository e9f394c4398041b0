package formats

import (
	"testing"

	pixerr "pixgate/errors"
	"pixgate/params"
)

func TestSupportedInputWhitelist(t *testing.T) {
	for _, path := range []string{"a.jpg", "a.PNG", "a.webp", "a.svg", "a.heic", "a.pdf", "a.docx"} {
		if !SupportedInput(path) {
			t.Errorf("expected %q to be a supported input", path)
		}
	}
	if SupportedInput("a.exe") {
		t.Error("expected .exe to be rejected")
	}
}

func TestIsThumbnailSourceDocumentsOnly(t *testing.T) {
	if !IsThumbnailSource("report.pdf") {
		t.Error("expected pdf to need rasterization")
	}
	if IsThumbnailSource("photo.jpg") {
		t.Error("expected jpg not to need rasterization")
	}
}

func TestPolicySupportedInputGatesVideo(t *testing.T) {
	disabled := Policy{}
	if disabled.SupportedInput("clip.mp4") {
		t.Error("expected video to be rejected when VideoEnable is false")
	}

	enabled := Policy{VideoEnable: true}
	if !enabled.SupportedInput("clip.mp4") {
		t.Error("expected video to be accepted when VideoEnable is true")
	}
	if !enabled.SupportedInput("a.jpg") {
		t.Error("expected ordinary raster input to remain accepted")
	}
}

func TestIsGeneratedOfficeFormats(t *testing.T) {
	if !IsGenerated("report.docx") {
		t.Error("expected docx to require conversion")
	}
	if IsGenerated("report.pdf") {
		t.Error("pdf does not need office conversion, only rasterization")
	}
}

func TestSupportsTransparencyExcludesJpeg(t *testing.T) {
	if SupportsTransparency("a.jpg") || SupportsTransparency("a.jpeg") {
		t.Error("jpeg sources never carry alpha")
	}
	if !SupportsTransparency("a.png") {
		t.Error("png sources can carry alpha")
	}
}

func TestDetermineExplicitFormatWins(t *testing.T) {
	n := Negotiator{AvifEnable: true}
	req := params.DerivativeRequest{Format: params.FormatPng}
	if got := n.Determine(req, "image/avif,image/webp"); got != OutputPng {
		t.Fatalf("expected explicit png request to win, got %v", got)
	}
}

func TestDetermineAvifRequiresEnableFlag(t *testing.T) {
	req := params.DerivativeRequest{Format: params.FormatAuto}

	disabled := Negotiator{AvifEnable: false}
	if got := disabled.Determine(req, "image/avif"); got != OutputJpg {
		t.Fatalf("expected avif offer ignored when disabled, got %v", got)
	}

	enabled := Negotiator{AvifEnable: true}
	if got := enabled.Determine(req, "image/avif,image/webp"); got != OutputAvif {
		t.Fatalf("expected avif to win when enabled and accepted, got %v", got)
	}
}

func TestDetermineFallsBackToWebpThenJpeg(t *testing.T) {
	n := Negotiator{AvifEnable: true}
	req := params.DerivativeRequest{Format: params.FormatAuto}

	if got := n.Determine(req, "image/webp"); got != OutputWebp {
		t.Fatalf("expected webp, got %v", got)
	}
	if got := n.Determine(req, "text/html"); got != OutputJpg {
		t.Fatalf("expected jpeg fallback, got %v", got)
	}
}

func TestValidateWebpWithinLimitsPassesThrough(t *testing.T) {
	img := ImageInfo{Width: 1000, Height: 1000}
	got, err := Validate(img, false, OutputWebp)
	if err != nil || got != OutputWebp {
		t.Fatalf("expected unchanged webp, got %v err %v", got, err)
	}
}

func TestValidateWebpAutoFallsBackToPngWhenAlpha(t *testing.T) {
	img := ImageInfo{Width: 20000, Height: 20000, HasAlpha: true}
	got, err := Validate(img, false, OutputWebp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OutputPng {
		t.Fatalf("expected png fallback for alpha source, got %v", got)
	}
}

func TestValidateWebpAutoFallsBackToJpegWithoutAlpha(t *testing.T) {
	img := ImageInfo{Width: 20000, Height: 20000}
	got, err := Validate(img, false, OutputWebp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OutputJpg {
		t.Fatalf("expected jpeg fallback, got %v", got)
	}
}

func TestValidateExplicitTooLargeIsPipelineError(t *testing.T) {
	img := ImageInfo{Width: 20000, Height: 20000}
	_, err := Validate(img, true, OutputWebp)
	if err == nil {
		t.Fatal("expected an error for an explicit oversized request")
	}
	var pe *pixerr.PipelineError
	if !asPipelineError(err, &pe) {
		t.Fatalf("expected a *errors.PipelineError, got %T", err)
	}
}

func TestValidateAvifAutoFallsBackToJpeg(t *testing.T) {
	img := ImageInfo{Width: 20000, Height: 20000}
	got, err := Validate(img, false, OutputAvif)
	if err != nil || got != OutputJpg {
		t.Fatalf("expected jpeg fallback, got %v err %v", got, err)
	}
}

func TestValidatePngAutoFallsBackToJpeg(t *testing.T) {
	img := ImageInfo{Width: 20000, Height: 20000}
	got, err := Validate(img, false, OutputPng)
	if err != nil || got != OutputJpg {
		t.Fatalf("expected jpeg fallback, got %v err %v", got, err)
	}
}

func asPipelineError(err error, target **pixerr.PipelineError) bool {
	pe, ok := err.(*pixerr.PipelineError)
	if ok {
		*target = pe
	}
	return ok
}
