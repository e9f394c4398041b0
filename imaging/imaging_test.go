package imaging

import "testing"

func TestDynamicQualityAtZeroAreaUsesHighBound(t *testing.T) {
	got := DynamicQuality(1, 1, webpQualityLo, webpQualityHi)
	if got != int(webpQualityHi) {
		t.Fatalf("expected quality %v at near-zero area, got %v", webpQualityHi, got)
	}
}

func TestDynamicQualityAtEightMegapixelsUsesLowBound(t *testing.T) {
	// 8MP exactly clamps t to 0 -> lo bound.
	got := DynamicQuality(4000, 2000, jpegQualityLo, jpegQualityHi)
	if got != int(jpegQualityLo) {
		t.Fatalf("expected floor quality %v at 8MP, got %v", jpegQualityLo, got)
	}
}

func TestDynamicQualityMonotonicallyDecreasesWithArea(t *testing.T) {
	small := DynamicQuality(500, 500, avifQualityLo, avifQualityHi)
	large := DynamicQuality(3000, 3000, avifQualityLo, avifQualityHi)
	if !(small > large) {
		t.Fatalf("expected quality to drop as area grows: small=%d large=%d", small, large)
	}
}

func TestDitherThresholdAtQuality90(t *testing.T) {
	if Dither(89) != 0.8 {
		t.Fatalf("expected 0.8 dither below 90")
	}
	if Dither(90) != 1.0 {
		t.Fatalf("expected 1.0 dither at or above 90")
	}
}

func TestNeedsICCTransformOnlyForNonSRGB(t *testing.T) {
	if (Info{Colourspace: "srgb"}).NeedsICCTransform() {
		t.Fatal("expected sRGB sources to skip ICC transform")
	}
	if (Info{}).NeedsICCTransform() {
		t.Fatal("expected an unknown colourspace to skip ICC transform")
	}
	if !(Info{Colourspace: "cmyk"}).NeedsICCTransform() {
		t.Fatal("expected a non-sRGB colourspace to require ICC transform")
	}
}
