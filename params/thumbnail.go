package params

import (
	"strconv"
	"strings"
)

// Thumbnail selects the page (PDF, multi-page TIFF) rasterized for a
// derivative, plus an optional per-request DPI override for the
// rasterize stage.
type Thumbnail struct {
	Page int
	// DPI is the per-request rasterization override. Zero means "use
	// the server's SVG_DPI default".
	DPI int
}

func DefaultThumbnail() Thumbnail { return Thumbnail{Page: 1} }

// ParseThumbnail reads the "page,dpi" form. A missing or unparsable page
// falls back to page 1; an absent dpi leaves the server default in
// place.
func ParseThumbnail(value string) Thumbnail {
	t := DefaultThumbnail()
	if value == "" {
		return t
	}

	parts := strings.Split(value, ",")
	if len(parts) > 0 {
		if page, err := strconv.Atoi(parts[0]); err == nil {
			t.Page = page
		}
	}
	if len(parts) > 1 {
		if dpi, err := strconv.Atoi(parts[1]); err == nil {
			t.DPI = dpi
		}
	}
	return t
}
