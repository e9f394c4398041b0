package params

// Format is the caller's requested output format, where Auto defers to
// content-negotiation against the Accept header.
type Format int

const (
	FormatAuto Format = iota
	FormatJpg
	FormatPng
	FormatWebp
	FormatAvif
	FormatPdf
)

func (f Format) String() string {
	switch f {
	case FormatJpg:
		return "jpg"
	case FormatPng:
		return "png"
	case FormatWebp:
		return "webp"
	case FormatAvif:
		return "avif"
	case FormatPdf:
		return "pdf"
	default:
		return "auto"
	}
}

func ParseFormat(value string) Format {
	switch value {
	case "jpg", "jpeg":
		return FormatJpg
	case "png":
		return FormatPng
	case "webp":
		return FormatWebp
	case "avif":
		return FormatAvif
	case "pdf":
		return FormatPdf
	default:
		return FormatAuto
	}
}
