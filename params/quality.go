package params

// Quality is either the caller's explicit q= value or Default, meaning
// "let the imaging backend pick a dynamic quality from the output area".
type Quality struct {
	Custom  uint8
	IsCustom bool
}

func DefaultQuality() Quality { return Quality{} }

func CustomQuality(q uint8) Quality { return Quality{Custom: q, IsCustom: true} }
