// Package testutils provides fakes for exercising the pipeline and
// handler layers without linking libvips or shelling out to the
// external converter binaries.
package testutils

import (
	"pixgate/imaging"
	"pixgate/params"
)

// FakeBackend is a scriptable imaging.Backend: callers seed the Info it
// reports and it mutates data with a small marker per stage so tests
// can assert the orchestrator called stages in the expected order
// without decoding real image bytes.
type FakeBackend struct {
	Info  imaging.Info
	Calls []string
}

func (f *FakeBackend) Inspect(data []byte) (imaging.Info, error) {
	f.Calls = append(f.Calls, "inspect")
	return f.Info, nil
}

func (f *FakeBackend) Rasterize(data []byte, page, width, height, dpi int) ([]byte, error) {
	f.Calls = append(f.Calls, "rasterize")
	f.Info.Width, f.Info.Height = width, height
	return append(append([]byte{}, data...), []byte("|rasterize")...), nil
}

func (f *FakeBackend) Autorotate(data []byte) ([]byte, error) {
	f.Calls = append(f.Calls, "autorotate")
	return append(append([]byte{}, data...), []byte("|autorotate")...), nil
}

func (f *FakeBackend) Resize(data []byte, width, height int) ([]byte, error) {
	f.Calls = append(f.Calls, "resize")
	f.Info.Width, f.Info.Height = width, height
	return append(append([]byte{}, data...), []byte("|resize")...), nil
}

func (f *FakeBackend) Rotate(data []byte, rotate params.Rotate) ([]byte, error) {
	f.Calls = append(f.Calls, "rotate")
	return append(append([]byte{}, data...), []byte("|rotate")...), nil
}

func (f *FakeBackend) CompositeBackground(data []byte, bg params.Background) ([]byte, error) {
	f.Calls = append(f.Calls, "background")
	return append(append([]byte{}, data...), []byte("|background")...), nil
}

func (f *FakeBackend) ICCTransform(data []byte, outputICCPath string) ([]byte, error) {
	f.Calls = append(f.Calls, "icc")
	return append(append([]byte{}, data...), []byte("|icc")...), nil
}

func (f *FakeBackend) Encode(data []byte, opts imaging.EncodeOptions) ([]byte, error) {
	f.Calls = append(f.Calls, "encode:"+opts.Format.String())
	return append(append([]byte{}, data...), []byte("|encode")...), nil
}

var _ imaging.Backend = (*FakeBackend)(nil)
