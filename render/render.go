// Package render defines the rasterization collaborator contract. The
// cleaning pipeline never rasterizes pages itself; it hands a serialized
// document to an Engine and consumes the pixel grids it produces.
package render

import "image"

// DefaultDPI is the fallback resolution used when a page refuses to render
// at the requested one.
const DefaultDPI = 72

// Document is an open, renderable document. Pages are zero-indexed at this
// boundary; user-facing numbering is the caller's concern.
type Document interface {
	PageCount() int
	// Render rasterizes one page at the given resolution, without an alpha
	// channel.
	Render(page int, dpi float64) (image.Image, error)
	Close() error
}

// Engine opens documents for rendering. Implementations wrap an external
// rasterization library; tests substitute fakes.
type Engine interface {
	Name() string
	Open(path string) (Document, error)
}
