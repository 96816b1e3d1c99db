// Package fitz adapts the MuPDF bindings to the render.Engine contract.
package fitz

import (
	"fmt"
	"image"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/xsukax/camclean/render"
)

// Engine rasterizes pages through MuPDF.
type Engine struct{}

func New() Engine { return Engine{} }

func (Engine) Name() string { return "mupdf" }

func (Engine) Open(path string) (render.Document, error) {
	doc, err := gofitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open for rendering: %w", err)
	}
	return &document{doc: doc}, nil
}

type document struct {
	doc *gofitz.Document
}

func (d *document) PageCount() int { return d.doc.NumPage() }

func (d *document) Render(page int, dpi float64) (image.Image, error) {
	return d.doc.ImageDPI(page, dpi)
}

func (d *document) Close() error { return d.doc.Close() }
