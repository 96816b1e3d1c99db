// Package export serializes a cleaned document to its final artifact: the
// PDF itself, one PNG per page, or a single multi-page TIFF. Raster formats
// go through a render.Engine; this package never rasterizes pixels itself.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/xsukax/camclean/observability"
	"github.com/xsukax/camclean/render"
	"github.com/xsukax/camclean/tiffenc"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tif"
)

const (
	DefaultDPI = 300
	MinDPI     = 72
	MaxDPI     = 1200
)

// ErrNoPagesRendered reports that every page of the document failed to
// rasterize, including the low-resolution retry.
var ErrNoPagesRendered = errors.New("no pages could be rendered")

// ParseFormat maps a user-supplied format name onto a Format. Matching is
// case-insensitive and "tiff" is accepted as a spelling of "tif".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unknown output format %q (want pdf, png or tif)", s)
}

type Options struct {
	Format     Format
	OutputPath string
	// DPI applies to raster formats only. Zero means DefaultDPI.
	DPI int
}

func (o *Options) validate() error {
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.DPI < MinDPI || o.DPI > MaxDPI {
		return fmt.Errorf("dpi %d out of range [%d, %d]", o.DPI, MinDPI, MaxDPI)
	}
	if o.OutputPath == "" {
		return errors.New("output path is empty")
	}
	return nil
}

// Exporter writes cleaned documents to disk.
type Exporter struct {
	engine render.Engine
	log    observability.Logger
}

func New(engine render.Engine, log observability.Logger) *Exporter {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Exporter{engine: engine, log: log}
}

// Export writes doc per opts and returns the paths of every file produced.
func (e *Exporter) Export(ctx context.Context, doc *model.Context, opts Options) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Format == FormatPDF {
		if err := api.WriteContextFile(doc, opts.OutputPath); err != nil {
			return nil, fmt.Errorf("write pdf: %w", err)
		}
		return []string{opts.OutputPath}, nil
	}

	// Raster formats round-trip through a temporary PDF so the engine sees
	// the cleaned object graph, not the input file.
	tmp := filepath.Join(filepath.Dir(opts.OutputPath), fmt.Sprintf("_temp_%d.pdf", os.Getpid()))
	if err := api.WriteContextFile(doc, tmp); err != nil {
		return nil, fmt.Errorf("write intermediate pdf: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			e.log.Debug("intermediate pdf cleanup failed",
				observability.String("path", tmp),
				observability.Error("err", err))
		}
	}()

	frames, pageCount, err := e.renderPages(ctx, tmp, float64(opts.DPI))
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatPNG:
		return e.writePNGs(frames, opts.OutputPath, pageCount)
	case FormatTIFF:
		imgs := make([]image.Image, 0, len(frames))
		for _, f := range frames {
			imgs = append(imgs, f.img)
		}
		if err := e.writeTIFF(imgs, opts.OutputPath, opts.DPI); err != nil {
			return nil, err
		}
		return []string{opts.OutputPath}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", opts.Format)
}

// pageFrame pairs a rendered image with its 1-based source page number.
// Naming must follow the document's pagination even when pages in between
// failed to render.
type pageFrame struct {
	page int
	img  image.Image
}

// renderPages rasterizes every page of the document at src and reports the
// document's page count alongside the surviving frames. A page that fails at
// the requested resolution is retried at render.DefaultDPI; a page that
// fails both is skipped. At least one page must survive.
func (e *Exporter) renderPages(ctx context.Context, src string, dpi float64) ([]pageFrame, int, error) {
	doc, err := e.engine.Open(src)
	if err != nil {
		return nil, 0, err
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	var frames []pageFrame
	for page := 0; page < pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		img, err := doc.Render(page, dpi)
		if err != nil {
			e.log.Warn("page failed at requested resolution, retrying",
				observability.Int("page", page+1),
				observability.Int("fallback_dpi", render.DefaultDPI),
				observability.Error("err", err))
			img, err = doc.Render(page, render.DefaultDPI)
		}
		if err != nil {
			e.log.Warn("skipping unrenderable page",
				observability.Int("page", page+1),
				observability.Error("err", err))
			continue
		}
		frames = append(frames, pageFrame{page: page + 1, img: img})
	}
	if len(frames) == 0 {
		return nil, 0, ErrNoPagesRendered
	}
	return frames, pageCount, nil
}

// writePNGs writes one file per frame. A single-page document takes the
// output path as-is; a multi-page document gets a _page_<n> suffix carrying
// the source page number, even when other pages were skipped.
func (e *Exporter) writePNGs(frames []pageFrame, outPath string, pageCount int) ([]string, error) {
	stem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := stem + ".png"
		if pageCount > 1 {
			path = fmt.Sprintf("%s_page_%d.png", stem, f.page)
		}
		if err := writePNG(path, f.img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func (e *Exporter) writeTIFF(frames []image.Image, path string, dpi int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tiff: %w", err)
	}
	if err := tiffenc.Encode(f, frames, dpi); err != nil {
		f.Close()
		return fmt.Errorf("encode tiff: %w", err)
	}
	return f.Close()
}
