// Package pipeline wires the cleaning stages end to end: load a document,
// prune the watermark artifacts, export the result.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/xsukax/camclean/export"
	"github.com/xsukax/camclean/observability"
	"github.com/xsukax/camclean/pruner"
	"github.com/xsukax/camclean/render"
)

// ErrInputNotFound reports a missing or unreadable input path.
var ErrInputNotFound = errors.New("input file not found")

type Options struct {
	InputPath string
	// OutputPath overrides the derived <stem>_cleaned.<ext> name when set.
	OutputPath string
	Format     export.Format
	DPI        int
}

type Result struct {
	// Outputs lists every file written, in production order.
	Outputs []string
	Stats   pruner.Stats
}

type Pipeline struct {
	pruner   *pruner.Pruner
	exporter *export.Exporter
	log      observability.Logger
}

func New(cfg pruner.Config, engine render.Engine, log observability.Logger) *Pipeline {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Pipeline{
		pruner:   pruner.New(cfg, log),
		exporter: export.New(engine, log),
		log:      log,
	}
}

func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if _, err := os.Stat(opts.InputPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.InputPath)
	}

	// The whole file is held in memory; the reader must stay usable for
	// stream content loaded on demand during pruning.
	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.InputPath)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	doc, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.InputPath, err)
	}

	// Scanner output is frequently out of spec. Validation findings are
	// reported but never block cleanup.
	if err := api.ValidateContext(doc); err != nil {
		p.log.Warn("document has validation issues, continuing",
			observability.String("input", opts.InputPath),
			observability.Error("err", err))
	}
	if doc.PageCount == 0 {
		if err := doc.EnsurePageCount(); err != nil {
			return nil, fmt.Errorf("determine page count of %s: %w", opts.InputPath, err)
		}
	}

	p.log.Info("cleaning document",
		observability.String("input", opts.InputPath),
		observability.Int("pages", doc.PageCount))

	stats, err := p.pruner.Clean(ctx, doc)
	if err != nil {
		return nil, err
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath(opts.InputPath, opts.Format)
	}
	outputs, err := p.exporter.Export(ctx, doc, export.Options{
		Format:     opts.Format,
		OutputPath: outPath,
		DPI:        opts.DPI,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outputs: outputs, Stats: stats}, nil
}

// DefaultOutputPath derives the output name from the input: the input stem
// plus a _cleaned suffix and the format's extension, alongside the input.
func DefaultOutputPath(inputPath string, f export.Format) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	switch f {
	case export.FormatPDF:
		return stem + "_cleaned.pdf"
	case export.FormatPNG:
		return stem + "_cleaned.png"
	default:
		return stem + "_cleaned.tif"
	}
}
