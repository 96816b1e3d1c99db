// Package pruner walks a PDF's page/annotation/resource object graph and
// deletes CamScanner watermark artifacts from it. The document is mutated in
// place; serialization stays with the caller.
package pruner

import (
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/xsukax/camclean/contentstream"
	"github.com/xsukax/camclean/observability"
	"github.com/xsukax/camclean/signature"
)

// DefaultMainContentThreshold separates the single large scanned-page image
// (kept) from small overlay/watermark images (removed). An image is main
// content iff both dimensions reach the threshold.
const DefaultMainContentThreshold = 1000

type Config struct {
	Signatures           signature.Config
	MainContentThreshold int
}

func DefaultConfig() Config {
	return Config{
		Signatures:           signature.DefaultConfig(),
		MainContentThreshold: DefaultMainContentThreshold,
	}
}

// Stats reports what one Clean run removed. The counts are observational;
// nothing branches on them.
type Stats struct {
	Pages       int
	Annotations int
	Images      int
	TextBlocks  int
	Metadata    int

	// Skips records objects a pass gave up on. A malformed annotation or
	// image must not abort cleanup of an otherwise valid document, so these
	// are collected instead of raised.
	Skips []Skip
}

// Skip identifies one object a pass stepped over and why.
type Skip struct {
	Page      int
	Component string
	Err       error
}

func (s *Stats) skip(page int, component string, err error) {
	s.Skips = append(s.Skips, Skip{Page: page, Component: component, Err: err})
}

// Pruner applies the four watermark-removal passes to a document.
type Pruner struct {
	cfg      Config
	matcher  *signature.Matcher
	rewriter *contentstream.Rewriter
	log      observability.Logger
}

func New(cfg Config, log observability.Logger) *Pruner {
	if cfg.MainContentThreshold <= 0 {
		cfg.MainContentThreshold = DefaultMainContentThreshold
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Pruner{
		cfg:      cfg,
		matcher:  signature.NewMatcher(cfg.Signatures),
		rewriter: contentstream.NewRewriter(),
		log:      log,
	}
}

// Clean runs the passes in their required order: annotations, images, text
// blocks, metadata. Image pruning must scrub content-stream references while
// the resource table still holds the doomed entries, and later passes must
// see the already-pruned document.
func (p *Pruner) Clean(ctx context.Context, doc *model.Context) (Stats, error) {
	stats := Stats{Pages: doc.PageCount}

	p.pruneAnnotations(doc, &stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	p.pruneImages(doc, &stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	p.pruneTextBlocks(doc, &stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	p.pruneMetadata(doc, &stats)

	for _, s := range stats.Skips {
		p.log.Debug("skipped object",
			observability.Int("page", s.Page),
			observability.String("component", s.Component),
			observability.Error("err", s.Err))
	}
	return stats, ctx.Err()
}
