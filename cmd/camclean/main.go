// Command camclean strips CamScanner watermarks from scanned PDFs and
// exports the result as PDF, PNG or multi-page TIFF.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/xsukax/camclean/export"
	"github.com/xsukax/camclean/observability"
	"github.com/xsukax/camclean/pipeline"
	"github.com/xsukax/camclean/pruner"
	"github.com/xsukax/camclean/render/fitz"
)

type options struct {
	input  string
	output string
	format export.Format
	dpi    int
	debug  bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "camclean: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "camclean: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: camclean [flags] <pdf>\n")
		flag.PrintDefaults()
	}
	format := flag.String("format", "pdf", "Output format: pdf, png or tif")
	dpi := flag.Int("dpi", export.DefaultDPI, "Render resolution for raster output")
	output := flag.String("o", "", "Output path (default: <input>_cleaned.<ext>)")
	debug := flag.Bool("debug", false, "Verbose per-object diagnostics")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing pdf path")
	}
	opts.input = flag.Arg(0)
	opts.output = *output
	opts.debug = *debug

	if *dpi < export.MinDPI || *dpi > export.MaxDPI {
		return options{}, fmt.Errorf("dpi %d out of range [%d, %d]", *dpi, export.MinDPI, export.MaxDPI)
	}
	opts.dpi = *dpi

	f, err := export.ParseFormat(*format)
	if err != nil {
		return options{}, err
	}
	opts.format = f
	return opts, nil
}

func run(opts options) error {
	log := observability.NewConsole(os.Stderr, opts.debug)
	p := pipeline.New(pruner.DefaultConfig(), fitz.New(), log)

	res, err := p.Run(context.Background(), pipeline.Options{
		InputPath:  opts.input,
		OutputPath: opts.output,
		Format:     opts.format,
		DPI:        opts.dpi,
	})
	if err != nil {
		return err
	}

	s := res.Stats
	fmt.Printf("Removed %d annotations, %d images, %d text blocks, %d metadata entries across %d pages\n",
		s.Annotations, s.Images, s.TextBlocks, s.Metadata, s.Pages)
	if len(s.Skips) > 0 {
		fmt.Printf("Skipped %d malformed objects\n", len(s.Skips))
	}
	for _, path := range res.Outputs {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
