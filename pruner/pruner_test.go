package pruner

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"

	"github.com/xsukax/camclean/observability"
)

// buildPDF assembles a single-page scanned-document PDF in memory: one main
// raster of the given dimensions, a 50x50 overlay image, a branded link
// annotation, a branded text block, and a branded Producer entry.
func buildPDF(t *testing.T, mainW, mainH int) *model.Context {
	t.Helper()

	content := strings.Join([]string{
		"q",
		"1 0 0 1 0 0 cm",
		"/Im1 Do",
		"Q",
		"q",
		"50 0 0 50 100 100 cm",
		"/Im2 Do",
		"Q",
		"BT",
		"/F1 12 Tf",
		"(Scanned with CamScanner) Tj",
		"ET",
		"BT",
		"/F1 12 Tf",
		"(Invoice total: 42) Tj",
		"ET",
	}, "\n")

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /XObject << /Im1 4 0 R /Im2 5 0 R >> >> " +
			"/Contents 6 0 R /Annots [7 0 R] >>",
		fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width %d /Height %d "+
			"/ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\nx\nendstream", mainW, mainH),
		"<< /Type /XObject /Subtype /Image /Width 50 /Height 50 " +
			"/ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\nx\nendstream",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Annot /Subtype /Link /Rect [0 0 100 20] " +
			"/A << /S /URI /URI (https://www.camscanner.com/app/download) >> >>",
		"<< /Producer (CamScanner) /Author (Alice) >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objs))
	for i, body := range objs {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 8 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objs)+1, xrefOff)

	doc, err := api.ReadContext(bytes.NewReader(buf.Bytes()), model.NewDefaultConfiguration())
	require.NoError(t, err)
	require.NoError(t, doc.EnsurePageCount())
	return doc
}

func pageContent(t *testing.T, doc *model.Context) string {
	t.Helper()
	pageDict, _, _, err := doc.PageDict(1, false)
	require.NoError(t, err)
	obj, found := pageDict.Find("Contents")
	require.True(t, found)
	sd, _, err := doc.DereferenceStreamDict(obj)
	require.NoError(t, err)
	require.NoError(t, sd.Decode())
	return string(sd.Content)
}

func TestCleanRemovesWatermarkArtifacts(t *testing.T) {
	doc := buildPDF(t, 2000, 3000)
	p := New(DefaultConfig(), observability.NopLogger{})

	stats, err := p.Clean(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, 1, stats.Pages)
	require.Equal(t, 1, stats.Annotations)
	require.Equal(t, 1, stats.Images)
	require.Equal(t, 1, stats.TextBlocks)
	require.Equal(t, 1, stats.Metadata)
	require.Empty(t, stats.Skips)

	pageDict, _, _, err := doc.PageDict(1, false)
	require.NoError(t, err)

	annObj, found := pageDict.Find("Annots")
	require.True(t, found)
	annots, ok := derefArray(doc, annObj)
	require.True(t, ok)
	require.Empty(t, annots)

	xobjects, ok := p.xobjectDict(doc, pageDict)
	require.True(t, ok)
	_, hasMain := xobjects.Find("Im1")
	require.True(t, hasMain, "main content image must survive")
	_, hasOverlay := xobjects.Find("Im2")
	require.False(t, hasOverlay, "overlay image must be deleted")

	content := pageContent(t, doc)
	require.Contains(t, content, "/Im1 Do")
	require.NotContains(t, content, "/Im2")
	require.NotContains(t, content, "CamScanner")
	require.Contains(t, content, "Invoice total: 42")

	info, ok := derefDict(doc, *doc.Info)
	require.True(t, ok)
	_, hasProducer := info.Find("Producer")
	require.False(t, hasProducer)
	_, hasAuthor := info.Find("Author")
	require.True(t, hasAuthor, "user-authored metadata must survive")
}

func TestCleanIdempotent(t *testing.T) {
	doc := buildPDF(t, 2000, 3000)
	p := New(DefaultConfig(), observability.NopLogger{})

	_, err := p.Clean(context.Background(), doc)
	require.NoError(t, err)

	stats, err := p.Clean(context.Background(), doc)
	require.NoError(t, err)
	require.Zero(t, stats.Annotations)
	require.Zero(t, stats.Images)
	require.Zero(t, stats.TextBlocks)
	require.Zero(t, stats.Metadata)
	require.Empty(t, stats.Skips)
}

func TestCleanThresholdIsInclusive(t *testing.T) {
	// A 1000x1000 image sits exactly on the threshold and counts as main
	// content.
	doc := buildPDF(t, 1000, 1000)
	p := New(DefaultConfig(), observability.NopLogger{})

	stats, err := p.Clean(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Images)

	pageDict, _, _, err := doc.PageDict(1, false)
	require.NoError(t, err)
	xobjects, ok := p.xobjectDict(doc, pageDict)
	require.True(t, ok)
	_, hasMain := xobjects.Find("Im1")
	require.True(t, hasMain)
}

func TestCleanRemovesImageBelowThresholdOnOneAxis(t *testing.T) {
	// 999x2000 misses the threshold on one axis and is not main content.
	doc := buildPDF(t, 999, 2000)
	p := New(DefaultConfig(), observability.NopLogger{})

	stats, err := p.Clean(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Images)

	pageDict, _, _, err := doc.PageDict(1, false)
	require.NoError(t, err)
	xobjects, ok := p.xobjectDict(doc, pageDict)
	require.True(t, ok)
	require.Empty(t, xobjects)
}

func TestCleanCanceledContext(t *testing.T) {
	doc := buildPDF(t, 2000, 3000)
	p := New(DefaultConfig(), observability.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Clean(ctx, doc)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	short := "https://camscanner.com"
	require.Equal(t, short, truncate(short, 50))

	long := strings.Repeat("a", 49) + "日本語"
	got := truncate(long, 50)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("a", 49)+"...", got)
}

func TestStripTextBlocksPerBlock(t *testing.T) {
	p := New(DefaultConfig(), observability.NopLogger{})

	in := []byte("0 0 m\nBT\n(CamScanner) Tj\nET\nBT\n(hello) Tj\nET\n")
	out, dropped := p.stripTextBlocks(in)
	require.Equal(t, 1, dropped)
	require.NotContains(t, string(out), "CamScanner")
	require.Contains(t, string(out), "(hello) Tj")
	require.Contains(t, string(out), "0 0 m")
}

func TestStripTextBlocksUnterminated(t *testing.T) {
	p := New(DefaultConfig(), observability.NopLogger{})

	in := []byte("BT\n(CamScanner) Tj\n")
	out, dropped := p.stripTextBlocks(in)
	require.Zero(t, dropped)
	require.Equal(t, string(in), string(out))
}

func TestStripTextBlocksNoMatch(t *testing.T) {
	p := New(DefaultConfig(), observability.NopLogger{})

	in := []byte("BT\n(plain text) Tj\nET\n")
	out, dropped := p.stripTextBlocks(in)
	require.Zero(t, dropped)
	require.Equal(t, string(in), string(out))
}
