package pruner

import (
	"errors"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/xsukax/camclean/observability"
)

// rewriteContentStreams applies fn to every content stream of a page. The
// Contents entry is either a single stream or an array of streams; both
// shapes are handled. Streams the dereferencer hands out are copies, so a
// changed stream is materialized as a fresh object and the reference slot
// repointed at it.
func (p *Pruner) rewriteContentStreams(doc *model.Context, pageNr int, pageDict types.Dict, stats *Stats, fn func([]byte) ([]byte, bool)) {
	obj, found := pageDict.Find("Contents")
	if !found {
		return
	}
	resolved, ok := derefObject(doc, obj)
	if !ok {
		return
	}

	if arr, isArr := resolved.(types.Array); isArr {
		for i, entry := range arr {
			if ref := p.rewriteStream(doc, pageNr, entry, stats, fn); ref != nil {
				arr[i] = *ref
			}
		}
		// A direct array lives by value inside the page dict and must be
		// written back. An indirect one shares backing storage with the xref
		// entry, so element assignment already landed.
		if _, isRef := obj.(types.IndirectRef); !isRef {
			pageDict.Update("Contents", arr)
		}
		return
	}

	if ref := p.rewriteStream(doc, pageNr, obj, stats, fn); ref != nil {
		pageDict.Update("Contents", *ref)
	}
}

// rewriteStream decodes one stream, applies fn, and re-encodes when fn
// changed the bytes. Returns the indirect reference of the replacement
// object, or nil when nothing changed or the stream had to be skipped.
func (p *Pruner) rewriteStream(doc *model.Context, pageNr int, obj types.Object, stats *Stats, fn func([]byte) ([]byte, bool)) *types.IndirectRef {
	sd, _, err := doc.DereferenceStreamDict(obj)
	if err != nil {
		stats.skip(pageNr, "content stream", err)
		return nil
	}
	if sd == nil {
		return nil
	}
	if err := sd.Decode(); err != nil {
		stats.skip(pageNr, "content stream", errors.Join(errDecode, err))
		return nil
	}

	out, changed := fn(sd.Content)
	if !changed {
		return nil
	}
	before := len(sd.Content)

	sd.Content = out
	if err := sd.Encode(); err != nil {
		stats.skip(pageNr, "content stream", errors.Join(errEncode, err))
		return nil
	}
	length := int64(len(sd.Raw))
	sd.StreamLength = &length
	sd.Dict.Update("Length", types.Integer(length))

	ref, err := doc.IndRefForNewObject(*sd)
	if err != nil {
		stats.skip(pageNr, "content stream", err)
		return nil
	}
	p.log.Debug("rewrote content stream",
		observability.Int("page", pageNr),
		observability.Int("bytes_removed", before-len(out)))
	return ref
}

var (
	errDecode = errors.New("decode content stream")
	errEncode = errors.New("encode content stream")
)
