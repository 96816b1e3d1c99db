package pruner

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/xsukax/camclean/observability"
)

// pruneAnnotations drops annotations whose link target or visible text
// carries a watermark signature. Each page's Annots array is filtered in one
// shot and written back, so surviving entries keep their relative order.
func (p *Pruner) pruneAnnotations(doc *model.Context, stats *Stats) {
	for pageNr := 1; pageNr <= doc.PageCount; pageNr++ {
		pageDict, _, _, err := doc.PageDict(pageNr, false)
		if err != nil {
			stats.skip(pageNr, "page", err)
			continue
		}
		obj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, ok := derefArray(doc, obj)
		if !ok {
			continue
		}

		kept := make(types.Array, 0, len(annots))
		removed := 0
		for _, entry := range annots {
			annot, ok := derefDict(doc, entry)
			if !ok {
				// Not something we can inspect. Keep it.
				kept = append(kept, entry)
				continue
			}
			if p.annotationIsWatermark(doc, annot, pageNr) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		if removed == 0 {
			continue
		}
		pageDict.Update("Annots", kept)
		stats.Annotations += removed
	}
}

func (p *Pruner) annotationIsWatermark(doc *model.Context, annot types.Dict, pageNr int) bool {
	if aObj, found := annot.Find("A"); found {
		if action, ok := derefDict(doc, aObj); ok {
			if uri, ok := stringEntry(doc, action, "URI"); ok && p.matcher.MatchURL(uri) {
				p.log.Info("removing link annotation",
					observability.Int("page", pageNr),
					observability.String("uri", truncate(uri, 50)))
				return true
			}
		}
	}
	if contents, ok := stringEntry(doc, annot, "Contents"); ok && p.matcher.MatchText(contents) {
		p.log.Info("removing watermark annotation",
			observability.Int("page", pageNr))
		return true
	}
	return false
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := 0
	for i := range s {
		if i > n {
			break
		}
		end = i
	}
	return s[:end] + "..."
}
