package pruner

import (
	"bytes"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/xsukax/camclean/observability"
)

// pruneImages removes small image XObjects from each page. A scanned page is
// one large raster; everything below the main-content threshold in either
// dimension is a stamp or logo overlay. Content streams are scrubbed of
// references first, while the resource table still resolves the names.
func (p *Pruner) pruneImages(doc *model.Context, stats *Stats) {
	for pageNr := 1; pageNr <= doc.PageCount; pageNr++ {
		pageDict, _, _, err := doc.PageDict(pageNr, false)
		if err != nil {
			stats.skip(pageNr, "page", err)
			continue
		}
		xobjects, ok := p.xobjectDict(doc, pageDict)
		if !ok {
			continue
		}

		names := make([]string, 0, len(xobjects))
		for name := range xobjects {
			names = append(names, name)
		}
		sort.Strings(names)

		var doomed []string
		for _, name := range names {
			sd, _, err := doc.DereferenceStreamDict(xobjects[name])
			if err != nil {
				stats.skip(pageNr, "xobject "+name, err)
				continue
			}
			if sd == nil {
				continue
			}
			subtype, ok := derefName(doc, sd.Dict["Subtype"])
			if !ok || subtype != "Image" {
				continue
			}
			w, wok := derefInt(doc, sd.Dict["Width"])
			h, hok := derefInt(doc, sd.Dict["Height"])
			if !wok || !hok {
				continue
			}
			p.log.Debug("image xobject",
				observability.Int("page", pageNr),
				observability.String("name", name),
				observability.Int("width", w),
				observability.Int("height", h))
			if w >= p.cfg.MainContentThreshold && h >= p.cfg.MainContentThreshold {
				continue
			}
			doomed = append(doomed, name)
		}
		if len(doomed) == 0 {
			continue
		}

		p.rewriteContentStreams(doc, pageNr, pageDict, stats, func(data []byte) ([]byte, bool) {
			out := p.rewriter.StripReferences(data, doomed)
			return out, !bytes.Equal(out, data)
		})

		for _, name := range doomed {
			xobjects.Delete(name)
			stats.Images++
			p.log.Info("removed watermark image",
				observability.Int("page", pageNr),
				observability.String("name", name))
		}
	}
}

func (p *Pruner) xobjectDict(doc *model.Context, pageDict types.Dict) (types.Dict, bool) {
	resObj, found := pageDict.Find("Resources")
	if !found {
		return nil, false
	}
	res, ok := derefDict(doc, resObj)
	if !ok {
		return nil, false
	}
	xoObj, found := res.Find("XObject")
	if !found {
		return nil, false
	}
	return derefDict(doc, xoObj)
}
