package pruner

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/xsukax/camclean/observability"
)

// metadataKeys are the Info dictionary entries a scanning app stamps its
// identity into.
var metadataKeys = []string{"Producer", "Creator", "Author", "Title", "Subject", "Keywords"}

// pruneMetadata clears Info entries whose value matches a signature. Only
// the matching entries are deleted; user-authored metadata survives.
func (p *Pruner) pruneMetadata(doc *model.Context, stats *Stats) {
	if doc.Info == nil {
		return
	}
	info, ok := derefDict(doc, *doc.Info)
	if !ok {
		return
	}
	for _, key := range metadataKeys {
		val, ok := stringEntry(doc, info, key)
		if !ok || !p.matcher.MatchText(val) {
			continue
		}
		info.Delete(key)
		stats.Metadata++
		p.log.Info("cleared metadata entry",
			observability.String("key", key))
	}
}
