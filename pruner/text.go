package pruner

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/xsukax/camclean/observability"
)

// pruneTextBlocks removes whole BT..ET text objects whose operands mention a
// watermark signature. Matching is per block; unrelated text in the same
// stream is untouched. A stream is re-encoded only when at least one of its
// own blocks was dropped.
func (p *Pruner) pruneTextBlocks(doc *model.Context, stats *Stats) {
	for pageNr := 1; pageNr <= doc.PageCount; pageNr++ {
		pageDict, _, _, err := doc.PageDict(pageNr, false)
		if err != nil {
			stats.skip(pageNr, "page", err)
			continue
		}
		p.rewriteContentStreams(doc, pageNr, pageDict, stats, func(data []byte) ([]byte, bool) {
			out, dropped := p.stripTextBlocks(data)
			if dropped == 0 {
				return data, false
			}
			stats.TextBlocks += dropped
			p.log.Info("removed watermark text",
				observability.Int("page", pageNr),
				observability.Int("blocks", dropped))
			return out, true
		})
	}
}

// stripTextBlocks scans line-wise for BT/ET delimiters. Lines outside any
// block pass through; a buffered block is emitted or discarded when its ET
// arrives. An unterminated block at end of input is kept as-is.
func (p *Pruner) stripTextBlocks(data []byte) ([]byte, int) {
	lines := bytes.Split(data, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	var block [][]byte
	inBlock := false
	dropped := 0

	for _, line := range lines {
		trimmed := bytes.TrimSpace(line)
		switch {
		case !inBlock && bytes.Equal(trimmed, []byte("BT")):
			inBlock = true
			block = block[:0]
			block = append(block, line)
		case inBlock:
			block = append(block, line)
			if bytes.Equal(trimmed, []byte("ET")) {
				inBlock = false
				if p.matcher.MatchText(string(bytes.Join(block, []byte("\n")))) {
					dropped++
				} else {
					out = append(out, block...)
				}
			}
		default:
			out = append(out, line)
		}
	}
	if inBlock {
		out = append(out, block...)
	}
	if dropped == 0 {
		return data, 0
	}
	return bytes.Join(out, []byte("\n")), dropped
}
