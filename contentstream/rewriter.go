// Package contentstream rewrites raw page content streams so they no longer
// reference resources that are about to be deleted from a page's resource
// table. Streams are treated as byte sequences; no operator is ever decoded
// into a character set, so no byte can be misinterpreted or lost.
package contentstream

import (
	"bytes"
	"regexp"
)

// Drawing operators glue geometry (cm) and state brackets (q/Q) around the
// image-paint operator (Do). Removing only the Do call would leave an invalid
// or visually-empty operator sequence, so the surrounding bracket and matrix
// are stripped too, while unrelated operators stay untouched.
type idPatterns struct {
	invoke  *regexp.Regexp // /<id> Do
	bracket *regexp.Regexp // q ... /<id> Do ... Q
	matrix  *regexp.Regexp // a b c d e f cm /<id> Do
	bare    *regexp.Regexp // any remaining /<id> token
}

var (
	emptyBracket = regexp.MustCompile(`q\s+Q`)
	blankRuns    = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// Rewriter strips references to deleted resource identifiers from content
// streams. Compiled per-identifier patterns are cached, so one Rewriter can
// serve every stream of a document cheaply.
type Rewriter struct {
	patterns map[string]*idPatterns
}

func NewRewriter() *Rewriter {
	return &Rewriter{patterns: make(map[string]*idPatterns)}
}

// StripReferences removes every reference to the given resource identifiers
// from data. The input slice is never mutated; if nothing matched, data is
// returned unchanged, which also makes the operation idempotent.
func (r *Rewriter) StripReferences(data []byte, ids []string) []byte {
	if len(ids) == 0 || len(data) == 0 {
		return data
	}

	out := data
	for _, id := range ids {
		p := r.patternsFor(id)
		out = p.invoke.ReplaceAll(out, nil)
		out = p.bracket.ReplaceAll(out, nil)
		out = p.matrix.ReplaceAll(out, nil)
		out = p.bare.ReplaceAll(out, nil)
	}

	// Collapse brackets emptied by the removals above. Run to a fixpoint so
	// nested q/Q pairs that become empty in one round are caught in the next.
	for {
		collapsed := emptyBracket.ReplaceAll(out, nil)
		if bytes.Equal(collapsed, out) {
			break
		}
		out = collapsed
	}
	out = blankRuns.ReplaceAll(out, []byte("\n\n"))

	if bytes.Equal(out, data) {
		return data
	}
	return out
}

func (r *Rewriter) patternsFor(id string) *idPatterns {
	if p, ok := r.patterns[id]; ok {
		return p
	}
	q := regexp.QuoteMeta(id)
	p := &idPatterns{
		invoke:  regexp.MustCompile(`/` + q + `\s+Do\s*`),
		bracket: regexp.MustCompile(`q\s+[^Q]*?/` + q + `\s+Do[^Q]*?Q`),
		matrix:  regexp.MustCompile(`(?:-?[0-9.]+\s+){6}cm\s*/` + q + `\s+Do`),
		bare:    regexp.MustCompile(`/` + q + `\b`),
	}
	r.patterns[id] = p
	return p
}
