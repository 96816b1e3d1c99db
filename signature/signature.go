// Package signature decides whether a piece of text or a URI carries a
// CamScanner/Intsig watermark signature.
package signature

import "strings"

// Config holds the signature lists the matcher works against. Components
// receive it at construction so tests can inject alternate keyword sets.
type Config struct {
	// Keywords are matched case-insensitively as substrings of free text
	// (annotation contents, text blocks, metadata values).
	Keywords []string
	// Domains are matched case-insensitively as substrings of annotation
	// action URIs.
	Domains []string
}

// DefaultConfig returns the fixed CamScanner/Intsig signature lists.
func DefaultConfig() Config {
	return Config{
		Keywords: []string{
			"camscanner",
			"intsig",
			"www.camscanner.com",
			"camscanner.com",
			"intsig.net",
			"intsig.com",
			"scanned with camscanner",
		},
		Domains: []string{
			"camscanner.com",
			"intsig.net",
			"intsig.com",
		},
	}
}

// Matcher performs case-insensitive substring matching against a Config.
// It is stateless after construction and safe for concurrent use.
type Matcher struct {
	keywords []string
	domains  []string
}

// NewMatcher builds a Matcher from cfg. The lists are lowercased once here
// so the per-call work is a plain substring scan.
func NewMatcher(cfg Config) *Matcher {
	m := &Matcher{
		keywords: make([]string, 0, len(cfg.Keywords)),
		domains:  make([]string, 0, len(cfg.Domains)),
	}
	for _, kw := range cfg.Keywords {
		m.keywords = append(m.keywords, strings.ToLower(kw))
	}
	for _, d := range cfg.Domains {
		m.domains = append(m.domains, strings.ToLower(d))
	}
	return m
}

// MatchText reports whether text contains any configured keyword.
// Empty input never matches.
func (m *Matcher) MatchText(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchURL reports whether url contains any configured watermark domain.
// Empty input never matches.
func (m *Matcher) MatchURL(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, d := range m.domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
