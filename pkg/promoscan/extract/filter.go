package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quality thresholds used when configuration does not override them.
const (
	DefaultMaxPrice      = 200.0
	DefaultMinConfidence = 0.4
)

// Dedupe keeps the first candidate for every normalized (name, price) key.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := dedupKey(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func dedupKey(c Candidate) string {
	var b strings.Builder
	for _, r := range strings.ToLower(c.Name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('|')
	b.WriteString(formatPrice(c.Price))
	return b.String()
}

// Blocker decides whether a lowercase name starts with a stop-word.
type Blocker interface {
	Blocks(name string) bool
}

// QualityFilter is the final acceptance gate.
type QualityFilter struct {
	MaxPrice      float64
	MinConfidence float64
	blocker       Blocker
}

// NewQualityFilter creates a filter. A nil blocker blocks nothing.
func NewQualityFilter(maxPrice, minConfidence float64, blocker Blocker) *QualityFilter {
	return &QualityFilter{
		MaxPrice:      maxPrice,
		MinConfidence: minConfidence,
		blocker:       blocker,
	}
}

// Accept reports whether c passes every quality condition.
func (q *QualityFilter) Accept(c Candidate) bool {
	name := strings.TrimSpace(c.Name)
	if utf8.RuneCountInString(name) < minNameLen {
		return false
	}
	if c.Price <= 0 || c.Price > q.MaxPrice {
		return false
	}
	if c.ExtractionConfidence < q.MinConfidence {
		return false
	}
	if q.blocker != nil && q.blocker.Blocks(strings.ToLower(name)) {
		return false
	}
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) && letterCount(name) < 3 {
		return false
	}
	return true
}

// Filter returns the accepted candidates in order.
func (q *QualityFilter) Filter(cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if q.Accept(c) {
			out = append(out, c)
		}
	}
	return out
}

// letterCount counts runes that are neither digits, punctuation nor space.
func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) {
			continue
		}
		n++
	}
	return n
}
