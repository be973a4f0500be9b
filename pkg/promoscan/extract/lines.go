package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const minLineLen = 3

// NormalizeLines splits raw brochure text into trimmed, non-empty lines.
// Order is preserved: later stages use line distance as a proximity signal.
func NormalizeLines(text string) []string {
	if text == "" {
		return []string{}
	}

	// OCR output frequently carries decomposed Cyrillic (и + U+0306).
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

var defaultNoisePatterns = []*regexp.Regexp{
	// page and section labels
	regexp.MustCompile(`(?i)^(?:стр|страница|page|p)\.?\s*\d+(?:\s*(?:/|от|of)\s*\d+)?$`),
	// only punctuation / symbols
	regexp.MustCompile(`^[\p{P}\p{S}\s]+$`),
	// only digits
	regexp.MustCompile(`^[\d\s]+$`),
	// legal and contact boilerplate
	regexp.MustCompile(`(?i)(?:©|copyright|всички права|права запазени|общи условия|снимките са илюстративни|до изчерпване на количествата|работно време|e-?mail|тел\.|телефон|адрес:|(?:^|\s)(?:ул|бул)\.)`),
	// URLs
	regexp.MustCompile(`(?i)(?:https?://|www\.|\.bg(?:/|$|\s)|\.com(?:/|$|\s))`),
	// long digit runs: phone numbers, barcodes, dates used as ids
	regexp.MustCompile(`\d{7,}`),
	regexp.MustCompile(`(?:\+359|\b0[2-9]\d{1,2})[\s/-]?\d{2,3}[\s-]?\d{2,3}[\s-]?\d{2,3}\b`),
}

// NoiseFilter drops lines that cannot anchor a product.
type NoiseFilter struct {
	patterns []*regexp.Regexp
}

// NewNoiseFilter returns a filter with the built-in patterns plus extra.
func NewNoiseFilter(extra []*regexp.Regexp) *NoiseFilter {
	patterns := make([]*regexp.Regexp, 0, len(defaultNoisePatterns)+len(extra))
	patterns = append(patterns, defaultNoisePatterns...)
	patterns = append(patterns, extra...)
	return &NoiseFilter{patterns: patterns}
}

// IsNoise reports whether the line is a page label, boilerplate or similar.
func (f *NoiseFilter) IsNoise(line string) bool {
	if utf8.RuneCountInString(line) < minLineLen {
		return true
	}
	for _, p := range f.patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// Filter returns the lines that are not noise, in their original order.
// An empty result is a normal outcome.
func (f *NoiseFilter) Filter(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if f.IsNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}
