package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	priceWindow = 2

	minAcceptedPrice = 0.10 // exclusive
	maxAcceptedPrice = 500.0
)

// pricePatterns are tried in order. Group 1 is the price token, group 2 the number.
var pricePatterns = []*regexp.Regexp{
	// 2.69 лв, 2,69лв., 3.50 €, 4 BGN
	regexp.MustCompile(`(?i)((\d{1,4}(?:[.,]\d{1,2})?)\s*(?:лв\.?|lv\.?|bgn|€|eur|евро))`),
	// € 3.50, BGN 4.20, лв. 2.10
	regexp.MustCompile(`(?i)((?:€|eur|bgn|лв\.?)\s*(\d{1,4}(?:[.,]\d{1,2})?))`),
	// цена: 2.69, price - 3,10
	regexp.MustCompile(`(?i)((?:цена|price)\s*[:\-]?\s*(\d{1,4}(?:[.,]\d{1,2})?))`),
	// - 2.69 - лв
	regexp.MustCompile(`(?i)(?:^|[\s\-])((\d{1,4}[.,]\d{2})[\s\-]+(?:лв|lv|€))`),
}

var (
	// \b is ASCII-only in RE2, so word edges are spelled out as non-letters.
	discountContext = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:вместо|стара цена|старата цена|предишна цена|редовна цена|преди|instead of|old price|regular price|before|was)(?:$|[^\p{L}])`)
	discountLead    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:вместо|стара цена|старата цена|предишна цена|редовна цена|преди|instead of|old price|regular price|before|was)\s*[:\-]?\s*$`)
)

// PriceMatch is one accepted price token found in a window line.
type PriceMatch struct {
	Value     float64
	Text      string
	Line      int // index into the retained lines
	AtLineEnd bool
	// OldTagged is set when the token is directly preceded by
	// "вместо", "old price" and similar wording.
	OldTagged bool
}

// PriceResult is the outcome of scanning an anchor's window.
type PriceResult struct {
	PriceMatch
	OldPrice *float64
}

// LocatePrice scans lines[i-2..i+2] for the anchor's current price and an
// optional old price. It reports false when no accepted price exists.
//
// The first untagged price in window order wins: the anchor line first,
// then the other window lines from top to bottom.
func LocatePrice(lines []string, i int) (PriceResult, bool) {
	if i < 0 || i >= len(lines) {
		return PriceResult{}, false
	}

	var matches []PriceMatch
	for _, idx := range windowOrder(len(lines), i, priceWindow) {
		matches = append(matches, findPrices(lines[idx], idx)...)
	}
	if len(matches) == 0 {
		return PriceResult{}, false
	}

	selected := -1
	for k, m := range matches {
		if !m.OldTagged {
			selected = k
			break
		}
	}
	if selected < 0 {
		selected = 0
	}

	result := PriceResult{PriceMatch: matches[selected]}
	for k, m := range matches {
		if k == selected || m.Value <= result.Value {
			continue
		}
		if discountContext.MatchString(lines[m.Line]) {
			old := m.Value
			result.OldPrice = &old
			break
		}
	}
	return result, true
}

// windowOrder lists the anchor first, then the rest of the clamped window
// in index order: i, i-2, i-1, i+1, i+2.
func windowOrder(n, i, radius int) []int {
	lo, hi := clampWindow(n, i, radius)
	order := make([]int, 0, hi-lo+1)
	order = append(order, i)
	for idx := lo; idx <= hi; idx++ {
		if idx != i {
			order = append(order, idx)
		}
	}
	return order
}

// findPrices returns the accepted price tokens of a single line, in pattern
// order. A number already claimed by an earlier pattern is not reported twice.
func findPrices(line string, lineIdx int) []PriceMatch {
	var (
		out     []PriceMatch
		claimed = make(map[int]struct{})
	)
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)

	for _, p := range pricePatterns {
		for _, loc := range p.FindAllStringSubmatchIndex(line, -1) {
			tokStart, tokEnd := loc[2], loc[3]
			numStart, numEnd := loc[4], loc[5]

			if _, ok := claimed[numStart]; ok {
				continue
			}
			if !numberBounded(line, numStart, numEnd) {
				continue
			}

			value, ok := parsePrice(line[numStart:numEnd])
			if !ok {
				continue
			}
			claimed[numStart] = struct{}{}

			out = append(out, PriceMatch{
				Value:     value,
				Text:      line[tokStart:tokEnd],
				Line:      lineIdx,
				AtLineEnd: tokEnd >= len(trimmed),
				OldTagged: discountLead.MatchString(line[:tokStart]),
			})
		}
	}
	return out
}

// numberBounded rejects numbers that are really the tail or head of a longer
// figure, e.g. the "299" of "1.299 лв".
func numberBounded(line string, start, end int) bool {
	if start > 0 {
		prev, size := utf8.DecodeLastRuneInString(line[:start])
		if unicode.IsDigit(prev) {
			return false
		}
		if prev == '.' || prev == ',' {
			before, _ := utf8.DecodeLastRuneInString(line[:start-size])
			if unicode.IsDigit(before) {
				return false
			}
		}
	}
	if end < len(line) {
		next, _ := utf8.DecodeRuneInString(line[end:])
		if unicode.IsDigit(next) {
			return false
		}
	}
	return true
}

// parsePrice reads a decimal with comma or dot separator and applies the
// extraction range (0.10, 500].
func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	if v <= minAcceptedPrice || v > maxAcceptedPrice {
		return 0, false
	}
	return v, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
