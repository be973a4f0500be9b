package extract

import (
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"
)

const baseConfidence = 0.5

var unitToken = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:кг|гр|г|мл|л|бр|оп|kg|gr|g|ml|cl|l|pcs|pc)(?:$|[^\p{L}])`)

// Score rates how much an extracted record looks like a real product line.
// Bonuses are additive and the result is clamped to [0, 1].
func Score(name string, price float64, atLineEnd bool) float64 {
	score := baseConfidence

	n := utf8.RuneCountInString(name)
	if n >= 5 {
		score += 0.2
	}
	if n >= 10 {
		score += 0.1
	}

	if unitToken.MatchString(name) {
		score += 0.2
	}

	if first, _ := utf8.DecodeRuneInString(name); unicode.IsUpper(first) {
		score += 0.1
	}

	if price >= 1 && price <= 50 {
		score += 0.2
	}

	if hasAtMostTwoDecimals(price) {
		score += 0.1
	}

	if atLineEnd {
		score += 0.1
	}

	return clamp01(score)
}

func hasAtMostTwoDecimals(v float64) bool {
	return math.Abs(v*100-math.Round(v*100)) < 1e-6
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
