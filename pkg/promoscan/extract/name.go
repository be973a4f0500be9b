package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minNameLen = 3

var (
	priceLabel    = regexp.MustCompile(`(?i)(?:цена|price)\s*[:\-]?\s*`)
	percentToken  = regexp.MustCompile(`[-−–]\s*\d{1,2}\s*%`)
	listMarker    = regexp.MustCompile(`^(?:[•·▪►\-*–—]+|\(?\d{1,3}[.)]|[a-zа-я][.)])\s+`)
	disallowed    = regexp.MustCompile(`[^\p{L}\p{N}_\s.\-]+`)
	spaceRun      = regexp.MustCompile(`\s+`)
	numericOnly   = regexp.MustCompile(`^[\d\s.,\-]+$`)
	edgePunctuate = ".- "
)

// ExtractName cleans the anchor line into a product name. It reports false
// when fewer than three characters survive or the remainder is only a number.
func ExtractName(line string) (string, bool) {
	name := line
	for _, p := range pricePatterns {
		name = p.ReplaceAllString(name, " ")
	}
	name = priceLabel.ReplaceAllString(name, " ")
	name = percentToken.ReplaceAllString(name, " ")

	name = strings.TrimSpace(name)
	for {
		stripped := listMarker.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = strings.TrimSpace(stripped)
	}

	name = disallowed.ReplaceAllString(name, " ")
	name = spaceRun.ReplaceAllString(name, " ")
	name = strings.Trim(name, edgePunctuate)

	if utf8.RuneCountInString(name) < minNameLen || numericOnly.MatchString(name) {
		return "", false
	}
	return name, true
}
