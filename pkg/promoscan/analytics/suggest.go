package analytics

import "sort"

// Thresholds decide when a first word looks like boilerplate rather than a
// product noun: it opens many names and those names spread over categories.
type Thresholds struct {
	MinDF      int64
	DFPercent  float64
	CatEntropy float64
}

// DefaultThresholds returns the suggestion thresholds used by the CLI.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDF:      3,
		DFPercent:  5.0,
		CatEntropy: 0.5,
	}
}

// Suggestion is a candidate blacklist term.
type Suggestion struct {
	Word  string
	Stats WordStats
	Score float64
}

// Lister reports whether a term is already blacklisted.
type Lister interface {
	Contains(term string) bool
}

// SuggestBlacklist ranks first words that meet every threshold and are not
// yet listed. Highest score first.
func (a *Analyzer) SuggestBlacklist(th Thresholds, listed Lister) []Suggestion {
	var out []Suggestion
	for _, s := range a.FirstWordStats() {
		if listed != nil && listed.Contains(s.Word) {
			continue
		}
		if s.DF < th.MinDF || s.DFPercent <= th.DFPercent || s.CatEntropy <= th.CatEntropy {
			continue
		}
		out = append(out, Suggestion{
			Word:  s.Word,
			Stats: s,
			Score: (s.DFPercent/100.0 + s.CatEntropy) / 2.0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
