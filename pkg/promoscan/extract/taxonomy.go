package extract

import (
	"strings"
	"unicode"
)

// DefaultFallback is the label for names no category keyword matches.
const DefaultFallback = "Други"

// Category is one taxonomy label with its keyword triggers.
type Category struct {
	Name     string
	Keywords []string
}

// Taxonomy classifies product names by keyword membership. Categories are
// tested in insertion order; the first one with a whole-word hit wins.
type Taxonomy struct {
	categories []Category
	fallback   string
}

// NewTaxonomy creates an empty taxonomy. An empty fallback selects
// DefaultFallback.
func NewTaxonomy(fallback string) *Taxonomy {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}
	return &Taxonomy{fallback: fallback}
}

// AddCategory appends a category. Keywords are normalized the same way names
// are, so multi-word keywords match on word boundaries. Adding a name that
// already exists extends its keyword list in place.
func (t *Taxonomy) AddCategory(name string, keywords []string) {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = normalizeWords(kw); kw != "" {
			normalized = append(normalized, kw)
		}
	}

	for i := range t.categories {
		if t.categories[i].Name == name {
			t.categories[i].Keywords = append(t.categories[i].Keywords, normalized...)
			return
		}
	}
	t.categories = append(t.categories, Category{Name: name, Keywords: normalized})
}

// Classify returns the first matching category label, or the fallback.
func (t *Taxonomy) Classify(name string) string {
	padded := " " + normalizeWords(name) + " "
	if padded == "  " {
		return t.fallback
	}

	for _, cat := range t.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return cat.Name
			}
		}
	}
	return t.fallback
}

// Fallback returns the uncategorized label.
func (t *Taxonomy) Fallback() string {
	return t.fallback
}

// Labels lists every label Classify can return, fallback last.
func (t *Taxonomy) Labels() []string {
	labels := make([]string, 0, len(t.categories)+1)
	for _, cat := range t.categories {
		labels = append(labels, cat.Name)
	}
	return append(labels, t.fallback)
}

// Categories returns a copy of the ordered category list.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, cat := range t.categories {
		out[i] = Category{Name: cat.Name, Keywords: append([]string(nil), cat.Keywords...)}
	}
	return out
}

// normalizeWords lowercases s and replaces everything that is not a letter
// or digit with single spaces.
func normalizeWords(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
