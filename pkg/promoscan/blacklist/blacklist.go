package blacklist

import (
	"sort"
	"strings"
	"sync"
)

// List holds stop-words that must not open a product name: prepositions,
// page labels, advertising and contact words. A List is safe for concurrent
// use, so it can be edited while pipelines read it.
type List struct {
	mu    sync.RWMutex
	terms map[string]struct{}
}

// New creates a list from the given terms. Terms are lowercased and trimmed.
func New(terms []string) *List {
	l := &List{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		l.Add(t)
	}
	return l
}

// Blocks reports whether name equals a term or starts with a term followed
// by a space. name is expected in lowercase.
func (l *List) Blocks(name string) bool {
	name = strings.TrimSpace(name)
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.terms[name]; ok {
		return true
	}
	first, _, found := strings.Cut(name, " ")
	if !found {
		return false
	}
	_, ok := l.terms[first]
	if ok {
		return true
	}
	// multi-word terms such as "виж повече"
	for t := range l.terms {
		if strings.Contains(t, " ") && strings.HasPrefix(name, t+" ") {
			return true
		}
	}
	return false
}

// Contains reports whether term is on the list.
func (l *List) Contains(term string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.terms[normalize(term)]
	return ok
}

// Add puts a term on the list.
func (l *List) Add(term string) {
	if term = normalize(term); term != "" {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.terms[term] = struct{}{}
	}
}

// Remove takes a term off the list.
func (l *List) Remove(term string) {
	term = normalize(term)
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.terms, term)
}

// All returns every term, sorted.
func (l *List) All() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]string, 0, len(l.terms))
	for t := range l.terms {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of terms.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.terms)
}

func normalize(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
