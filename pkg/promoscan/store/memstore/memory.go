package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot CLI runs.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]store.Run
	blacklist map[string]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:      make(map[string]store.Run),
		blacklist: make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a run. Run IDs are unique.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return eris.Wrap(internalerr.ErrInvalidInput, "memstore: run without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return eris.Wrapf(internalerr.ErrDuplicate, "memstore: run %s", r.ID)
	}
	cp := copyRun(r)
	for i := range cp.Products {
		cp.Products[i].RunID = r.ID
	}
	s.runs[r.ID] = cp
	return nil
}

// GetRun returns a run with its products.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, eris.Wrapf(internalerr.ErrNotFound, "memstore: run %s", id)
	}
	return copyRun(r), nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.RUnlock()

	sortNewestFirst(runs)
	if len(runs) > limit {
		runs = runs[:limit]
	}

	out := make([]store.RunSummary, len(runs))
	for i, r := range runs {
		out[i] = r.Summary()
	}
	return out, nil
}

// ProductsByCategory returns products with the given category across runs,
// newest run first, in extraction order within a run.
func (s *Store) ProductsByCategory(ctx context.Context, category string, limit int) ([]store.Product, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	s.mu.RUnlock()

	sortNewestFirst(runs)

	var out []store.Product
	for _, r := range runs {
		for _, p := range r.Products {
			if p.Category != category {
				continue
			}
			p.RunID = r.ID
			out = append(out, copyProduct(p))
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// ReplaceProducts swaps the product list of an existing run.
func (s *Store) ReplaceProducts(ctx context.Context, runID string, products []store.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return eris.Wrapf(internalerr.ErrNotFound, "memstore: run %s", runID)
	}
	r.Products = make([]store.Product, len(products))
	for i, p := range products {
		r.Products[i] = copyProduct(p)
		r.Products[i].RunID = runID
	}
	s.runs[runID] = r
	return nil
}

// BlacklistTerms returns stored terms, sorted.
func (s *Store) BlacklistTerms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.blacklist))
	for t := range s.blacklist {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// AddBlacklistTerms stores terms; existing ones are ignored.
func (s *Store) AddBlacklistTerms(ctx context.Context, terms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range terms {
		if t = normalizeTerm(t); t != "" {
			s.blacklist[t] = struct{}{}
		}
	}
	return nil
}

// RemoveBlacklistTerms deletes terms; missing ones are ignored.
func (s *Store) RemoveBlacklistTerms(ctx context.Context, terms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range terms {
		delete(s.blacklist, normalizeTerm(t))
	}
	return nil
}

func sortNewestFirst(runs []store.Run) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
}

func normalizeTerm(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

func copyRun(r store.Run) store.Run {
	cp := r
	if r.Products != nil {
		cp.Products = make([]store.Product, len(r.Products))
		for i, p := range r.Products {
			cp.Products[i] = copyProduct(p)
		}
	}
	return cp
}

func copyProduct(p store.Product) store.Product {
	cp := p
	if p.OldPrice != nil {
		v := *p.OldPrice
		cp.OldPrice = &v
	}
	if p.DiscountPercent != nil {
		v := *p.DiscountPercent
		cp.DiscountPercent = &v
	}
	if p.PromoStart != nil {
		v := *p.PromoStart
		cp.PromoStart = &v
	}
	if p.PromoEnd != nil {
		v := *p.PromoEnd
		cp.PromoEnd = &v
	}
	return cp
}
