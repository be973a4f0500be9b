package promoscan

import (
	"context"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/promoscan/pkg/promoscan/analytics"
	"github.com/cognicore/promoscan/pkg/promoscan/blacklist"
	"github.com/cognicore/promoscan/pkg/promoscan/config"
	"github.com/cognicore/promoscan/pkg/promoscan/extract"
	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
	"github.com/cognicore/promoscan/pkg/promoscan/maintenance"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

// DefaultConcurrency bounds ScanAll when Options.Concurrency is not set.
const DefaultConcurrency = 4

// Brochure is one text to scan.
type Brochure struct {
	Source   string
	Retailer string
	Text     string
}

// Result is the outcome of scanning one brochure.
type Result struct {
	RunID    string              `json:"run_id"`
	Source   string              `json:"source"`
	Retailer string              `json:"retailer,omitempty"`
	Products []extract.Candidate `json:"products"`
	Stats    extract.Stats       `json:"stats"`
}

// Options configures a Scanner
type Options struct {
	// Store records each scan as a run and supplies stored blacklist terms.
	// Nil disables both.
	Store store.Store
	// DryRun keeps the store read-only: runs are not recorded.
	DryRun bool
	// Components come from config.Loader. Nil selects the embedded defaults.
	Components  *config.Components
	Concurrency int
	Now         func() time.Time
}

// Scanner runs the extraction pipeline over brochures and records runs.
type Scanner struct {
	store       store.Store
	dryRun      bool
	pipeline    *extract.Pipeline
	taxonomy    *extract.Taxonomy
	quality     *extract.QualityFilter
	blacklist   *blacklist.List
	concurrency int
	now         func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a Scanner with the given dependencies
func New(opts Options) (*Scanner, error) {
	comp := opts.Components
	if comp == nil {
		var err error
		comp, err = (&config.Loader{}).Load()
		if err != nil {
			return nil, eris.Wrap(err, "promoscan: load default components")
		}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scanner{
		store:       opts.Store,
		dryRun:      opts.DryRun,
		pipeline:    comp.Pipeline(),
		taxonomy:    comp.Taxonomy,
		quality:     comp.Quality,
		blacklist:   comp.Blacklist,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the store.
func (s *Scanner) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Classify returns the category label for a product name.
func (s *Scanner) Classify(name string) string {
	return s.taxonomy.Classify(name)
}

// Scan extracts products from one brochure and records the run.
func (s *Scanner) Scan(ctx context.Context, b Brochure) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	products, stats := s.pipeline.ExtractWithStats(b.Text)
	now := s.now()
	res := Result{
		RunID:    s.newID(now),
		Source:   b.Source,
		Retailer: b.Retailer,
		Products: products,
		Stats:    stats,
	}

	if s.store != nil && !s.dryRun {
		run := store.Run{
			ID:        res.RunID,
			Source:    b.Source,
			Retailer:  b.Retailer,
			CreatedAt: now,
			Products:  store.FromCandidates(products),
		}
		if err := s.store.SaveRun(ctx, run); err != nil {
			return Result{}, eris.Wrapf(err, "promoscan: save run for %s", b.Source)
		}
	}

	zap.L().Debug("brochure scanned",
		zap.String("run_id", res.RunID),
		zap.String("source", b.Source),
		zap.Int("lines", stats.Lines),
		zap.Int("anchored", stats.Anchored),
		zap.Int("products", len(products)),
	)
	return res, nil
}

// ScanAll scans brochures concurrently. A brochure that fails is logged and
// skipped; results keep input order. Cancelling ctx stops scheduling and
// returns the results gathered so far with the context error.
func (s *Scanner) ScanAll(ctx context.Context, brochures []Brochure) ([]Result, error) {
	if len(brochures) == 0 {
		return nil, nil
	}

	zap.L().Info("scanning brochures",
		zap.Int("brochures", len(brochures)),
		zap.Int("concurrency", s.concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	results := make([]*Result, len(brochures))
	var succeeded, failed atomic.Int64

	for i, b := range brochures {
		if gctx.Err() != nil {
			break
		}
		i, b := i, b
		g.Go(func() error {
			res, err := s.Scan(gctx, b)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				zap.L().Error("brochure scan failed",
					zap.String("source", b.Source), zap.Error(err))
				return nil // don't abort batch on individual failure
			}
			succeeded.Add(1)
			results[i] = &res
			return nil
		})
	}

	waitErr := g.Wait()

	out := make([]Result, 0, len(brochures))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)

	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		return out, eris.Wrap(waitErr, "promoscan: scan batch")
	}
	return out, nil
}

// Runs lists recorded runs, newest first.
func (s *Scanner) Runs(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if s.store == nil {
		return nil, eris.Wrap(internalerr.ErrStoreUnavailable, "promoscan: no store configured")
	}
	return s.store.ListRuns(ctx, limit)
}

// Run returns one recorded run.
func (s *Scanner) Run(ctx context.Context, id string) (store.Run, error) {
	if s.store == nil {
		return store.Run{}, eris.Wrap(internalerr.ErrStoreUnavailable, "promoscan: no store configured")
	}
	return s.store.GetRun(ctx, id)
}

// ProductsByCategory returns recorded products of one category.
func (s *Scanner) ProductsByCategory(ctx context.Context, category string, limit int) ([]store.Product, error) {
	if s.store == nil {
		return nil, eris.Wrap(internalerr.ErrStoreUnavailable, "promoscan: no store configured")
	}
	return s.store.ProductsByCategory(ctx, category, limit)
}

// Analyze aggregates the newest recorded runs. A non-positive limit uses
// store.DefaultListLimit.
func (s *Scanner) Analyze(ctx context.Context, limit int) (*analytics.Analyzer, error) {
	if s.store == nil {
		return nil, eris.Wrap(internalerr.ErrStoreUnavailable, "promoscan: no store configured")
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, eris.Wrap(err, "promoscan: list runs")
	}

	a := analytics.NewAnalyzer()
	for _, sum := range runs {
		run, err := s.store.GetRun(ctx, sum.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "promoscan: load run %s", sum.ID)
		}
		a.Process(run)
	}
	return a, nil
}

// SuggestBlacklist proposes terms missing from the active blacklist, based
// on the newest recorded runs.
func (s *Scanner) SuggestBlacklist(ctx context.Context, limit int, th analytics.Thresholds) ([]analytics.Suggestion, error) {
	a, err := s.Analyze(ctx, limit)
	if err != nil {
		return nil, err
	}
	var listed analytics.Lister
	if s.blacklist != nil {
		listed = s.blacklist
	}
	return a.SuggestBlacklist(th, listed), nil
}

// Clean re-classifies recorded products with the current taxonomy and drops
// those the current quality filter rejects. With dryRun, or on a DryRun
// scanner, nothing is written.
func (s *Scanner) Clean(ctx context.Context, limit int, dryRun bool) (maintenance.Result, error) {
	if s.store == nil {
		return maintenance.Result{}, eris.Wrap(internalerr.ErrStoreUnavailable, "promoscan: no store configured")
	}
	c := maintenance.Cleaner{
		Store:    s.store,
		Taxonomy: s.taxonomy,
		Quality:  s.quality,
		Limit:    limit,
		DryRun:   dryRun || s.dryRun,
	}
	return c.Clean(ctx)
}

// SyncBlacklist adds the terms recorded in the store to the active
// blacklist, so user edits apply to later scans.
func (s *Scanner) SyncBlacklist(ctx context.Context) error {
	if s.store == nil || s.blacklist == nil {
		return nil
	}
	terms, err := s.store.BlacklistTerms(ctx)
	if err != nil {
		return eris.Wrap(err, "promoscan: load stored blacklist")
	}
	for _, t := range terms {
		s.blacklist.Add(t)
	}
	zap.L().Debug("blacklist synced", zap.Int("stored_terms", len(terms)), zap.Int("total", s.blacklist.Len()))
	return nil
}

// BlacklistTerms returns the active blacklist: configured terms plus any
// synced from the store.
func (s *Scanner) BlacklistTerms() []string {
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.All()
}

// newID returns a ULID; MonotonicEntropy is not safe for concurrent use.
func (s *Scanner) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
