package maintenance

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cognicore/promoscan/pkg/promoscan/extract"
	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

// Cleaner reprocesses recorded runs after taxonomy or blacklist updates.
type Cleaner struct {
	Store    store.Store
	Taxonomy *extract.Taxonomy
	Quality  *extract.QualityFilter
	// Limit caps how many of the newest runs are visited. Zero visits all.
	Limit int
	// DryRun counts changes without writing them.
	DryRun bool
}

// Result summarizes the cleaning run.
type Result struct {
	Runs      int `json:"runs"`
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Errors    int `json:"errors"`
}

// Clean re-classifies stored products and drops those the current quality
// filter rejects. Runs whose products are unchanged are not rewritten.
func (c *Cleaner) Clean(ctx context.Context) (Result, error) {
	var res Result
	if c.Store == nil || c.Taxonomy == nil || c.Quality == nil {
		return res, eris.Wrap(internalerr.ErrInvalidConfig, "cleaner: invalid configuration")
	}

	limit := c.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}
	runs, err := c.Store.ListRuns(ctx, limit)
	if err != nil {
		return res, eris.Wrap(err, "cleaner: list runs")
	}

	for _, sum := range runs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Runs++

		run, err := c.Store.GetRun(ctx, sum.ID)
		if err != nil {
			res.Errors++
			zap.L().Warn("cleaner: load run", zap.String("run_id", sum.ID), zap.Error(err))
			continue
		}

		kept, updated, removed := c.process(run.Products)
		res.Processed += len(run.Products)
		if updated == 0 && removed == 0 {
			continue
		}

		if !c.DryRun {
			if err := c.Store.ReplaceProducts(ctx, run.ID, kept); err != nil {
				res.Errors++
				zap.L().Warn("cleaner: rewrite run", zap.String("run_id", run.ID), zap.Error(err))
				continue
			}
		}
		res.Updated += updated
		res.Removed += removed
	}

	zap.L().Info("clean complete",
		zap.Int("runs", res.Runs),
		zap.Int("processed", res.Processed),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
		zap.Bool("dry_run", c.DryRun),
	)
	return res, nil
}

func (c *Cleaner) process(products []store.Product) (kept []store.Product, updated, removed int) {
	kept = make([]store.Product, 0, len(products))
	for _, p := range products {
		cand := extract.Candidate{
			Name:                 p.Name,
			Price:                p.Price,
			ExtractionConfidence: p.Confidence,
		}
		if !c.Quality.Accept(cand) {
			removed++
			continue
		}
		if cat := c.Taxonomy.Classify(p.Name); cat != p.Category {
			p.Category = cat
			updated++
		}
		kept = append(kept, p)
	}
	return kept, updated, removed
}
