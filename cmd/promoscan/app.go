package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/cognicore/promoscan/internal/settings"
	"github.com/cognicore/promoscan/pkg/promoscan"
	"github.com/cognicore/promoscan/pkg/promoscan/config"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
	"github.com/cognicore/promoscan/pkg/promoscan/store/memstore"
	"github.com/cognicore/promoscan/pkg/promoscan/store/sqlite"
)

// initStore opens the configured run store.
func initStore(ctx context.Context, c *settings.Config) (store.Store, error) {
	switch c.Store.Driver {
	case "memory":
		return memstore.New(), nil
	default:
		st, err := sqlite.OpenSQLite(ctx, c.Store.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "open store %s", c.Store.Path)
		}
		return st, nil
	}
}

// storeExists reports whether there is a store worth reading without
// creating one as a side effect.
func storeExists(c *settings.Config) bool {
	if c.Store.Driver != "sqlite" {
		return false
	}
	_, err := os.Stat(c.Store.Path)
	return err == nil
}

func loadComponents(c *settings.Config) (*config.Components, error) {
	loader := config.Loader{
		TaxonomyPath:  c.Data.TaxonomyPath,
		BlacklistPath: c.Data.BlacklistPath,
		NoisePath:     c.Data.NoisePath,
		MaxPrice:      c.Quality.MaxPrice,
		MinConfidence: c.Quality.MinConfidence,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load extraction data")
	}
	return comp, nil
}

// newScanner builds a scanner from settings. With save the store records
// runs; otherwise an existing store is only read for blacklist terms.
func newScanner(ctx context.Context, c *settings.Config, save bool) (*promoscan.Scanner, error) {
	comp, err := loadComponents(c)
	if err != nil {
		return nil, err
	}

	var st store.Store
	if save || storeExists(c) {
		if st, err = initStore(ctx, c); err != nil {
			return nil, err
		}
	}

	sc, err := promoscan.New(promoscan.Options{
		Store:       st,
		DryRun:      !save,
		Components:  comp,
		Concurrency: c.Batch.MaxConcurrent,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, err
	}
	if err := sc.SyncBlacklist(ctx); err != nil {
		sc.Close()
		return nil, err
	}
	return sc, nil
}
