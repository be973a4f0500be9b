package config

import (
	"github.com/rotisserie/eris"

	"github.com/cognicore/promoscan/pkg/promoscan/blacklist"
	"github.com/cognicore/promoscan/pkg/promoscan/extract"
)

// Loader loads the extraction data files and constructs pipeline components.
// An empty path selects the embedded default for that file.
type Loader struct {
	TaxonomyPath  string
	BlacklistPath string
	NoisePath     string

	// Zero values select extract.DefaultMaxPrice / extract.DefaultMinConfidence.
	MaxPrice      float64
	MinConfidence float64
}

// Components holds all loaded configuration components
type Components struct {
	Noise     *extract.NoiseFilter
	Taxonomy  *extract.Taxonomy
	Blacklist *blacklist.List
	Quality   *extract.QualityFilter
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Noise patterns
	var noise *Noise
	var err error
	if l.NoisePath != "" {
		noise, err = LoadNoise(l.NoisePath)
	} else {
		noise, err = DefaultNoise()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load noise patterns")
	}
	patterns, err := noise.Compile()
	if err != nil {
		return nil, err
	}
	comp.Noise = extract.NewNoiseFilter(patterns)

	// Taxonomy
	var tax *Taxonomy
	if l.TaxonomyPath != "" {
		tax, err = LoadTaxonomy(l.TaxonomyPath)
	} else {
		tax, err = DefaultTaxonomy()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load taxonomy")
	}
	comp.Taxonomy = extract.NewTaxonomy(tax.Fallback)
	for _, c := range tax.Categories {
		comp.Taxonomy.AddCategory(c.Name, c.Keywords)
	}

	// Blacklist
	var bl *Blacklist
	if l.BlacklistPath != "" {
		bl, err = LoadBlacklist(l.BlacklistPath)
	} else {
		bl, err = DefaultBlacklist()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load blacklist")
	}
	comp.Blacklist = blacklist.New(bl.Terms)

	maxPrice := l.MaxPrice
	if maxPrice <= 0 {
		maxPrice = extract.DefaultMaxPrice
	}
	minConf := l.MinConfidence
	if minConf <= 0 {
		minConf = extract.DefaultMinConfidence
	}
	comp.Quality = extract.NewQualityFilter(maxPrice, minConf, comp.Blacklist)

	return comp, nil
}

// Pipeline assembles an extraction pipeline from the loaded components.
func (c *Components) Pipeline() *extract.Pipeline {
	return extract.NewPipeline(c.Noise, c.Taxonomy, c.Quality)
}
