package extract

// Pipeline orchestrates the extraction flow:
// lines → noise filter → price/name per anchor → promotion context →
// category → confidence → dedupe → quality gate.
//
// A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	noise    *NoiseFilter
	taxonomy *Taxonomy
	quality  *QualityFilter
}

// NewPipeline creates an extraction pipeline. Nil components are replaced by
// built-in defaults: no extra noise patterns, an empty taxonomy and the
// default quality thresholds without a blacklist.
func NewPipeline(noise *NoiseFilter, taxonomy *Taxonomy, quality *QualityFilter) *Pipeline {
	if noise == nil {
		noise = NewNoiseFilter(nil)
	}
	if taxonomy == nil {
		taxonomy = NewTaxonomy("")
	}
	if quality == nil {
		quality = NewQualityFilter(DefaultMaxPrice, DefaultMinConfidence, nil)
	}
	return &Pipeline{
		noise:    noise,
		taxonomy: taxonomy,
		quality:  quality,
	}
}

// Stats counts what survived each stage of one Extract call.
type Stats struct {
	Lines    int
	Retained int
	Anchored int
	Unique   int
	Accepted int
}

// Taxonomy returns the classifier the pipeline uses.
func (p *Pipeline) Taxonomy() *Taxonomy {
	return p.taxonomy
}

// Extract runs brochure text through the full pipeline.
func (p *Pipeline) Extract(text string) []Candidate {
	cands, _ := p.ExtractWithStats(text)
	return cands
}

// ExtractWithStats is Extract plus per-stage counts.
func (p *Pipeline) ExtractWithStats(text string) ([]Candidate, Stats) {
	var stats Stats

	// 1-2. Lines and noise
	all := NormalizeLines(text)
	lines := p.noise.Filter(all)
	stats.Lines, stats.Retained = len(all), len(lines)

	// 3-7. One candidate per anchor line at most
	var cands []Candidate
	for i, line := range lines {
		price, ok := LocatePrice(lines, i)
		if !ok {
			continue
		}
		name, ok := ExtractName(line)
		if !ok {
			continue
		}

		promo := DetectPromotion(lines, i)
		cands = append(cands, Candidate{
			Name:                 name,
			OriginalLine:         line,
			LineIndex:            i,
			Price:                price.Value,
			OldPrice:             price.OldPrice,
			PriceText:            price.Text,
			HasDiscount:          price.OldPrice != nil,
			DiscountPercent:      promo.DiscountPercent,
			IsPromotional:        promo.IsPromotional,
			Category:             p.taxonomy.Classify(name),
			PromoStart:           promo.Start,
			PromoEnd:             promo.End,
			ExtractionConfidence: Score(name, price.Value, price.AtLineEnd),
		})
	}
	stats.Anchored = len(cands)

	// 8-9. Dedupe and quality gate
	cands = Dedupe(cands)
	stats.Unique = len(cands)
	cands = p.quality.Filter(cands)
	stats.Accepted = len(cands)

	return cands, stats
}
