package store

import (
	"context"
	"time"

	"github.com/cognicore/promoscan/pkg/promoscan/extract"
)

// Store persists extraction runs and the user-edited blacklist.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	ProductsByCategory(ctx context.Context, category string, limit int) ([]Product, error)
	ReplaceProducts(ctx context.Context, runID string, products []Product) error

	// Blacklist terms added on top of the configured list
	BlacklistTerms(ctx context.Context) ([]string, error)
	AddBlacklistTerms(ctx context.Context, terms []string) error
	RemoveBlacklistTerms(ctx context.Context, terms []string) error
}

// Run is one extraction over one brochure.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Retailer  string    `json:"retailer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Products  []Product `json:"products"`
}

// RunSummary is a Run without its products.
type RunSummary struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Retailer     string    `json:"retailer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ProductCount int       `json:"product_count"`
}

// Product is the persisted form of an accepted candidate. Name and Category
// are stored as product_name and product_category.
type Product struct {
	RunID           string   `json:"run_id,omitempty"`
	Name            string   `json:"product_name"`
	Category        string   `json:"product_category"`
	Price           float64  `json:"price"`
	OldPrice        *float64 `json:"old_price"`
	DiscountPercent *int     `json:"discount_percent,omitempty"`
	IsPromotional   bool     `json:"is_promotional"`
	PromoStart      *string  `json:"promo_start"`
	PromoEnd        *string  `json:"promo_end"`
	Confidence      float64  `json:"confidence"`
	LineIndex       int      `json:"line_index"`
	OriginalLine    string   `json:"original_line"`
}

// FromCandidate maps a pipeline candidate to its stored form.
func FromCandidate(c extract.Candidate) Product {
	return Product{
		Name:            c.Name,
		Category:        c.Category,
		Price:           c.Price,
		OldPrice:        c.OldPrice,
		DiscountPercent: c.DiscountPercent,
		IsPromotional:   c.IsPromotional,
		PromoStart:      c.PromoStart,
		PromoEnd:        c.PromoEnd,
		Confidence:      c.ExtractionConfidence,
		LineIndex:       c.LineIndex,
		OriginalLine:    c.OriginalLine,
	}
}

// FromCandidates maps a slice of candidates, preserving order.
func FromCandidates(cands []extract.Candidate) []Product {
	out := make([]Product, len(cands))
	for i, c := range cands {
		out[i] = FromCandidate(c)
	}
	return out
}

// Summary returns the run without products.
func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		Source:       r.Source,
		Retailer:     r.Retailer,
		CreatedAt:    r.CreatedAt,
		ProductCount: len(r.Products),
	}
}

// DefaultListLimit applies when a non-positive limit is passed.
const DefaultListLimit = 50
