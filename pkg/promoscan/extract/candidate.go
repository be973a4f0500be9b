package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Candidate is a product record recovered from brochure text.
type Candidate struct {
	Name                 string   `json:"name"`
	OriginalLine         string   `json:"original_line"`
	LineIndex            int      `json:"line_index"`
	Price                float64  `json:"price"`
	OldPrice             *float64 `json:"old_price"`
	PriceText            string   `json:"price_text"`
	HasDiscount          bool     `json:"has_discount"`
	DiscountPercent      *int     `json:"discount_percent,omitempty"`
	IsPromotional        bool     `json:"is_promotional"`
	Category             string   `json:"category"`
	PromoStart           *string  `json:"promo_start"`
	PromoEnd             *string  `json:"promo_end"`
	ExtractionConfidence float64  `json:"extraction_confidence"`
}

// Validate checks the invariants every emitted candidate must hold.
func (c *Candidate) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(c.Name)) < minNameLen {
		return errors.New("candidate name is too short")
	}

	if c.Price <= 0 {
		return errors.New("candidate price must be positive")
	}

	if c.ExtractionConfidence < 0 || c.ExtractionConfidence > 1 {
		return errors.New("candidate confidence out of range")
	}

	if c.Category == "" {
		return errors.New("candidate category is required")
	}

	if c.HasDiscount != (c.OldPrice != nil) {
		return errors.New("candidate discount flag disagrees with old price")
	}

	return nil
}
