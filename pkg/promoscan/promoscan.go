// Package promoscan turns OCR'd retail brochure text into structured
// product offers.
//
// ExtractProducts runs the default pipeline built from the embedded
// taxonomy, blacklist and noise data. Scanner adds run persistence and
// concurrent multi-brochure scans.
package promoscan

import (
	"sync"

	"github.com/cognicore/promoscan/pkg/promoscan/config"
	"github.com/cognicore/promoscan/pkg/promoscan/extract"
)

// Candidate is one extracted product offer.
type Candidate = extract.Candidate

var defaultComponents = sync.OnceValues(func() (*config.Components, error) {
	return (&config.Loader{}).Load()
})

// DefaultComponents returns the components built from the embedded data.
// The result is shared; do not edit its blacklist.
func DefaultComponents() (*config.Components, error) {
	return defaultComponents()
}

// ExtractProducts extracts accepted product candidates from brochure text
// using the default pipeline. The embedded data is covered by tests, so a
// load failure is a build defect and panics.
func ExtractProducts(text string) []Candidate {
	comp, err := defaultComponents()
	if err != nil {
		panic("promoscan: embedded extraction data: " + err.Error())
	}
	return comp.Pipeline().Extract(text)
}
