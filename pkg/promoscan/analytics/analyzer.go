package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

// Analyzer aggregates stored products into per-category figures and
// first-word statistics.
type Analyzer struct {
	runs      int64
	products  int64
	cats      map[string]*catAcc
	firstDF   map[string]int64
	firstCats map[string]map[string]int64
}

type catAcc struct {
	count       int64
	promotional int64
	discounted  int64
	priceSum    float64
	minPrice    float64
	maxPrice    float64
	pctSum      int64
	pctCount    int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		cats:      make(map[string]*catAcc),
		firstDF:   make(map[string]int64),
		firstCats: make(map[string]map[string]int64),
	}
}

// Process consumes one run.
func (a *Analyzer) Process(run store.Run) {
	a.runs++
	for _, p := range run.Products {
		a.products++

		acc := a.cats[p.Category]
		if acc == nil {
			acc = &catAcc{minPrice: p.Price, maxPrice: p.Price}
			a.cats[p.Category] = acc
		}
		acc.count++
		acc.priceSum += p.Price
		acc.minPrice = math.Min(acc.minPrice, p.Price)
		acc.maxPrice = math.Max(acc.maxPrice, p.Price)
		if p.IsPromotional {
			acc.promotional++
		}
		if p.OldPrice != nil {
			acc.discounted++
		}
		if p.DiscountPercent != nil {
			acc.pctSum += int64(*p.DiscountPercent)
			acc.pctCount++
		}

		if w := firstWord(p.Name); w != "" {
			a.firstDF[w]++
			if a.firstCats[w] == nil {
				a.firstCats[w] = make(map[string]int64)
			}
			a.firstCats[w][p.Category]++
		}
	}
}

// CategoryStats summarizes the products of one category.
type CategoryStats struct {
	Category        string  `json:"category"`
	Products        int64   `json:"products"`
	Promotional     int64   `json:"promotional"`
	Discounted      int64   `json:"discounted"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	AvgPrice        float64 `json:"avg_price"`
	AvgDiscountPct  float64 `json:"avg_discount_percent"`
	ShareOfProducts float64 `json:"share"`
}

// Report is the aggregate over every processed run.
type Report struct {
	Runs       int64           `json:"runs"`
	Products   int64           `json:"products"`
	Categories []CategoryStats `json:"categories"`
}

// Report returns category figures, largest category first.
func (a *Analyzer) Report() Report {
	r := Report{Runs: a.runs, Products: a.products}
	for name, acc := range a.cats {
		cs := CategoryStats{
			Category:    name,
			Products:    acc.count,
			Promotional: acc.promotional,
			Discounted:  acc.discounted,
			MinPrice:    acc.minPrice,
			MaxPrice:    acc.maxPrice,
			AvgPrice:    round2(acc.priceSum / float64(acc.count)),
		}
		if acc.pctCount > 0 {
			cs.AvgDiscountPct = round2(float64(acc.pctSum) / float64(acc.pctCount))
		}
		if a.products > 0 {
			cs.ShareOfProducts = round2(float64(acc.count) / float64(a.products))
		}
		r.Categories = append(r.Categories, cs)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if r.Categories[i].Products != r.Categories[j].Products {
			return r.Categories[i].Products > r.Categories[j].Products
		}
		return r.Categories[i].Category < r.Categories[j].Category
	})
	return r
}

// WordStats describes how a word is used as the first word of product names.
type WordStats struct {
	Word       string
	DF         int64
	DFPercent  float64
	CatEntropy float64
}

// FirstWordStats returns statistics for every observed first word.
func (a *Analyzer) FirstWordStats() []WordStats {
	out := make([]WordStats, 0, len(a.firstDF))
	for w, df := range a.firstDF {
		out = append(out, WordStats{
			Word:       w,
			DF:         df,
			DFPercent:  100 * float64(df) / float64(a.products),
			CatEntropy: entropy(a.firstCats[w]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

func firstWord(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	for _, r := range fields[0] {
		if !unicode.IsLetter(r) {
			return ""
		}
	}
	return fields[0]
}

func entropy(counts map[string]int64) float64 {
	if len(counts) == 0 {
		return 0
	}
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(counts))+1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
