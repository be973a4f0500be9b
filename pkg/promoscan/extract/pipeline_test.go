package extract

import (
	"reflect"
	"strings"
	"testing"
)

const noisyBrochure = `СЕДМИЧНА БРОШУРА
стр. 1
Валидно от 01.10 до 07.10
Кашкавал Витоша 400г
вместо 9.90 лв сега 7.50 лв
Телевизор 189.99 лв
Прясно мляко 3% 1л 1.99 лв
Хляб пълнозърнест 650г 2.69 лв
Промоция -30% Кафе Lavazza 250г 5.49 лв
  • Паста за зъби 75 мл € 2.10
Пералня Bosch 799.00 лв
www.billa.bg
Всички права запазени ©
`

func newTestPipeline() *Pipeline {
	return NewPipeline(
		NewNoiseFilter(nil),
		newTestTaxonomy(),
		NewQualityFilter(DefaultMaxPrice, DefaultMinConfidence, prefixBlocker{"вместо", "стр", "валидно"}),
	)
}

func TestPipelineScenarioBread(t *testing.T) {
	out := newTestPipeline().Extract("Хляб пълнозърнест 650г 2.69 лв")

	if len(out) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %+v", len(out), out)
	}
	c := out[0]
	if !strings.Contains(c.Name, "Хляб пълнозърнест") {
		t.Errorf("Unexpected name %q", c.Name)
	}
	if !almostEqual(c.Price, 2.69) {
		t.Errorf("Expected price 2.69, got %v", c.Price)
	}
	if c.Category != "Хляб и тестени" {
		t.Errorf("Expected bread category, got %q", c.Category)
	}
	if c.HasDiscount || c.OldPrice != nil {
		t.Errorf("Expected no discount, got %+v", c)
	}
	if c.OriginalLine != "Хляб пълнозърнест 650г 2.69 лв" || c.PriceText != "2.69 лв" {
		t.Errorf("Provenance not kept: line=%q text=%q", c.OriginalLine, c.PriceText)
	}
}

func TestPipelineScenarioDiscount(t *testing.T) {
	out := newTestPipeline().Extract("Кашкавал Витоша 400г\nвместо 9.90 лв сега 7.50 лв")

	if len(out) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %+v", len(out), out)
	}
	c := out[0]
	if c.Name != "Кашкавал Витоша 400г" {
		t.Errorf("Unexpected name %q", c.Name)
	}
	if !almostEqual(c.Price, 7.50) {
		t.Errorf("Expected price 7.50, got %v", c.Price)
	}
	if c.OldPrice == nil || !almostEqual(*c.OldPrice, 9.90) {
		t.Errorf("Expected old price 9.90, got %v", c.OldPrice)
	}
	if !c.HasDiscount {
		t.Error("Expected HasDiscount")
	}
	if c.Category != "Млечни продукти" {
		t.Errorf("Expected dairy category, got %q", c.Category)
	}
}

func TestPipelineScenarioPageLabel(t *testing.T) {
	if out := newTestPipeline().Extract("стр. 3"); len(out) != 0 {
		t.Errorf("Page label should produce 0 candidates, got %+v", out)
	}
}

func TestPipelineScenarioPriceOutOfRange(t *testing.T) {
	if out := newTestPipeline().Extract("Телевизор 600 лв"); len(out) != 0 {
		t.Errorf("Price 600 should produce 0 candidates, got %+v", out)
	}
}

func TestPipelineEmptyText(t *testing.T) {
	out, stats := newTestPipeline().ExtractWithStats("")

	if len(out) != 0 {
		t.Errorf("Empty text should produce 0 candidates, got %d", len(out))
	}
	if stats != (Stats{}) {
		t.Errorf("Empty text should produce zero stats, got %+v", stats)
	}
}

func TestPipelineInvariants(t *testing.T) {
	p := newTestPipeline()
	out := p.Extract(noisyBrochure)

	if len(out) == 0 {
		t.Fatal("Expected candidates from the sample brochure")
	}

	labels := make(map[string]bool)
	for _, l := range p.Taxonomy().Labels() {
		labels[l] = true
	}

	for _, c := range out {
		if c.Price <= 0 || c.Price > DefaultMaxPrice {
			t.Errorf("%q: price %v outside (0, 200]", c.Name, c.Price)
		}
		if c.ExtractionConfidence < 0 || c.ExtractionConfidence > 1 {
			t.Errorf("%q: confidence %v outside [0, 1]", c.Name, c.ExtractionConfidence)
		}
		if !labels[c.Category] {
			t.Errorf("%q: category %q not in taxonomy", c.Name, c.Category)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("%q: %v", c.Name, err)
		}
	}
}

func TestPipelineSampleBrochure(t *testing.T) {
	out := newTestPipeline().Extract(noisyBrochure)

	byName := make(map[string]Candidate)
	for _, c := range out {
		byName[c.Name] = c
	}

	bread, ok := byName["Хляб пълнозърнест 650г"]
	if !ok {
		t.Fatalf("Bread not extracted: %+v", out)
	}
	if bread.PromoStart == nil || *bread.PromoStart != "01.10" || bread.PromoEnd == nil || *bread.PromoEnd != "07.10" {
		t.Errorf("Expected validity 01.10-07.10, got %s-%s", strOrNil(bread.PromoStart), strOrNil(bread.PromoEnd))
	}

	for _, c := range out {
		if almostEqual(c.Price, 799) {
			t.Errorf("%q: price 799 is outside the accepted range", c.Name)
		}
	}

	cheese, ok := byName["Кашкавал Витоша 400г"]
	if !ok {
		t.Fatalf("Cheese not extracted: %+v", out)
	}
	if !almostEqual(cheese.Price, 7.50) || cheese.OldPrice == nil || !almostEqual(*cheese.OldPrice, 9.90) {
		t.Errorf("Expected cheese 7.50 instead of 9.90, got %+v", cheese)
	}

	coffee, ok := byName["Промоция Кафе Lavazza 250г"]
	if !ok {
		t.Fatalf("Coffee not extracted: %+v", out)
	}
	if !coffee.IsPromotional {
		t.Error("Coffee line is promotional")
	}
	if coffee.DiscountPercent == nil || *coffee.DiscountPercent != 30 {
		t.Errorf("Expected 30%% discount, got %v", coffee.DiscountPercent)
	}

	paste, ok := byName["Паста за зъби 75 мл"]
	if !ok {
		t.Fatalf("Toothpaste not extracted: %+v", out)
	}
	if paste.Category != "Козметика и хигиена" || !almostEqual(paste.Price, 2.10) {
		t.Errorf("Unexpected toothpaste record %+v", paste)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	p := newTestPipeline()

	first := p.Extract(noisyBrochure)
	second := p.Extract(noisyBrochure)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Two runs differ:\n%+v\n%+v", first, second)
	}
}

func TestPipelineDuplicatedTextCollapses(t *testing.T) {
	text := "Хляб пълнозърнест 650г 2.69 лв\nКашкавал Витоша 400г 7.50 лв\nПрясно мляко 1л 1.99 лв"
	p := newTestPipeline()

	once := p.Extract(text)
	twice := p.Extract(text + "\n" + text)

	if len(once) != 3 {
		t.Fatalf("Expected 3 candidates, got %d: %+v", len(once), once)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Duplicated text should collapse to the same list:\n%+v\n%+v", once, twice)
	}
}

func TestPipelineNilComponents(t *testing.T) {
	out := NewPipeline(nil, nil, nil).Extract("Хляб 2.69 лв")

	if len(out) != 1 || out[0].Category != DefaultFallback {
		t.Errorf("Default pipeline should extract with fallback category, got %+v", out)
	}
}
