package extract

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLocatePriceSameLine(t *testing.T) {
	lines := []string{"Хляб пълнозърнест 650г 2.69 лв"}

	res, ok := LocatePrice(lines, 0)
	if !ok {
		t.Fatal("Expected a price on the anchor line")
	}
	if !almostEqual(res.Value, 2.69) {
		t.Errorf("Expected price 2.69, got %v", res.Value)
	}
	if res.Text != "2.69 лв" {
		t.Errorf("Expected price text %q, got %q", "2.69 лв", res.Text)
	}
	if !res.AtLineEnd {
		t.Error("Price token ends the line")
	}
	if res.OldPrice != nil {
		t.Errorf("No discount wording, old price should be nil, got %v", *res.OldPrice)
	}
}

func TestLocatePriceOldPriceOnNextLine(t *testing.T) {
	lines := []string{"Кашкавал Витоша 400г", "вместо 9.90 лв сега 7.50 лв"}

	res, ok := LocatePrice(lines, 0)
	if !ok {
		t.Fatal("Expected a price in the window")
	}
	if !almostEqual(res.Value, 7.50) {
		t.Errorf("Expected current price 7.50, got %v", res.Value)
	}
	if res.OldPrice == nil || !almostEqual(*res.OldPrice, 9.90) {
		t.Fatalf("Expected old price 9.90, got %v", res.OldPrice)
	}
	if res.Line != 1 {
		t.Errorf("Expected price from line 1, got %d", res.Line)
	}
}

func TestLocatePriceFormats(t *testing.T) {
	tests := []struct {
		line  string
		value float64
		text  string
	}{
		{"Олио 1л 3,49лв.", 3.49, "3,49лв."},
		{"Coffee € 4.20", 4.20, "€ 4.20"},
		{"Бира 0.5л 1.29 BGN", 1.29, "1.29 BGN"},
		{"Кафе цена: 5.99", 5.99, "цена: 5.99"},
		{"Сирене 500 лв", 500, "500 лв"},
		{"Банани 2.49 лв/кг", 2.49, "2.49 лв"},
	}

	for _, tt := range tests {
		res, ok := LocatePrice([]string{tt.line}, 0)
		if !ok {
			t.Errorf("%q: expected a price", tt.line)
			continue
		}
		if !almostEqual(res.Value, tt.value) {
			t.Errorf("%q: price = %v, want %v", tt.line, res.Value, tt.value)
		}
		if res.Text != tt.text {
			t.Errorf("%q: text = %q, want %q", tt.line, res.Text, tt.text)
		}
	}
}

func TestLocatePriceRejectsOutOfRange(t *testing.T) {
	for _, line := range []string{
		"Телевизор 600 лв",
		"Дъвка 0.10 лв",
		"Пералня 500,50 лв",
		"Телевизор 1.299 лв",
		"Кашкавал Витоша 400г",
	} {
		if res, ok := LocatePrice([]string{line}, 0); ok {
			t.Errorf("%q: expected no price, got %v", line, res.Value)
		}
	}
}

func TestLocatePricePrefersAnchorLine(t *testing.T) {
	lines := []string{"Мляко 1.99 лв", "Йогурт 0.89 лв"}

	res, ok := LocatePrice(lines, 1)
	if !ok || !almostEqual(res.Value, 0.89) {
		t.Errorf("Expected anchor price 0.89, got %v (ok=%v)", res.Value, ok)
	}
}

func TestLocatePriceNeighborsInIndexOrder(t *testing.T) {
	lines := []string{"Сирене Саяна 5.00 лв", "Банани Еквадор", "Портокали 3.00 лв"}

	res, ok := LocatePrice(lines, 1)
	if !ok {
		t.Fatal("Expected a price in the window")
	}
	if !almostEqual(res.Value, 5.00) || res.Line != 0 {
		t.Errorf("Expected 5.00 from the line above, got %v from line %d", res.Value, res.Line)
	}
}

func TestLocatePriceDiscountWordBoundary(t *testing.T) {
	lines := []string{"Кафе Lavazza 5.49 лв", "Предимство 6.99 лв"}

	res, ok := LocatePrice(lines, 0)
	if !ok {
		t.Fatal("Expected a price")
	}
	if res.OldPrice != nil {
		t.Errorf("Предимство is not discount wording, got old price %v", *res.OldPrice)
	}

	res, ok = LocatePrice([]string{"Кафе Lavazza 5.49 лв", "преди 6.99 лв"}, 0)
	if !ok || res.OldPrice == nil || !almostEqual(*res.OldPrice, 6.99) {
		t.Errorf("Expected old price 6.99 after преди, got %+v (ok=%v)", res, ok)
	}
}

func TestLocatePriceWindowBounds(t *testing.T) {
	lines := []string{"Ябълки", "Червени", "Български", "Круши 3.20 лв"}

	if res, ok := LocatePrice(lines, 0); ok {
		t.Errorf("Price three lines away is outside the window, got %v", res.Value)
	}

	res, ok := LocatePrice(lines, 1)
	if !ok || !almostEqual(res.Value, 3.20) {
		t.Errorf("Price two lines away is inside the window, got %v (ok=%v)", res.Value, ok)
	}

	if _, ok := LocatePrice(lines, 4); ok {
		t.Error("Out of range anchor should report no price")
	}
}

func TestLocatePriceOldAndNewLabels(t *testing.T) {
	lines := []string{"Олио стара цена 4.99 лв нова цена 3.49 лв"}

	res, ok := LocatePrice(lines, 0)
	if !ok {
		t.Fatal("Expected a price")
	}
	if !almostEqual(res.Value, 3.49) {
		t.Errorf("Expected new price 3.49, got %v", res.Value)
	}
	if res.OldPrice == nil || !almostEqual(*res.OldPrice, 4.99) {
		t.Errorf("Expected old price 4.99, got %v", res.OldPrice)
	}
}

func TestLocatePriceOnlyTaggedPrice(t *testing.T) {
	res, ok := LocatePrice([]string{"Сирене вместо 12.90 лв"}, 0)
	if !ok || !almostEqual(res.Value, 12.90) {
		t.Errorf("A lone tagged price is still the price, got %v (ok=%v)", res.Value, ok)
	}
	if res.OldPrice != nil {
		t.Errorf("Old price must differ from the selected price, got %v", *res.OldPrice)
	}
}

func TestLocatePriceLargerNeighborWithoutDiscountWording(t *testing.T) {
	lines := []string{"Сирене 5.99 лв", "Кашкавал 12.99 лв"}

	res, ok := LocatePrice(lines, 0)
	if !ok {
		t.Fatal("Expected a price")
	}
	if res.OldPrice != nil {
		t.Errorf("Neighbor price without discount wording is not an old price, got %v", *res.OldPrice)
	}
}
