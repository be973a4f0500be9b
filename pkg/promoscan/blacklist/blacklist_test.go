package blacklist

import (
	"testing"
)

func TestListBlocks(t *testing.T) {
	l := New([]string{"стр", "Реклама", "виж повече", "page"})

	tests := []struct {
		name string
		want bool
	}{
		{"стр", true},
		{"реклама", true},
		{"реклама на седмицата", true},
		{"page 4", true},
		{"виж повече", true},
		{"виж повече оферти", true},
		{"страница", false},
		{"рекламна чанта", false},
		{"кашкавал витоша", false},
		{"виж", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := l.Blocks(tt.name); got != tt.want {
			t.Errorf("Blocks(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestListAddRemove(t *testing.T) {
	l := New([]string{"тел"})

	l.Add("  Адрес ")
	if !l.Contains("адрес") {
		t.Error("'адрес' should be listed after adding")
	}
	if !l.Blocks("адрес на магазина") {
		t.Error("name starting with added term should be blocked")
	}

	l.Remove("АДРЕС")
	if l.Contains("адрес") {
		t.Error("'адрес' should not be listed after removing")
	}

	l.Add("   ")
	if l.Len() != 1 {
		t.Errorf("Blank terms must be ignored, got %d terms", l.Len())
	}
}

func TestListAllSorted(t *testing.T) {
	l := New([]string{"в", "на", "от", "за"})

	all := l.All()
	want := []string{"в", "за", "на", "от"}

	if len(all) != len(want) {
		t.Fatalf("Expected %d terms, got %d", len(want), len(all))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, all[i], want[i])
		}
	}
}
