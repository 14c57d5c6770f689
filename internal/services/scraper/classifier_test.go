package scraper

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		breadcrumbs []string
		title       string
		wantCat     string
		wantSub     string
	}{
		{
			name:    "running shoe wins over generic shoe",
			title:   "Nike Revolution 6 Running Shoes for Men",
			wantCat: "sports",
			wantSub: "running",
		},
		{
			name:    "generic shoe",
			title:   "Leather Formal Shoes",
			wantCat: "fashion",
			wantSub: "shoes",
		},
		{
			name:        "breadcrumbs contribute to matching",
			breadcrumbs: []string{"Electronics", "Headphones"},
			title:       "boAt Rockerz 450",
			wantCat:     "electronics",
			wantSub:     "audio",
		},
		{
			name:    "smartwatch",
			title:   "Noise ColorFit Pro 4 Smart Watch",
			wantCat: "electronics",
			wantSub: "wearables",
		},
		{
			name:    "kitchen appliance",
			title:   "Philips Air Fryer HD9200/90",
			wantCat: "home",
			wantSub: "kitchen",
		},
		{
			name:    "unmatched defaults to other",
			title:   "Mystery Item",
			wantCat: "other",
			wantSub: "other",
		},
		{
			name:    "empty input defaults to other",
			wantCat: "other",
			wantSub: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := Classify(tt.breadcrumbs, tt.title)
			if cat != tt.wantCat || sub != tt.wantSub {
				t.Errorf("Classify() = (%q, %q), want (%q, %q)", cat, sub, tt.wantCat, tt.wantSub)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	breadcrumbs := []string{"Sports", "Running"}
	title := "Adidas Running Shoes"

	cat1, sub1 := Classify(breadcrumbs, title)
	for i := 0; i < 10; i++ {
		cat2, sub2 := Classify(breadcrumbs, title)
		if cat1 != cat2 || sub1 != sub2 {
			t.Fatalf("classification changed across runs: (%q, %q) vs (%q, %q)", cat1, sub1, cat2, sub2)
		}
	}
}

func TestValidCategory(t *testing.T) {
	tests := []struct {
		category    string
		subcategory string
		want        bool
	}{
		{"electronics", "audio", true},
		{"electronics", "", true},
		{"electronics", "shoes", false},
		{"fashion", "shoes", true},
		{"other", "other", true},
		{"gadgets", "audio", false},
		{"", "", false},
	}

	for _, tt := range tests {
		if got := ValidCategory(tt.category, tt.subcategory); got != tt.want {
			t.Errorf("ValidCategory(%q, %q) = %v, want %v", tt.category, tt.subcategory, got, tt.want)
		}
	}
}
