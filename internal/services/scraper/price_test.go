package scraper

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantAmount   float64
		wantNoAmount bool
		wantCurrency string
	}{
		{
			name:         "rupee symbol with thousands comma",
			raw:          "₹2,149.00",
			wantAmount:   2149.00,
			wantCurrency: "INR",
		},
		{
			name:         "dollar with decimal",
			raw:          "$39.99",
			wantAmount:   39.99,
			wantCurrency: "USD",
		},
		{
			name:         "rupee abbreviation without decimals",
			raw:          "Rs. 349",
			wantAmount:   349,
			wantCurrency: "INR",
		},
		{
			name:         "euro with comma decimal",
			raw:          "€1.234,56",
			wantAmount:   1234.56,
			wantCurrency: "EUR",
		},
		{
			name:         "pound",
			raw:          "£12.50",
			wantAmount:   12.50,
			wantCurrency: "GBP",
		},
		{
			name:         "lone comma followed by two digits is a decimal",
			raw:          "EUR 899,95",
			wantAmount:   899.95,
			wantCurrency: "EUR",
		},
		{
			name:         "lone comma as thousands separator",
			raw:          "₹1,29,999",
			wantAmount:   129999,
			wantCurrency: "INR",
		},
		{
			name:         "iso code without symbol",
			raw:          "INR 599.00",
			wantAmount:   599.00,
			wantCurrency: "INR",
		},
		{
			name:         "no currency marker still parses amount",
			raw:          "1299.00",
			wantAmount:   1299.00,
			wantCurrency: "",
		},
		{
			name:         "empty input",
			raw:          "",
			wantNoAmount: true,
		},
		{
			name:         "text without digits",
			raw:          "Currently unavailable",
			wantNoAmount: true,
		},
		{
			name:         "currency symbol without digits keeps currency only",
			raw:          "₹ --",
			wantNoAmount: true,
			wantCurrency: "INR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParsePrice(tt.raw)

			if tt.wantNoAmount {
				if info.Amount != nil {
					t.Fatalf("Amount = %v, want nil", *info.Amount)
				}
			} else {
				if info.Amount == nil {
					t.Fatalf("Amount = nil, want %v", tt.wantAmount)
				}
				if *info.Amount != tt.wantAmount {
					t.Errorf("Amount = %v, want %v", *info.Amount, tt.wantAmount)
				}
			}

			if info.Currency != tt.wantCurrency {
				t.Errorf("Currency = %q, want %q", info.Currency, tt.wantCurrency)
			}
		})
	}
}

func TestParsePricePreservesRaw(t *testing.T) {
	raw := "₹2,149.00"
	info := ParsePrice(raw)
	if info.Raw != raw {
		t.Errorf("Raw = %q, want original text %q", info.Raw, raw)
	}
}
