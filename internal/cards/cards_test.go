package cards

import (
	"testing"
	"time"
)

func TestBrandOf(t *testing.T) {
	tests := []struct {
		number string
		want   string
		ok     bool
	}{
		{"4929000000006", "Visa", true},
		{"4929 0000 0000 6000", "Visa", true},
		{"5404000000000001", "Mastercard", true},
		{"6759000000005", "Maestro", true},
		{"374200000000004", "American Express", true},
		{"36000000000008", "Diners Club", true},
		{"3569990000000009", "JCB", true},
		{"1234", "", false},
		{"", "", false},
		{"4929-0000-abcd-6000", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			b, ok := BrandOf(tt.number)
			if ok != tt.ok || b.Name != tt.want {
				t.Errorf("BrandOf(%q) = %q, %v; want %q, %v", tt.number, b.Name, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValidSecurityCode(t *testing.T) {
	for code, want := range map[string]bool{
		"123": true, "1234": true, "12": false, "12345": false, "12a": false, "": false,
	} {
		if got := ValidSecurityCode(code); got != want {
			t.Errorf("ValidSecurityCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestValidExpiry(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want bool
	}{
		{"0324", true},
		{"0224", false},
		{"1230", true},
		{"1324", false},
		{"0024", false},
		{"324", false},
		{"ab24", false},
	}
	for _, tt := range tests {
		if got := ValidExpiry(tt.in, now); got != tt.want {
			t.Errorf("ValidExpiry(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLastFour(t *testing.T) {
	if got := LastFour("4929 0000 0000 6000"); got != "6000" {
		t.Errorf("LastFour = %q, want 6000", got)
	}
}
