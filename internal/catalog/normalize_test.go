package catalog_test

import (
	"testing"

	"seedcat/internal/catalog"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		usable bool
	}{
		{"$1,234.56", 1234.56, true},
		{"13.99", 13.99, true},
		{"USD 45", 45, true},
		{"0", 0, false},
		{"-5.00", 5, true}, // sign is stripped with the other symbols
		{"$0.00", 0, false},
		{"None", 0, false},
		{"", 0, false},
		{"free", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tc := range cases {
		got, usable := catalog.ParsePrice(tc.in)
		if usable != tc.usable {
			t.Fatalf("ParsePrice(%q) usable = %v, want %v", tc.in, usable, tc.usable)
		}
		if usable && got != tc.want {
			t.Fatalf("ParsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMatchesKeywords(t *testing.T) {
	keywords := []string{"gaming mouse", "esports mouse"}

	if !catalog.MatchesKeywords("RGB Gaming Mouse 16000dpi", "", keywords) {
		t.Fatal("expected title match")
	}
	if !catalog.MatchesKeywords("ACME Clicker", "Electronics Esports Mouse Accessories", keywords) {
		t.Fatal("expected category-path match")
	}
	if !catalog.MatchesKeywords("GAMING MOUSE", "", keywords) {
		t.Fatal("matching must be case-insensitive")
	}
	if catalog.MatchesKeywords("Office Mouse", "Electronics Mice", keywords) {
		t.Fatal("unexpected match")
	}
	if catalog.MatchesKeywords("anything", "anywhere", nil) {
		t.Fatal("no keywords should never match")
	}
}
