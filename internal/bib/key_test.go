package bib

import "testing"

func TestIsCanonicalKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"Mishra:2014xyz", true},
		{"Smith-Jones:2020ab", true},
		{"Müller:1999a", true},
		{"abc:12:34", false},
		{"abc123:xyz", false},
		{"Mishra:2014", false},   // No suffix
		{"Mishra:14xyz", false},  // Short year
		{"Mishra:2014x1", false}, // Digit in suffix
		{"Mishra2014xyz", false}, // No colon
		{":2014xyz", false},      // Empty name
		{"-:2014xyz", false},     // Hyphen-only name
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsCanonicalKey(tt.key); got != tt.want {
				t.Errorf("IsCanonicalKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestChooseKey(t *testing.T) {
	tests := []struct {
		name       string
		key1, key2 string
		want       string
	}{
		{"only first canonical", "Mishra:2014xyz", "mishra14", "Mishra:2014xyz"},
		{"only second canonical", "mishra14", "Mishra:2014xyz", "Mishra:2014xyz"},
		{"both canonical keeps first", "Mishra:2014xyz", "Mishra:2014abc", "Mishra:2014xyz"},
		{"neither canonical keeps first", "M1", "F1", "M1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseKey(tt.key1, tt.key2); got != tt.want {
				t.Errorf("chooseKey(%q, %q) = %q, want %q", tt.key1, tt.key2, got, tt.want)
			}
		})
	}
}
