package geo

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CZ", "Czechia"},
		{"US", "United States"},
		{"RU", "Russia"},
		{"SG", "Singapore"},
		{"AE", "United Arab Emirates"},
		{"BR", "Brazil"},
		{"Czech Republic", "Czechia"},
		{"United States of America", "United States"},
		{"Russian Federation", "Russia"},
		{"Brasil", "Brazil"},
		{"Emirates", "United Arab Emirates"},
		{" US ", "United States"},
		// Unrecognized input passes through unchanged.
		{"Narnia", "Narnia"},
		{"XX", "XX"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Every defined code must map to exactly one name, and normalization must
// be stable: normalizing a canonical name yields itself.
func TestNormalizeTotal(t *testing.T) {
	for code, name := range countryNames {
		if got := Normalize(code); got != name {
			t.Errorf("Normalize(%q) = %q, want %q", code, got, name)
		}
		if got := Normalize(name); got != name {
			t.Errorf("Normalize(%q) not stable: got %q", name, got)
		}
	}
	for alias, name := range countryAliases {
		if got := Normalize(alias); got != name {
			t.Errorf("Normalize(%q) = %q, want %q", alias, got, name)
		}
	}
}
