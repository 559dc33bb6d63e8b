package geo

import "strings"

// countryNames maps ISO 3166-1 alpha-2 codes to the canonical country
// name the node table uses. Providers disagree on whether they return a
// code or a name, so both verification sides go through Normalize before
// comparison. The table covers the configured egress countries plus the
// neighbours that city-level endpoints occasionally report.
var countryNames = map[string]string{
	"CZ": "Czechia",
	"US": "United States",
	"RU": "Russia",
	"SG": "Singapore",
	"AE": "United Arab Emirates",
	"BR": "Brazil",

	"DE": "Germany",
	"AT": "Austria",
	"SK": "Slovakia",
	"PL": "Poland",
	"NL": "Netherlands",
	"GB": "United Kingdom",
	"FR": "France",
	"MY": "Malaysia",
	"ID": "Indonesia",
	"QA": "Qatar",
	"SA": "Saudi Arabia",
	"AR": "Argentina",
	"PT": "Portugal",
	"CA": "Canada",
	"MX": "Mexico",
}

// countryAliases maps alternate spellings providers use to the canonical
// name.
var countryAliases = map[string]string{
	"Czech Republic":           "Czechia",
	"United States of America": "United States",
	"Russian Federation":       "Russia",
	"Emirates":                 "United Arab Emirates",
	"Brasil":                   "Brazil",
}

// Normalize maps an ISO country code or an alternate country name to its
// canonical name. Unrecognized input passes through unchanged (trimmed).
func Normalize(country string) string {
	c := strings.TrimSpace(country)
	if name, ok := countryNames[c]; ok {
		return name
	}
	if name, ok := countryAliases[c]; ok {
		return name
	}
	return c
}
