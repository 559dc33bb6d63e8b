package geo

import (
	"encoding/json"
	"fmt"
)

// Observation is one answer from a geolocation provider: the public IP
// the caller egresses from and the country it is attributed to. Either
// field may be empty when the provider cannot answer.
type Observation struct {
	IP      string
	Country string
}

// Empty reports whether the observation carries no usable data.
func (o Observation) Empty() bool { return o.IP == "" && o.Country == "" }

// Provider is one IP-geolocation HTTP endpoint. Providers are queried in
// slice order; the first complete answer wins.
type Provider struct {
	Name  string
	URL   string
	Parse func(body []byte) (Observation, error)
}

// DefaultProviders returns the provider chain in priority order. All four
// are independent free services answering unauthenticated GETs; ip-api.com
// goes first because it is the fastest and returns both fields in one
// call.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name: "ip-api.com",
			URL:  "http://ip-api.com/json/?fields=status,country,countryCode,query",
			Parse: func(body []byte) (Observation, error) {
				var r struct {
					Status      string `json:"status"`
					CountryCode string `json:"countryCode"`
					Query       string `json:"query"`
				}
				if err := json.Unmarshal(body, &r); err != nil {
					return Observation{}, fmt.Errorf("decode: %w", err)
				}
				if r.Status != "success" {
					return Observation{}, fmt.Errorf("status %q", r.Status)
				}
				return Observation{IP: r.Query, Country: r.CountryCode}, nil
			},
		},
		{
			Name: "ipinfo.io",
			URL:  "https://ipinfo.io/json",
			Parse: func(body []byte) (Observation, error) {
				var r struct {
					IP      string `json:"ip"`
					Country string `json:"country"`
				}
				if err := json.Unmarshal(body, &r); err != nil {
					return Observation{}, fmt.Errorf("decode: %w", err)
				}
				return Observation{IP: r.IP, Country: r.Country}, nil
			},
		},
		{
			Name: "ifconfig.co",
			URL:  "https://ifconfig.co/json",
			Parse: func(body []byte) (Observation, error) {
				var r struct {
					IP      string `json:"ip"`
					Country string `json:"country"`
				}
				if err := json.Unmarshal(body, &r); err != nil {
					return Observation{}, fmt.Errorf("decode: %w", err)
				}
				return Observation{IP: r.IP, Country: r.Country}, nil
			},
		},
		{
			Name: "ipwho.is",
			URL:  "https://ipwho.is/",
			Parse: func(body []byte) (Observation, error) {
				var r struct {
					Success bool   `json:"success"`
					IP      string `json:"ip"`
					Country string `json:"country"`
				}
				if err := json.Unmarshal(body, &r); err != nil {
					return Observation{}, fmt.Errorf("decode: %w", err)
				}
				if !r.Success {
					return Observation{}, fmt.Errorf("success=false")
				}
				return Observation{IP: r.IP, Country: r.Country}, nil
			},
		},
	}
}
