package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nejeja/geoswitch/internal/platform"
)

func testResolver(providers []Provider) *Resolver {
	return &Resolver{
		providers: providers,
		client:    &http.Client{Timeout: time.Second},
		retries:   0,
		logger:    platform.NewLogger("error"),
	}
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ipAPIProvider(url string) Provider {
	p := DefaultProviders()[0]
	p.URL = url
	return p
}

func TestObserve(t *testing.T) {
	srv := jsonServer(t, `{"status":"success","countryCode":"BR","query":"201.1.1.1"}`)

	r := testResolver([]Provider{ipAPIProvider(srv.URL)})
	obs, err := r.Observe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if obs.IP != "201.1.1.1" || obs.Country != "Brazil" {
		t.Fatalf("unexpected observation: %+v", obs)
	}
}

func TestObserveFallback(t *testing.T) {
	// Provider 1 answers but with empty fields; provider 2 has the goods.
	empty := jsonServer(t, `{"status":"success","countryCode":"","query":""}`)
	good := jsonServer(t, `{"status":"success","countryCode":"BR","query":"1.2.3.4"}`)

	r := testResolver([]Provider{ipAPIProvider(empty.URL), ipAPIProvider(good.URL)})
	obs, err := r.Observe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if obs.IP != "1.2.3.4" || obs.Country != "Brazil" {
		t.Fatalf("expected fallback answer, got %+v", obs)
	}
}

func TestObserveExhausted(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(failing.Close)

	r := testResolver([]Provider{ipAPIProvider(failing.URL), ipAPIProvider(failing.URL)})
	obs, err := r.Observe(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if !obs.Empty() {
		t.Fatalf("expected empty observation, got %+v", obs)
	}
}

func TestObserveMalformed(t *testing.T) {
	garbage := jsonServer(t, `not json at all`)
	good := jsonServer(t, `{"status":"success","countryCode":"SG","query":"8.8.8.8"}`)

	r := testResolver([]Provider{ipAPIProvider(garbage.URL), ipAPIProvider(good.URL)})
	obs, err := r.Observe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if obs.Country != "Singapore" {
		t.Fatalf("unexpected observation: %+v", obs)
	}
}

func TestQueryRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"success","countryCode":"CZ","query":"5.5.5.5"}`))
	}))
	t.Cleanup(srv.Close)

	r := testResolver([]Provider{ipAPIProvider(srv.URL)})
	r.retries = 2
	r.retryDelay = time.Millisecond

	obs, err := r.Observe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if obs.Country != "Czechia" {
		t.Fatalf("unexpected observation: %+v", obs)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}
