// Package geo resolves the current public IP and egress country by
// querying independent IP-geolocation services, and drives the
// poll-until-match loop the switcher uses to verify a tunnel change.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nejeja/geoswitch/internal/config"
)

// ErrExhausted is returned by Observe when every provider failed. The
// accompanying Observation is empty; callers treat this as a degraded
// answer, not a fatal condition.
var ErrExhausted = errors.New("all geolocation providers failed")

const maxBodySize = 64 << 10

// Resolver queries a fixed chain of geolocation providers with bounded
// retries and a short per-request timeout, so one observation attempt has
// a known worst-case latency.
type Resolver struct {
	providers  []Provider
	client     *http.Client
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewResolver creates a Resolver using the default provider chain.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		providers:  DefaultProviders(),
		client:     &http.Client{Timeout: cfg.Geo.Timeout()},
		retries:    cfg.Geo.Retries,
		retryDelay: cfg.Geo.RetryDelay(),
		logger:     logger,
	}
}

// Observe queries providers in priority order and returns the first
// observation with both IP and country present. The country is normalized
// to its canonical name. If every provider fails, an empty Observation is
// returned together with ErrExhausted.
func (r *Resolver) Observe(ctx context.Context) (Observation, error) {
	for _, p := range r.providers {
		obs, err := r.query(ctx, p)
		if err != nil {
			r.logger.Debug("provider failed", "provider", p.Name, "error", err)
			continue
		}
		if obs.IP == "" || obs.Country == "" {
			r.logger.Debug("provider returned incomplete answer", "provider", p.Name)
			continue
		}
		obs.Country = Normalize(obs.Country)
		return obs, nil
	}
	return Observation{}, ErrExhausted
}

// query fetches one provider with bounded retries and a fixed inter-retry
// delay.
func (r *Resolver) query(ctx context.Context, p Provider) (Observation, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(r.retryDelay):
			case <-ctx.Done():
				return Observation{}, ctx.Err()
			}
		}
		obs, err := r.fetch(ctx, p)
		if err == nil {
			return obs, nil
		}
		lastErr = err
	}
	return Observation{}, lastErr
}

func (r *Resolver) fetch(ctx context.Context, p Provider) (Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Observation{}, err
	}
	// Some providers rate-limit or reshape responses for browser agents.
	req.Header.Set("User-Agent", "curl/8")

	resp, err := r.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Observation{}, err
	}
	return p.Parse(body)
}
