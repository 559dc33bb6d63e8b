package geo

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scripted replays a fixed sequence of observations; the last entry is
// sticky once the script runs out.
type scripted struct {
	seq   []Observation
	errAt map[int]bool
	calls int
}

func (s *scripted) Observe(ctx context.Context) (Observation, error) {
	i := s.calls
	s.calls++
	if s.errAt[i] {
		return Observation{}, errors.New("provider down")
	}
	if i >= len(s.seq) {
		i = len(s.seq) - 1
	}
	return s.seq[i], nil
}

func TestWaitForMatchIPChangeAndCountry(t *testing.T) {
	obs := &scripted{seq: []Observation{
		{IP: "9.9.9.9", Country: "?"},
		{IP: "9.9.9.9", Country: "?"},
		{IP: "201.1.1.1", Country: "Brazil"},
	}}

	got, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"Brazil"}, 5, time.Millisecond)
	if !matched {
		t.Fatal("expected match")
	}
	if got.IP != "201.1.1.1" || got.Country != "Brazil" {
		t.Fatalf("unexpected observation: %+v", got)
	}
}

// The IP must actually change: an allowed country on the old IP is not a
// match, because the previous tunnel may still be serving traffic.
func TestWaitForMatchRequiresIPChange(t *testing.T) {
	obs := &scripted{seq: []Observation{{IP: "9.9.9.9", Country: "Brazil"}}}

	_, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"Brazil"}, 3, 0)
	if matched {
		t.Fatal("expected no match while IP is unchanged")
	}
}

func TestWaitForMatchCodeNameEquivalence(t *testing.T) {
	// Provider reports an ISO code; the allow-list holds the canonical
	// name. Normalization makes them equivalent.
	obs := &scripted{seq: []Observation{{IP: "4.4.4.4", Country: "US"}}}

	got, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"United States"}, 3, 0)
	if !matched {
		t.Fatal("expected code/name equivalence to match")
	}
	if got.IP != "4.4.4.4" {
		t.Fatalf("unexpected observation: %+v", got)
	}
}

func TestWaitForMatchEmptyAllowedAcceptsAnyCountry(t *testing.T) {
	obs := &scripted{seq: []Observation{{IP: "4.4.4.4", Country: "Narnia"}}}

	_, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", nil, 3, 0)
	if !matched {
		t.Fatal("expected empty allow-list to accept any country")
	}
}

// Exhaustion is not an error: the final observation still comes back so
// the caller can log what the egress actually looks like.
func TestWaitForMatchExhausted(t *testing.T) {
	obs := &scripted{seq: []Observation{{IP: "9.9.9.9", Country: "Germany"}}}

	got, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"Brazil"}, 3, 0)
	if matched {
		t.Fatal("expected exhaustion")
	}
	if got.IP != "9.9.9.9" || got.Country != "Germany" {
		t.Fatalf("expected best-known observation, got %+v", got)
	}
	// tries + one final diagnostic observation.
	if obs.calls != 4 {
		t.Fatalf("expected 4 observations, got %d", obs.calls)
	}
}

func TestWaitForMatchSkipsFailedObservations(t *testing.T) {
	obs := &scripted{
		seq: []Observation{
			{},
			{IP: "201.1.1.1", Country: "Brazil"},
		},
		errAt: map[int]bool{0: true},
	}

	_, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"Brazil"}, 3, 0)
	if !matched {
		t.Fatal("expected match after a failed observation")
	}
}

func TestWaitForMatchTerminates(t *testing.T) {
	obs := &scripted{seq: []Observation{{IP: "9.9.9.9", Country: "?"}}}

	const tries, interval = 3, 10 * time.Millisecond
	start := time.Now()
	_, matched := WaitForMatch(context.Background(), obs, "9.9.9.9", []string{"Brazil"}, tries, interval)
	elapsed := time.Since(start)

	if matched {
		t.Fatal("expected no match")
	}
	// Bounded by tries*interval plus the final attempt, with slack for
	// slow CI.
	if elapsed > tries*interval+500*time.Millisecond {
		t.Fatalf("loop took too long: %v", elapsed)
	}
}

func TestWaitForMatchCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := &scripted{seq: []Observation{{IP: "9.9.9.9", Country: "?"}}}
	_, matched := WaitForMatch(ctx, obs, "9.9.9.9", []string{"Brazil"}, 100, time.Hour)
	if matched {
		t.Fatal("expected cancellation to stop the loop unmatched")
	}
}
