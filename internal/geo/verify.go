package geo

import (
	"context"
	"time"
)

// Observer yields the current public IP and egress country. Implemented
// by Resolver; the switcher depends on this interface only.
type Observer interface {
	Observe(ctx context.Context) (Observation, error)
}

// WaitForMatch polls obs until the observed IP differs from prevIP and
// the observed country is in the allowed set (an empty set accepts any
// country), or tries are exhausted. Between attempts it sleeps interval,
// so the loop terminates within tries*interval plus one final attempt.
//
// The IP-change gate exists because the previous egress IP can persist
// briefly while a tunnel re-negotiates; the allow-list replaces exact
// country equality because providers disagree on what a city-level
// endpoint should report. Both sides of the country comparison go through
// Normalize, so an ISO code and its canonical name are equivalent.
//
// On exhaustion one final observation is taken and returned with
// matched=false, so the caller still gets the best-known IP and country
// for diagnostics.
func WaitForMatch(ctx context.Context, obs Observer, prevIP string, allowed []string, tries int, interval time.Duration) (Observation, bool) {
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[Normalize(c)] = true
	}

	var last Observation
	for i := 0; i < tries; i++ {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return last, false
			}
		}
		o, err := obs.Observe(ctx)
		if err != nil {
			continue
		}
		last = o
		if o.IP != "" && o.IP != prevIP && (len(allowedSet) == 0 || allowedSet[Normalize(o.Country)]) {
			return o, true
		}
	}

	if o, err := obs.Observe(ctx); err == nil {
		last = o
	}
	return last, false
}
