package tunnel

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Managed drives an externally managed VPN client through its CLI
// (protonvpn-cli). Connect issues a connect-by-country-code command and
// returns as soon as the client accepts it; whether the tunnel actually
// carries traffic is verified by the switcher.
type Managed struct {
	bin      string
	run      platform.Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// NewManaged creates a managed control-plane backend for the given CLI
// binary.
func NewManaged(bin string, logger *slog.Logger) *Managed {
	return &Managed{
		bin:      bin,
		run:      platform.Run,
		lookPath: exec.LookPath,
		logger:   logger,
	}
}

func (m *Managed) Name() string { return "proton" }

// Preflight fails with ErrPlaneNotInstalled when the managed CLI is not
// on PATH.
func (m *Managed) Preflight(ctx context.Context, countryCode string) error {
	if _, err := m.lookPath(m.bin); err != nil {
		return fmt.Errorf("%w: %s", ErrPlaneNotInstalled, m.bin)
	}
	return nil
}

// Connect asks the managed client to connect to the fastest server in
// the given country.
func (m *Managed) Connect(ctx context.Context, countryCode string) error {
	if err := m.Preflight(ctx, countryCode); err != nil {
		return err
	}
	m.logger.Info("connecting managed vpn", "cli", m.bin, "country", countryCode)
	if _, err := m.run(ctx, m.bin, "connect", "--cc", countryCode); err != nil {
		return fmt.Errorf("managed connect: %w", err)
	}
	return nil
}

// Disconnect tells the managed client to drop any active connection.
// Errors are logged and swallowed: the client reports failure when
// nothing was connected, which is the state we want anyway.
func (m *Managed) Disconnect(ctx context.Context) {
	if _, err := m.lookPath(m.bin); err != nil {
		return
	}
	if _, err := m.run(ctx, m.bin, "disconnect"); err != nil {
		m.logger.Debug("managed disconnect", "error", err)
	}
}

// WaitReportedCountry polls the managed client's own status output until
// it mentions one of the expected country strings, or tries run out.
// This is a best-effort gate before IP-based verification: the client
// knows which server it picked long before geolocation providers see the
// new egress.
func (m *Managed) WaitReportedCountry(ctx context.Context, expected []string, tries int, interval time.Duration) bool {
	for i := 0; i < tries; i++ {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return false
			}
		}
		out, err := m.run(ctx, m.bin, "status")
		if err != nil {
			m.logger.Debug("managed status", "error", err)
			continue
		}
		if statusMentions(out, expected) {
			return true
		}
	}
	return false
}

// statusMentions reports whether the status output contains any of the
// expected country strings, case-insensitively. Bare ISO codes are
// skipped: a two-letter substring like "ru" would false-positive on
// unrelated status text, and the caller passes canonical names anyway.
func statusMentions(out string, expected []string) bool {
	lower := strings.ToLower(out)
	for _, want := range expected {
		if len(want) < 3 {
			continue
		}
		if strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}
