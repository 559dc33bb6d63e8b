// Package switcher maps a node identifier to a tunnel backend and drives
// one switch operation end to end: quiesce every backend, connect the
// requested one, then poll geolocation until the egress moves to an
// expected country or tries run out.
package switcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nejeja/geoswitch/internal/config"
	"github.com/nejeja/geoswitch/internal/diag"
	"github.com/nejeja/geoswitch/internal/geo"
	"github.com/nejeja/geoswitch/internal/tunnel"
)

// State names one phase of a switch operation.
type State string

const (
	StateIdle          State = "idle"
	StateDisconnecting State = "disconnecting"
	StateConnecting    State = "connecting"
	StateVerifying     State = "verifying"
	StateMatched       State = "matched"
	StateUnmatched     State = "unmatched"
	StateDone          State = "done"
)

// ManagedBackend extends the base backend contract with the control
// plane's own status poll, used as a best-effort gate before IP-based
// verification.
type ManagedBackend interface {
	tunnel.Backend
	WaitReportedCountry(ctx context.Context, expected []string, tries int, interval time.Duration) bool
}

// Backends groups one instance of each backend kind.
type Backends struct {
	Managed ManagedBackend
	Process tunnel.Backend
	Kernel  tunnel.Backend
}

// DisconnectAll quiesces every backend unconditionally. A prior process
// may have left any of the three active, so none of them is trusted to
// be down.
func (b Backends) DisconnectAll(ctx context.Context) {
	b.Managed.Disconnect(ctx)
	b.Process.Disconnect(ctx)
	b.Kernel.Disconnect(ctx)
}

// forKind selects the backend for a node.
func (b Backends) forKind(kind BackendKind) tunnel.Backend {
	switch kind {
	case BackendManaged:
		return b.Managed
	case BackendKernel:
		return b.Kernel
	default:
		return b.Process
	}
}

// Diagnostic runs optional post-switch checks. Results are attached to
// the switch result and never fail the operation.
type Diagnostic interface {
	Run(ctx context.Context) []diag.Result
}

// Result is the outcome of one switch operation. Matched=false is a
// warning, not an error: the caller still gets the best-known egress for
// logging and decides downstream what to do with the batch.
type Result struct {
	Node    string
	IP      string
	Country string
	Backend string
	Target  string
	Matched bool

	Warnings    []string
	Diagnostics []diag.Result
}

// Line renders the terminal result line the calling orchestrator parses.
func (r *Result) Line() string {
	ip := r.IP
	if ip == "" {
		ip = "?"
	}
	country := r.Country
	if country == "" {
		country = "unknown"
	}
	return fmt.Sprintf("[VPN] %s -> %s (%s) via %s:%s", r.Node, ip, country, r.Backend, r.Target)
}

// Switcher executes switch operations against a fixed node table.
// One switch is in flight at a time; the caller enforces that.
type Switcher struct {
	cfg      *config.Config
	table    []Node
	backends Backends
	observer geo.Observer
	diag     Diagnostic
	logger   *slog.Logger
	state    State
}

// New creates a Switcher over the static node table.
func New(cfg *config.Config, backends Backends, observer geo.Observer, logger *slog.Logger) *Switcher {
	return &Switcher{
		cfg:      cfg,
		table:    Table(cfg),
		backends: backends,
		observer: observer,
		logger:   logger,
		state:    StateIdle,
	}
}

// SetDiagnostic attaches an optional post-switch diagnostic.
func (s *Switcher) SetDiagnostic(d Diagnostic) { s.diag = d }

// Switch moves the egress to the named node and verifies the move.
// Fatal errors (unknown node, missing prerequisites, privilege or connect
// failures) return a nil result; verification shortfalls return a result
// with Matched=false and warnings attached.
func (s *Switcher) Switch(ctx context.Context, nodeID string) (*Result, error) {
	node, ok := Lookup(s.table, nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	// Check the target backend's prerequisites before tearing anything
	// down. A missing ovpn config or absent control-plane CLI must not
	// leave the host with every tunnel destroyed and nothing connected.
	backend := s.backends.forKind(node.Backend)
	if err := backend.Preflight(ctx, node.Target); err != nil {
		return nil, fmt.Errorf("preflight %s: %w", node.ID, err)
	}

	// Capture the egress before touching anything; verification gates on
	// the IP changing away from this.
	prev, err := s.observer.Observe(ctx)
	if err != nil {
		s.logger.Warn("could not observe current egress, verifying on country only", "error", err)
	}

	s.setState(StateDisconnecting)
	s.backends.DisconnectAll(ctx)

	s.setState(StateConnecting)
	if err := backend.Connect(ctx, node.Target); err != nil {
		return nil, fmt.Errorf("connect %s: %w", node.ID, err)
	}
	sleep(ctx, s.cfg.Verify.SettleDelay())

	res := &Result{Node: node.ID, Backend: backend.Name(), Target: node.Target}

	s.setState(StateVerifying)
	if node.Restricted && s.cfg.Restricted.SkipVerify {
		s.passiveVerify(ctx, res)
	} else {
		s.verify(ctx, node, prev.IP, res)
	}

	if s.cfg.DNSCheck && s.diag != nil {
		res.Diagnostics = s.diag.Run(ctx)
	}

	s.setState(StateDone)
	return res, nil
}

// verify polls geolocation until the egress IP changes and the country
// is allowed. Managed nodes first wait for the control plane's own
// status to report the expected country; that gate is best-effort and
// only produces a warning when it times out.
func (s *Switcher) verify(ctx context.Context, node Node, prevIP string, res *Result) {
	allowed := canonicalAllowed(node.Allowed)

	if node.Backend == BackendManaged {
		ok := s.backends.Managed.WaitReportedCountry(ctx, allowed,
			s.cfg.Verify.PlaneTries, s.cfg.Verify.PlaneInterval())
		if !ok {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("control plane did not report %v in time", allowed))
		}
	}

	obs, matched := geo.WaitForMatch(ctx, s.observer, prevIP, node.Allowed,
		s.cfg.Verify.Tries, s.cfg.Verify.Interval())
	res.IP, res.Country, res.Matched = obs.IP, obs.Country, matched

	if matched {
		s.setState(StateMatched)
		return
	}
	s.setState(StateUnmatched)
	res.Warnings = append(res.Warnings,
		fmt.Sprintf("expected country %v not confirmed (observed ip=%q country=%q)",
			allowed, obs.IP, obs.Country))
}

// passiveVerify implements skip-verify mode for the restricted node:
// wait a fixed duration, report whatever the resolver sees, and never
// gate on it. Verification traffic itself may be blocked from that
// egress.
func (s *Switcher) passiveVerify(ctx context.Context, res *Result) {
	s.logger.Info("skip-verify enabled, waiting passively", "wait", s.cfg.Restricted.PassiveWait())
	sleep(ctx, s.cfg.Restricted.PassiveWait())

	obs, err := s.observer.Observe(ctx)
	if err != nil {
		s.logger.Warn("post-wait observation failed", "error", err)
	}
	res.IP, res.Country = obs.IP, obs.Country
	res.Matched = true
	s.setState(StateMatched)
}

func (s *Switcher) setState(st State) {
	s.state = st
	s.logger.Debug("switch state", "state", st)
}

// canonicalAllowed normalizes an allow-list to canonical country names,
// deduplicated, preserving order.
func canonicalAllowed(allowed []string) []string {
	seen := make(map[string]bool, len(allowed))
	out := make([]string, 0, len(allowed))
	for _, c := range allowed {
		name := geo.Normalize(c)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
