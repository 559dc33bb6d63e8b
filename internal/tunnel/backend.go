// Package tunnel implements the three tunnel-establishment backends:
// a managed VPN control plane driven through its own CLI, an OpenVPN
// process spawned from a config file, and a kernel WireGuard interface
// brought up with wg-quick. All three sit behind one Backend contract so
// the switcher can quiesce and select them uniformly.
package tunnel

import (
	"context"
	"errors"
)

var (
	// ErrPlaneNotInstalled indicates the managed control-plane CLI is not
	// on PATH. Fatal only when a managed node is selected.
	ErrPlaneNotInstalled = errors.New("managed vpn cli not installed")

	// ErrConfigMissing indicates the tunnel config artifact for a spawned
	// process node is absent or unreadable.
	ErrConfigMissing = errors.New("tunnel config missing")

	// ErrCredentialsMissing indicates the stored credential file for a
	// spawned process node is absent or unreadable.
	ErrCredentialsMissing = errors.New("credentials missing")
)

// Backend is the uniform connect/disconnect contract over the three
// tunnel mechanisms.
type Backend interface {
	// Name returns the backend identifier used in the result line.
	Name() string

	// Preflight checks every prerequisite for connecting to the given
	// target without touching tunnel state. The switcher runs it before
	// tearing anything down, so a missing artifact never strands the
	// host with all tunnels destroyed.
	Preflight(ctx context.Context, target string) error

	// Connect establishes the tunnel to the given target. The meaning of
	// target depends on the backend: a country code for the managed
	// plane, a config file path for the spawned process, an interface
	// name for the kernel variant. Connect does not verify reachability;
	// verification is the switcher's job.
	Connect(ctx context.Context, target string) error

	// Disconnect tears the tunnel down. Best-effort cleanup: it never
	// fails loudly and must be safe to call when nothing is connected.
	Disconnect(ctx context.Context)
}
