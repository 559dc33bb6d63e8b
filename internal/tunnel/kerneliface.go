package tunnel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Kernel brings up a named WireGuard interface with wg-quick. Disconnect
// walks every interface the node table knows about, because the process
// that brought one up may not be the process tearing it down.
type Kernel struct {
	interfaces []string
	run        platform.Runner
	lookPath   func(string) (string, error)
	logger     *slog.Logger
}

// NewKernel creates a kernel-interface backend. interfaces is the full
// set of wg interface names appearing in the node table; Disconnect
// targets all of them.
func NewKernel(interfaces []string, logger *slog.Logger) *Kernel {
	return &Kernel{
		interfaces: interfaces,
		run:        platform.Run,
		lookPath:   exec.LookPath,
		logger:     logger,
	}
}

func (k *Kernel) Name() string { return "wireguard" }

// Preflight verifies wg-quick is on PATH. The interface config lives
// under /etc/wireguard, which is root-only, so its presence is only
// discovered by wg-quick itself.
func (k *Kernel) Preflight(ctx context.Context, iface string) error {
	if _, err := k.lookPath(platform.WGQuickBinary); err != nil {
		return fmt.Errorf("%s not installed: %w", platform.WGQuickBinary, err)
	}
	return nil
}

// Connect brings the named interface up.
func (k *Kernel) Connect(ctx context.Context, iface string) error {
	k.logger.Info("bringing up wireguard interface", "interface", iface)
	if _, err := k.run(ctx, platform.SudoBinary, "-n", platform.WGQuickBinary, "up", iface); err != nil {
		return fmt.Errorf("wg-quick up %s: %w", iface, err)
	}
	return nil
}

// Disconnect brings every known interface down, regardless of which one
// is believed active. wg-quick fails on interfaces that are already
// down; those failures are the desired state and are ignored.
func (k *Kernel) Disconnect(ctx context.Context) {
	for _, iface := range k.interfaces {
		if _, err := k.run(ctx, platform.SudoBinary, "-n", platform.WGQuickBinary, "down", iface); err != nil {
			k.logger.Debug("interface already down", "interface", iface, "detail", err)
		}
	}
}

// IsUp reports whether the named interface exists and is up.
func (k *Kernel) IsUp(iface string) bool {
	data, err := os.ReadFile("/sys/class/net/" + iface + "/operstate")
	if err != nil {
		return false
	}
	state := strings.TrimSpace(string(data))
	return state == "up" || state == "unknown"
}
