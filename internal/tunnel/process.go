package tunnel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Process spawns a user-space OpenVPN tunnel from a config file and a
// stored credential file. The process daemonizes itself, so Connect
// returns once OpenVPN has forked into the background.
type Process struct {
	credentials string
	run         platform.Runner
	logger      *slog.Logger
}

// NewProcess creates a spawned-process backend that authenticates with
// the given credential file.
func NewProcess(credentialsFile string, logger *slog.Logger) *Process {
	return &Process{
		credentials: credentialsFile,
		run:         platform.Run,
		logger:      logger,
	}
}

func (p *Process) Name() string { return "openvpn" }

// Preflight verifies the config and credential files exist and are
// readable. Returns ErrConfigMissing or ErrCredentialsMissing.
func (p *Process) Preflight(ctx context.Context, configPath string) error {
	if err := checkReadable(configPath); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigMissing, configPath, err)
	}
	if err := checkReadable(p.credentials); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCredentialsMissing, p.credentials, err)
	}
	return nil
}

// Connect starts OpenVPN against the given config path. Artifacts are
// re-checked so Connect stays safe when called without Preflight.
func (p *Process) Connect(ctx context.Context, configPath string) error {
	if err := p.Preflight(ctx, configPath); err != nil {
		return err
	}

	p.logger.Info("starting openvpn", "config", configPath)
	_, err := p.run(ctx, platform.SudoBinary, "-n", platform.OpenVPNBinary,
		"--config", configPath,
		"--auth-user-pass", p.credentials,
		"--daemon", "geoswitch-openvpn")
	if err != nil {
		return fmt.Errorf("spawn openvpn: %w", err)
	}
	return nil
}

// Disconnect kills any running OpenVPN process. A prior switch (or a
// prior run of this tool) may have left one behind, so this fires
// unconditionally and ignores "no process found".
func (p *Process) Disconnect(ctx context.Context) {
	if _, err := p.run(ctx, platform.SudoBinary, "-n", "pkill", "-x", platform.OpenVPNBinary); err != nil {
		p.logger.Debug("openvpn not running", "detail", err)
	}
}

// IsRunning reports whether an OpenVPN process is currently active.
func (p *Process) IsRunning(ctx context.Context) bool {
	out, err := p.run(ctx, "pidof", platform.OpenVPNBinary)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
