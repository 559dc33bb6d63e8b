package tunnel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nejeja/geoswitch/internal/platform"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessConnectConfigMissing(t *testing.T) {
	dir := t.TempDir()
	creds := writeFile(t, dir, "credentials.txt")

	r := &fakeRunner{}
	p := NewProcess(creds, platform.NewLogger("error"))
	p.run = r.run

	err := p.Connect(context.Background(), filepath.Join(dir, "missing.ovpn"))
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("no command should run before prerequisites pass, got %v", r.calls)
	}
}

func TestProcessConnectCredentialsMissing(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "br-sao.ovpn")

	r := &fakeRunner{}
	p := NewProcess(filepath.Join(dir, "missing-creds.txt"), platform.NewLogger("error"))
	p.run = r.run

	err := p.Connect(context.Background(), cfg)
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("no command should run before prerequisites pass, got %v", r.calls)
	}
}

func TestProcessPreflight(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "br-sao.ovpn")
	creds := writeFile(t, dir, "credentials.txt")

	r := &fakeRunner{}
	p := NewProcess(creds, platform.NewLogger("error"))
	p.run = r.run

	if err := p.Preflight(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if err := p.Preflight(context.Background(), filepath.Join(dir, "missing.ovpn")); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	p.credentials = filepath.Join(dir, "missing-creds.txt")
	if err := p.Preflight(context.Background(), cfg); !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("preflight must not run commands, got %v", r.calls)
	}
}

func TestProcessConnect(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "br-sao.ovpn")
	creds := writeFile(t, dir, "credentials.txt")

	r := &fakeRunner{}
	p := NewProcess(creds, platform.NewLogger("error"))
	p.run = r.run

	if err := p.Connect(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected one spawn command, got %v", r.calls)
	}
	cmd := r.calls[0]
	for _, part := range []string{"sudo -n openvpn", "--config " + cfg, "--auth-user-pass " + creds, "--daemon"} {
		if !strings.Contains(cmd, part) {
			t.Errorf("spawn command missing %q: %s", part, cmd)
		}
	}
}

func TestProcessDisconnectNeverFails(t *testing.T) {
	r := &fakeRunner{err: errors.New("pkill: no process found")}
	p := NewProcess("/nonexistent", platform.NewLogger("error"))
	p.run = r.run

	p.Disconnect(context.Background()) // best-effort, must not propagate
	if len(r.calls) != 1 {
		t.Fatalf("expected one pkill attempt, got %v", r.calls)
	}
}
