// Package privilege keeps an elevated sudo session alive for the duration
// of a switch operation. Tunnel backends run interface and process
// management through sudo -n and rely on the cached credentials this
// session maintains.
package privilege

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nejeja/geoswitch/internal/platform"
)

// ErrPrivilege is returned when elevation cannot be obtained.
var ErrPrivilege = errors.New("privilege elevation failed")

// DefaultRefreshInterval is how often the background refresher
// re-validates the sudo timestamp. Sudo's default credential cache is
// 5 minutes, so 50s keeps it warm with a wide margin.
const DefaultRefreshInterval = 50 * time.Second

// Manager acquires privilege sessions.
type Manager struct {
	run      platform.Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewManager creates a privilege manager with the default refresh
// interval.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		run:      platform.Run,
		interval: DefaultRefreshInterval,
		logger:   logger,
	}
}

// Session is a live elevated-privilege lease. It owns one background
// refresher goroutine; Release stops it and is safe to call more than
// once and from any exit path.
type Session struct {
	cancel  context.CancelFunc
	done    chan struct{}
	release sync.Once
}

// Acquire validates sudo credentials and starts the background
// refresher. It fails with ErrPrivilege when elevation cannot be
// obtained.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if _, err := m.run(ctx, platform.SudoBinary, "-v"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrivilege, err)
	}

	// The refresher outlives the caller's ctx on purpose: release is the
	// only way to stop it, so cleanup paths keep elevation until the end.
	refreshCtx, cancel := context.WithCancel(context.Background())
	s := &Session{cancel: cancel, done: make(chan struct{})}

	go m.refresh(refreshCtx, s.done)

	m.logger.Debug("privilege session acquired", "refresh_interval", m.interval)
	return s, nil
}

func (m *Manager) refresh(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// -n: never prompt; a failure here means the cached
			// credentials expired out from under us.
			if _, err := m.run(ctx, platform.SudoBinary, "-n", "-v"); err != nil && ctx.Err() == nil {
				m.logger.Warn("privilege refresh failed", "error", err)
			}
		}
	}
}

// Release stops the background refresher and waits for it to exit.
// Idempotent.
func (s *Session) Release() {
	s.release.Do(func() {
		s.cancel()
		<-s.done
	})
}
