package shutdown

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"adaptive-otsu/internal/logger"
)

const closeTimeout = 10 * time.Second

type resource struct {
	name string
	c    io.Closer
}

// Manager turns SIGINT/SIGTERM into context cancellation and closes
// registered resources, newest first, when the run ends.
type Manager struct {
	log       logger.Logger
	mu        sync.Mutex
	resources []resource
	ctx       context.Context
	cancel    context.CancelFunc
	signals   chan os.Signal
	once      sync.Once
	timeout   time.Duration
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		signals: make(chan os.Signal, 1),
		timeout: closeTimeout,
	}
}

func (m *Manager) Register(name string, c io.Closer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources = append(m.resources, resource{name: name, c: c})
}

// Listen cancels Context on the first signal.
func (m *Manager) Listen() {
	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-m.signals:
			m.log.Warning("ShutdownManager", "signal received, cancelling run", map[string]interface{}{
				"signal": sig.String(),
			})
			m.cancel()
		case <-m.ctx.Done():
		}
	}()
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

// Shutdown cancels Context and closes every resource. Only the first call
// does any work.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		signal.Stop(m.signals)
		m.cancel()

		m.mu.Lock()
		resources := m.resources
		m.resources = nil
		m.mu.Unlock()

		for i := len(resources) - 1; i >= 0; i-- {
			m.close(resources[i])
		}

		m.log.Debug("ShutdownManager", "shutdown completed", map[string]interface{}{
			"resources": len(resources),
		})
	})
}

func (m *Manager) close(r resource) {
	done := make(chan error, 1)
	go func() {
		done <- r.c.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			m.log.Error("ShutdownManager", err, map[string]interface{}{"resource": r.name})
		}
	case <-time.After(m.timeout):
		m.log.Warning("ShutdownManager", "resource close timeout", map[string]interface{}{
			"resource": r.name,
		})
	}
}
