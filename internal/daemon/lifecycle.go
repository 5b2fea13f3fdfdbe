package daemon

import (
	"log/slog"
	"sync"
)

type exitHook struct {
	name string
	fn   func() error
}

// Lifecycle collects cleanup work that must run once when the process exits:
// releasing the instance lock and cleaning up notifier modules.
type Lifecycle struct {
	mu     sync.Mutex
	hooks  []exitHook
	done   bool
	logger *slog.Logger
}

// NewLifecycle creates an empty Lifecycle.
func NewLifecycle(logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{logger: logger}
}

// OnExit registers fn to run at Shutdown. Hooks registered after Shutdown
// run immediately.
func (l *Lifecycle) OnExit(name string, fn func() error) {
	l.mu.Lock()
	if !l.done {
		l.hooks = append(l.hooks, exitHook{name: name, fn: fn})
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.run(exitHook{name: name, fn: fn})
}

// Shutdown runs the registered hooks in reverse order. Only the first call
// does anything; errors are logged and do not stop later hooks.
func (l *Lifecycle) Shutdown() {
	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		return
	}
	l.done = true
	hooks := l.hooks
	l.hooks = nil
	l.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		l.run(hooks[i])
	}
}

func (l *Lifecycle) run(h exitHook) {
	l.logger.Debug("running exit hook", "name", h.name)
	if err := h.fn(); err != nil {
		l.logger.Warn("exit hook failed", "name", h.name, "error", err)
	}
}
