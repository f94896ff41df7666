// Package shutdown coordinates graceful teardown of the scheduler daemon:
// stop taking new pipeline runs, let the in-flight run finish, close the
// run history, then exit.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Callback is one teardown step. It receives a context bounded by the
// shutdown timeout.
type Callback func(ctx context.Context) error

// Handler listens for termination signals and runs registered callbacks in
// reverse registration order, so dependents close before their dependencies.
type Handler struct {
	mu        sync.Mutex
	callbacks []Callback
	names     []string

	shuttingDown atomic.Bool
	done         chan struct{}
	timeout      time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	sigChan chan os.Signal

	onDone func(elapsed time.Duration, errs []error)
}

// Config holds shutdown configuration.
type Config struct {
	// Timeout bounds the whole callback chain, not each callback.
	Timeout time.Duration
	Signals []os.Signal
	OnDone  func(elapsed time.Duration, errs []error)
}

// New creates a handler listening for the configured signals. Zero values
// fall back to a 30s timeout and SIGINT/SIGTERM.
func New(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Handler{
		done:    make(chan struct{}),
		timeout: cfg.Timeout,
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
		onDone:  cfg.OnDone,
	}

	signal.Notify(h.sigChan, cfg.Signals...)
	return h
}

// Register adds a named teardown step.
func (h *Handler) Register(name string, callback Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, callback)
	h.names = append(h.names, name)
}

// RegisterFunc adds a teardown step that cannot fail.
func (h *Handler) RegisterFunc(name string, fn func()) {
	h.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Context is cancelled the moment shutdown begins. Long-running work
// (the scraper's traversal, uploads) should run under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Done is closed when the callback chain has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until a signal arrives, then runs the shutdown sequence.
func (h *Handler) Wait() {
	select {
	case <-h.sigChan:
		h.Shutdown()
	case <-h.ctx.Done():
	}
}

// Trigger injects a termination signal, for programmatic shutdown.
func (h *Handler) Trigger() {
	select {
	case h.sigChan <- syscall.SIGTERM:
	default:
	}
}

// Shutdown cancels the handler context and runs callbacks newest-first
// under the configured timeout. Safe to call more than once.
func (h *Handler) Shutdown() {
	if !h.shuttingDown.CompareAndSwap(false, true) {
		return
	}

	start := time.Now()
	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	callbacks := make([]Callback, len(h.callbacks))
	names := make([]string, len(h.names))
	copy(callbacks, h.callbacks)
	copy(names, h.names)
	h.mu.Unlock()

	var errs []error
	for i := len(callbacks) - 1; i >= 0; i-- {
		if err := h.run(ctx, names[i], callbacks[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if h.onDone != nil {
		h.onDone(time.Since(start), errs)
	}
	close(h.done)
}

func (h *Handler) run(ctx context.Context, name string, callback Callback) error {
	result := make(chan error, 1)
	go func() {
		result <- callback(ctx)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return &TimeoutError{Step: name}
	}
}

// TimeoutError marks a teardown step that outlived the shutdown timeout.
type TimeoutError struct {
	Step string
}

func (e *TimeoutError) Error() string {
	return "shutdown step timed out: " + e.Step
}
