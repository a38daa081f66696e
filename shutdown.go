package loom

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout bounds graceful teardown when no timeout option is
// supplied.
const DefaultShutdownTimeout = 30 * time.Second

// shutdownCoordinator bounds teardown duration. It hands control to the
// orchestrator's teardown phases and, if the timer elapses first, abandons
// the remaining hooks rather than hanging indefinitely. There is no
// cooperative cancellation beyond the deadline carried in the context: a
// hook that ignores its deadline simply gets abandoned.
type shutdownCoordinator struct {
	timeout time.Duration
	logger  Logger
}

func newShutdownCoordinator(timeout time.Duration, logger Logger) *shutdownCoordinator {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &shutdownCoordinator{timeout: timeout, logger: logger}
}

// shutdown runs the orchestrator's teardown phases bounded by the timeout.
// Per-hook failures inside teardown are non-fatal and already logged; only
// the timeout changes the returned error.
func (s *shutdownCoordinator) shutdown(o *orchestrator) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.teardown(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		pending := o.pendingHooks()
		s.logger.Error("Shutdown deadline elapsed, abandoning remaining hooks",
			"timeout", s.timeout, "pending", pending)
		return &ShutdownTimeoutError{Pending: pending}
	}
}

// waitForSignal blocks until SIGINT or SIGTERM is delivered, returning the
// received signal.
func waitForSignal() os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	return <-sigChan
}
