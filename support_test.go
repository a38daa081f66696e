package loom

import (
	"context"
	"sync"
	"time"
)

// testLogger collects log lines so tests can assert on warnings without
// polluting test output.
type testLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *testLogger) Info(msg string, args ...any)  { l.log("INFO", msg) }
func (l *testLogger) Error(msg string, args ...any) { l.log("ERROR", msg) }
func (l *testLogger) Warn(msg string, args ...any)  { l.log("WARN", msg) }
func (l *testLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg) }

// hookRecorder captures hook invocations in order across goroutines.
type hookRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *hookRecorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *hookRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *hookRecorder) count(event string) int {
	n := 0
	for _, e := range r.Events() {
		if e == event {
			n++
		}
	}
	return n
}

// testService implements all four provider hooks, recording each invocation
// and optionally failing or stalling a given hook.
type testService struct {
	name string
	rec  *hookRecorder
	deps map[string]any

	failInit     error
	failStart    error
	failShutdown error
	failDestroy  error

	shutdownDelay time.Duration
	destroyDelay  time.Duration

	// hangDestroy ignores the context deadline, modeling a hook that
	// never returns and must be abandoned by the coordinator.
	hangDestroy bool
}

func (s *testService) OnInit(ctx context.Context) error {
	s.rec.record("init:" + s.name)
	return s.failInit
}

func (s *testService) OnStart(ctx context.Context) error {
	s.rec.record("start:" + s.name)
	return s.failStart
}

func (s *testService) OnShutdown(ctx context.Context) error {
	if s.shutdownDelay > 0 {
		select {
		case <-time.After(s.shutdownDelay):
		case <-ctx.Done():
		}
	}
	s.rec.record("shutdown:" + s.name)
	return s.failShutdown
}

func (s *testService) OnDestroy(ctx context.Context) error {
	if s.hangDestroy {
		time.Sleep(s.destroyDelay)
	} else if s.destroyDelay > 0 {
		select {
		case <-time.After(s.destroyDelay):
		case <-ctx.Done():
		}
	}
	s.rec.record("destroy:" + s.name)
	return s.failDestroy
}

// svcProvider declares a test service provider recording construction and
// hook order.
func svcProvider(name string, rec *hookRecorder, deps ...string) ProviderDescriptor {
	return ProviderDescriptor{
		Name: name,
		Factory: func(app *Application, resolved map[string]any) (any, error) {
			rec.record("make:" + name)
			return &testService{name: name, rec: rec, deps: resolved}, nil
		},
		Dependencies: deps,
		Hooks:        HookInit | HookStart | HookShutdown | HookDestroy,
	}
}

// customProvider declares a provider whose instance the test supplies.
func customProvider(name string, instance any, deps ...string) ProviderDescriptor {
	return ProviderDescriptor{
		Name: name,
		Factory: func(app *Application, resolved map[string]any) (any, error) {
			return instance, nil
		},
		Dependencies: deps,
		Hooks:        HooksOf(instance),
	}
}

// plainProvider declares a hook-less provider.
func plainProvider(name string, deps ...string) ProviderDescriptor {
	return ProviderDescriptor{
		Name: name,
		Factory: func(app *Application, resolved map[string]any) (any, error) {
			return &struct{}{}, nil
		},
		Dependencies: deps,
	}
}

// pinger exercises interface-typed service lookup.
type pinger interface {
	Ping() string
}

type pingService struct {
	reply string
}

func (p *pingService) Ping() string { return p.reply }

// newTestApp builds an application with a quiet logger and the given
// options.
func newTestApp(opts ...Option) *Application {
	base := []Option{WithLogger(&testLogger{}), WithConfigFeeders()}
	return New(append(base, opts...)...)
}
