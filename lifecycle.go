package loom

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// LifecyclePhase is the process-wide lifecycle state. Transitions are
// strictly forward-only; the single exception is the startup abort path,
// where a hook failure jumps to the destroy phases for the subset of
// providers and modules already initialized.
type LifecyclePhase int32

const (
	PhaseUninitialized LifecyclePhase = iota
	PhaseModuleInit
	PhaseServiceInit
	PhaseApplicationStart
	PhaseRunning
	PhaseApplicationShutdown
	PhaseServiceDestroy
	PhaseModuleDestroy
	PhaseStopped
)

func (p LifecyclePhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseModuleInit:
		return "ModuleInit"
	case PhaseServiceInit:
		return "ServiceInit"
	case PhaseApplicationStart:
		return "ApplicationStart"
	case PhaseRunning:
		return "Running"
	case PhaseApplicationShutdown:
		return "ApplicationShutdown"
	case PhaseServiceDestroy:
		return "ServiceDestroy"
	case PhaseModuleDestroy:
		return "ModuleDestroy"
	case PhaseStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// orchestrator drives the ordered multi-phase lifecycle over a built
// container. Every hook invocation within a phase is awaited sequentially in
// a single goroutine; that sequential-await discipline is what makes
// "dependency ready before dependent's hook" an ordering guarantee rather
// than a race. Hook bodies may do their own asynchronous work internally.
type orchestrator struct {
	app       *Application
	comp      *composition
	container *Container
	order     []string
	logger    Logger

	phase atomic.Int32

	// Rollback bookkeeping: modules and providers whose init completed.
	initedModules   []*ModuleDescriptor
	initedProviders []string

	// Teardown bookkeeping, read by the shutdown coordinator on timeout.
	mu      sync.Mutex
	pending []string
}

func newOrchestrator(app *Application, comp *composition, container *Container, order []string) *orchestrator {
	return &orchestrator{
		app:       app,
		comp:      comp,
		container: container,
		order:     order,
		logger:    app.Logger(),
	}
}

func (o *orchestrator) currentPhase() LifecyclePhase {
	return LifecyclePhase(o.phase.Load())
}

func (o *orchestrator) setPhase(p LifecyclePhase) {
	o.phase.Store(int32(p))
	o.logger.Debug("Lifecycle phase transition", "phase", p.String())
}

// initPhases drives ModuleInit and ServiceInit. On any hook failure the
// forward sequence stops immediately, the already-initialized subset is
// rolled back in reverse order, and the originating error is returned.
func (o *orchestrator) initPhases(ctx context.Context) error {
	o.setPhase(PhaseModuleInit)
	for _, module := range o.comp.moduleOrder {
		if module.Hooks.OnInit == nil {
			continue
		}
		o.logger.Debug("Initializing module", "module", module.Name)
		if err := module.Hooks.OnInit(ctx, o.app); err != nil {
			hookErr := &LifecycleHookFailedError{Phase: PhaseModuleInit, Identity: module.Name, Cause: err}
			o.logger.Error("Module init hook failed, rolling back", "module", module.Name, "error", err)
			o.rollback(ctx)
			return hookErr
		}
		o.initedModules = append(o.initedModules, module)
		o.app.emitEvent(ctx, EventTypeModuleInitialized, map[string]any{"module": module.Name}, nil)
	}

	o.setPhase(PhaseServiceInit)
	for _, name := range o.order {
		instance := o.container.instances[name]
		if initer, ok := instance.(Initializer); ok {
			o.logger.Debug("Initializing provider", "provider", name)
			if err := initer.OnInit(ctx); err != nil {
				hookErr := &LifecycleHookFailedError{Phase: PhaseServiceInit, Identity: name, Cause: err}
				o.logger.Error("Provider init hook failed, rolling back", "provider", name, "error", err)
				o.rollback(ctx)
				return hookErr
			}
		}
		// Providers without an init hook still count as initialized for
		// rollback purposes once their turn in the phase has passed.
		o.initedProviders = append(o.initedProviders, name)
		o.app.emitEvent(ctx, EventTypeProviderInitialized, map[string]any{"provider": name}, nil)
	}

	return nil
}

// startPhase drives ApplicationStart and, when every hook succeeds,
// transitions to Running. A failure rolls back all initialized providers and
// modules; external callers never observe a partial Running state.
func (o *orchestrator) startPhase(ctx context.Context) error {
	o.setPhase(PhaseApplicationStart)
	for _, name := range o.order {
		instance := o.container.instances[name]
		starter, ok := instance.(Starter)
		if !ok {
			continue
		}
		o.logger.Info("Starting provider", "provider", name)
		if err := starter.OnStart(ctx); err != nil {
			hookErr := &LifecycleHookFailedError{Phase: PhaseApplicationStart, Identity: name, Cause: err}
			o.logger.Error("Provider start hook failed, rolling back", "provider", name, "error", err)
			o.rollback(ctx)
			return hookErr
		}
		o.app.emitEvent(ctx, EventTypeProviderStarted, map[string]any{"provider": name}, nil)
	}

	o.setPhase(PhaseRunning)
	o.app.emitEvent(ctx, EventTypeApplicationStarted, nil, nil)
	return nil
}

// rollback invokes destroy hooks, in reverse order, for exactly the
// providers and modules whose init completed. Providers never initialized
// see no hook at all. Rollback errors are logged and do not mask the
// originating startup error.
func (o *orchestrator) rollback(ctx context.Context) {
	for i := len(o.initedProviders) - 1; i >= 0; i-- {
		name := o.initedProviders[i]
		instance := o.container.instances[name]
		destroyer, ok := instance.(Destroyer)
		if !ok {
			continue
		}
		o.logger.Debug("Rolling back provider", "provider", name)
		if err := destroyer.OnDestroy(ctx); err != nil {
			o.logger.Error("Destroy hook failed during rollback", "provider", name, "error", err)
		}
	}
	o.initedProviders = nil

	for i := len(o.initedModules) - 1; i >= 0; i-- {
		module := o.initedModules[i]
		if module.Hooks.OnDestroy == nil {
			continue
		}
		o.logger.Debug("Rolling back module", "module", module.Name)
		if err := module.Hooks.OnDestroy(ctx, o.app); err != nil {
			o.logger.Error("Module destroy hook failed during rollback", "module", module.Name, "error", err)
		}
	}
	o.initedModules = nil

	o.setPhase(PhaseStopped)
}

// teardown drives ApplicationShutdown, ServiceDestroy and ModuleDestroy.
// A failing hook is logged and the remaining hooks in the phase still run;
// a single broken service must not prevent others from releasing resources.
// When ctx expires mid-phase the remaining hooks are abandoned and a
// ShutdownTimeoutError naming them is returned.
func (o *orchestrator) teardown(ctx context.Context) error {
	reversed := slices.Clone(o.order)
	slices.Reverse(reversed)

	o.mu.Lock()
	o.pending = o.pendingTeardownHooks(reversed)
	o.mu.Unlock()

	o.setPhase(PhaseApplicationShutdown)
	for _, name := range reversed {
		instance := o.container.instances[name]
		if shutdowner, ok := instance.(Shutdowner); ok {
			if ctx.Err() != nil {
				return &ShutdownTimeoutError{Pending: o.pendingHooks()}
			}
			o.logger.Info("Shutting down provider", "provider", name)
			if err := shutdowner.OnShutdown(ctx); err != nil {
				o.logger.Error("Shutdown hook failed, continuing", "provider", name, "error", err)
			}
			o.completeHook(name)
		}
	}

	o.setPhase(PhaseServiceDestroy)
	for _, name := range reversed {
		instance := o.container.instances[name]
		if destroyer, ok := instance.(Destroyer); ok {
			if ctx.Err() != nil {
				return &ShutdownTimeoutError{Pending: o.pendingHooks()}
			}
			o.logger.Debug("Destroying provider", "provider", name)
			if err := destroyer.OnDestroy(ctx); err != nil {
				o.logger.Error("Destroy hook failed, continuing", "provider", name, "error", err)
			}
			o.completeHook(name)
		}
	}

	o.setPhase(PhaseModuleDestroy)
	for i := len(o.comp.moduleOrder) - 1; i >= 0; i-- {
		module := o.comp.moduleOrder[i]
		if module.Hooks.OnDestroy == nil {
			continue
		}
		if ctx.Err() != nil {
			return &ShutdownTimeoutError{Pending: o.pendingHooks()}
		}
		o.logger.Debug("Destroying module", "module", module.Name)
		if err := module.Hooks.OnDestroy(ctx, o.app); err != nil {
			o.logger.Error("Module destroy hook failed, continuing", "module", module.Name, "error", err)
		}
		o.completeHook(module.Name)
	}

	o.setPhase(PhaseStopped)
	o.app.emitEvent(ctx, EventTypeApplicationStopped, nil, nil)
	return nil
}

// pendingTeardownHooks lists every identity with at least one teardown hook
// still to run, in invocation order.
func (o *orchestrator) pendingTeardownHooks(reversed []string) []string {
	var pending []string
	for _, name := range reversed {
		if _, ok := o.container.instances[name].(Shutdowner); ok {
			pending = append(pending, name)
		}
	}
	for _, name := range reversed {
		if _, ok := o.container.instances[name].(Destroyer); ok {
			pending = append(pending, name)
		}
	}
	for i := len(o.comp.moduleOrder) - 1; i >= 0; i-- {
		module := o.comp.moduleOrder[i]
		if module.Hooks.OnDestroy != nil {
			pending = append(pending, module.Name)
		}
	}
	return pending
}

func (o *orchestrator) completeHook(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if idx := slices.Index(o.pending, name); idx >= 0 {
		o.pending = slices.Delete(o.pending, idx, idx+1)
	}
}

// pendingHooks snapshots the identities whose teardown hooks have not run.
// Called by the shutdown coordinator when the deadline elapses.
func (o *orchestrator) pendingHooks() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.pending)
}
