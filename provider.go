package loom

import "context"

// Factory produces a provider instance. It receives the application and the
// already-constructed instances of the provider's declared dependencies,
// keyed by identity. Every declared dependency is guaranteed to be present in
// deps by the time the factory runs.
type Factory func(app *Application, deps map[string]any) (any, error)

// HookSet is a bit set describing which lifecycle hook capabilities a
// provider implements.
type HookSet uint8

const (
	// HookInit marks providers implementing Initializer.
	HookInit HookSet = 1 << iota
	// HookStart marks providers implementing Starter.
	HookStart
	// HookShutdown marks providers implementing Shutdowner.
	HookShutdown
	// HookDestroy marks providers implementing Destroyer.
	HookDestroy
)

// Has reports whether h contains all flags in flags.
func (h HookSet) Has(flags HookSet) bool {
	return h&flags == flags
}

// Initializer is implemented by provider instances that need initialization
// work after construction. OnInit is invoked during the ServiceInit phase,
// in resolved dependency order, awaited sequentially.
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Starter is implemented by provider instances that begin runtime work once
// the whole graph is initialized. OnStart is invoked during the
// ApplicationStart phase, in resolved order; the application only enters
// Running if every OnStart succeeds.
type Starter interface {
	OnStart(ctx context.Context) error
}

// Shutdowner is implemented by provider instances that must stop accepting
// work before teardown. OnShutdown is invoked during ApplicationShutdown, in
// reverse resolved order.
type Shutdowner interface {
	OnShutdown(ctx context.Context) error
}

// Destroyer is implemented by provider instances that release resources.
// OnDestroy is invoked during ServiceDestroy, in reverse resolved order, and
// during startup rollback for providers whose initialization completed.
type Destroyer interface {
	OnDestroy(ctx context.Context) error
}

// HooksOf derives the HookSet for an instance from the hook interfaces it
// implements. Registration helpers use this so descriptors built from a
// prototype instance carry accurate capability flags.
func HooksOf(v any) HookSet {
	var hooks HookSet
	if _, ok := v.(Initializer); ok {
		hooks |= HookInit
	}
	if _, ok := v.(Starter); ok {
		hooks |= HookStart
	}
	if _, ok := v.(Shutdowner); ok {
		hooks |= HookShutdown
	}
	if _, ok := v.(Destroyer); ok {
		hooks |= HookDestroy
	}
	return hooks
}

// ProviderDescriptor declares an injectable unit: its stable identity, the
// factory that produces its singleton instance, the identities it depends
// on, and the lifecycle hooks its instances implement.
//
// Dependency identities may reference providers registered later (forward
// references); they are validated during graph resolution, before any
// factory runs. Descriptors are immutable once composition begins.
type ProviderDescriptor struct {
	// Name is the stable identity token for this provider. It must be
	// unique within the composed registry.
	Name string

	// Factory constructs the singleton instance. Required.
	Factory Factory

	// Dependencies lists the identities this provider consumes, in the
	// order the declaration site wrote them.
	Dependencies []string

	// Hooks declares the lifecycle hook capabilities of the constructed
	// instance. Populated via HooksOf when built from a prototype, or set
	// explicitly by registration tooling.
	Hooks HookSet

	// Controller marks providers that additionally expose routable
	// operations. Controllers participate in dependency injection exactly
	// like plain providers; composition additionally collects them into
	// the flat controller list consumed by the HTTP layer.
	Controller bool
}

// validate checks the structural requirements that do not need the composed
// registry.
func (d ProviderDescriptor) validate() error {
	if d.Name == "" {
		return ErrEmptyProviderName
	}
	if d.Factory == nil {
		return ErrNilFactory
	}
	return nil
}

// Provide is a convenience constructor for a ProviderDescriptor.
func Provide(name string, factory Factory, deps ...string) ProviderDescriptor {
	return ProviderDescriptor{Name: name, Factory: factory, Dependencies: deps}
}
