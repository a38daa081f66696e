// Package loom provides the dependency-injection container and lifecycle
// orchestrator at the core of the loom web-application framework.
//
// Applications are composed from a tree of module descriptors. Each module
// declares providers (injectable services), controllers (providers that
// additionally expose routable operations), imports of other modules, and
// exports controlling which of its providers importers may depend on.
// Composition flattens the tree into one registry, resolution computes a
// deterministic construction order, the container instantiates each
// singleton exactly once, and the orchestrator drives the strictly ordered
// lifecycle phases across startup and shutdown.
//
// Basic usage:
//
//	app := loom.New(loom.WithModules(rootModule))
//	os.Exit(loom.ExitCode(app.Run()))
package loom

import "context"

// ModuleHooks holds the optional module-level lifecycle callbacks.
// OnInit is invoked during the ModuleInit phase in composition order
// (imported modules before importers); OnDestroy during ModuleDestroy in
// reverse composition order.
type ModuleHooks struct {
	OnInit    func(ctx context.Context, app *Application) error
	OnDestroy func(ctx context.Context, app *Application) error
}

// ModuleDescriptor is a named grouping of providers and controllers plus the
// import/export declarations that control cross-module visibility.
// Descriptors are composed recursively and never mutated after composition
// begins. The same descriptor may be imported from several branches of the
// tree; composition flattens it exactly once.
type ModuleDescriptor struct {
	// Name identifies the module in logs, errors and ordering.
	Name string

	// Imports lists the modules whose exported providers this module may
	// depend on. Imported modules compose, initialize and start before the
	// importing module.
	Imports []*ModuleDescriptor

	// Providers declared by this module.
	Providers []ProviderDescriptor

	// Controllers declared by this module. They participate in dependency
	// injection identically to Providers and are additionally collected
	// into the flat controller list.
	Controllers []ProviderDescriptor

	// Exports names the subset of this module's providers that importing
	// modules may depend on. Identities not listed here are private to
	// this module.
	Exports []string

	// Hooks holds the optional module-level init and destroy callbacks.
	Hooks ModuleHooks

	// ConfigSections maps section names to configuration providers fed by
	// the application's config feeders before ModuleInit runs.
	ConfigSections map[string]ConfigProvider
}

// declares reports whether the module declares the identity as a provider or
// controller.
func (m *ModuleDescriptor) declares(identity string) bool {
	for _, p := range m.Providers {
		if p.Name == identity {
			return true
		}
	}
	for _, c := range m.Controllers {
		if c.Name == identity {
			return true
		}
	}
	return false
}
