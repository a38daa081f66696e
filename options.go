package loom

import "time"

// Option configures an Application during construction.
type Option func(*Application)

// WithLogger sets the application logger.
func WithLogger(logger Logger) Option {
	return func(app *Application) {
		app.logger = logger
	}
}

// WithConfigProvider sets the application-level configuration provider.
func WithConfigProvider(cp ConfigProvider) Option {
	return func(app *Application) {
		app.cfgProvider = cp
	}
}

// WithConfigFeeders replaces the default feeder set.
func WithConfigFeeders(feeders ...Feeder) Option {
	return func(app *Application) {
		app.feeders = feeders
	}
}

// WithModules registers modules on the root import tree.
func WithModules(modules ...*ModuleDescriptor) Option {
	return func(app *Application) {
		app.root.Imports = append(app.root.Imports, modules...)
	}
}

// WithProviders declares providers directly on the root module.
func WithProviders(providers ...ProviderDescriptor) Option {
	return func(app *Application) {
		app.root.Providers = append(app.root.Providers, providers...)
	}
}

// WithObserver registers an observer before any lifecycle event fires,
// optionally filtered by event types.
func WithObserver(observer Observer, eventTypes ...string) Option {
	return func(app *Application) {
		app.observers[observer.ObserverID()] = newObserverRegistration(observer, eventTypes)
	}
}

// WithShutdownTimeout bounds graceful teardown. Values <= 0 fall back to
// DefaultShutdownTimeout.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		app.shutdownTimeout = timeout
	}
}

// WithConfigWatcher watches the given config files once the application is
// Running, emitting config.changed CloudEvents on modification. Watching
// never rebuilds the provider graph.
func WithConfigWatcher(paths ...string) Option {
	return func(app *Application) {
		app.watcher = newConfigWatcher(app, paths)
	}
}
