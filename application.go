package loom

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Application owns the composed module tree, the built container and the
// lifecycle orchestrator. It is constructed by New, populated through
// registration calls (typically emitted by code-generation tooling), and
// driven by Run. There is no process-wide implicit global.
type Application struct {
	root        *ModuleDescriptor
	cfgProvider ConfigProvider
	cfgSections map[string]ConfigProvider
	feeders     []Feeder
	logger      Logger

	comp      *composition
	container *Container
	orch      *orchestrator

	shutdownTimeout time.Duration
	watcher         *ConfigWatcher

	observers  map[string]*observerRegistration
	observerMu sync.RWMutex

	mu          sync.Mutex
	initialized bool
}

// New creates an application, applying the given options. Defaults: a
// stderr slog logger, the ConfigFeeders feeder set, and a 30 second
// shutdown timeout.
func New(opts ...Option) *Application {
	app := &Application{
		root:            &ModuleDescriptor{Name: "root"},
		cfgSections:     make(map[string]ConfigProvider),
		feeders:         ConfigFeeders,
		shutdownTimeout: DefaultShutdownTimeout,
		observers:       make(map[string]*observerRegistration),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		app.logger = DefaultLogger()
	}
	return app
}

// RegisterModule adds a module to the root import tree. Must be called
// before Init; registration closes once composition begins.
func (app *Application) RegisterModule(module *ModuleDescriptor) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if module == nil {
		return ErrNilModule
	}
	if app.initialized {
		return fmt.Errorf("%w: cannot register module %q", ErrRegistryClosed, module.Name)
	}
	app.root.Imports = append(app.root.Imports, module)
	return nil
}

// RegisterProvider declares a provider directly on the root module. This is
// the registration surface consumed by code-generation tooling.
func (app *Application) RegisterProvider(desc ProviderDescriptor) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.initialized {
		return fmt.Errorf("%w: cannot register provider %q", ErrRegistryClosed, desc.Name)
	}
	if err := desc.validate(); err != nil {
		return err
	}
	app.root.Providers = append(app.root.Providers, desc)
	return nil
}

// RegisterConfigSection registers an application-level configuration
// section fed before ModuleInit.
func (app *Application) RegisterConfigSection(section string, cp ConfigProvider) {
	app.cfgSections[section] = cp
}

// GetConfigSection retrieves a registered configuration section.
func (app *Application) GetConfigSection(section string) (ConfigProvider, error) {
	cp, exists := app.cfgSections[section]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigSectionNotFound, section)
	}
	return cp, nil
}

// ConfigProvider returns the application-level config provider, if any.
func (app *Application) ConfigProvider() ConfigProvider {
	return app.cfgProvider
}

// Logger returns the application logger.
func (app *Application) Logger() Logger {
	return app.logger
}

// Container returns the built container. Nil before Init succeeds.
func (app *Application) Container() *Container {
	return app.container
}

// Phase returns the current lifecycle phase.
func (app *Application) Phase() LifecyclePhase {
	if app.orch == nil {
		return PhaseUninitialized
	}
	return app.orch.currentPhase()
}

// GetService retrieves a built singleton and assigns it to target using the
// container's assignment rules.
func (app *Application) GetService(name string, target any) error {
	if app.container == nil {
		return ErrContainerNotBuilt
	}
	return app.container.GetInto(name, target)
}

// Init composes the module tree, resolves the construction order, feeds
// configuration, builds the container and drives the ModuleInit and
// ServiceInit phases. All structural errors (duplicate, unresolved,
// circular) surface here, before any factory or hook runs; a hook failure
// rolls back the already-initialized subset and is returned.
func (app *Application) Init() error {
	app.mu.Lock()
	if app.initialized {
		app.mu.Unlock()
		return ErrApplicationAlreadyStarted
	}
	app.initialized = true
	app.mu.Unlock()

	comp, err := compose(app.root)
	if err != nil {
		return fmt.Errorf("failed to compose modules: %w", err)
	}
	app.comp = comp

	if err := app.loadConfigSections(comp); err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	app.emitEvent(context.Background(), EventTypeConfigLoaded, nil, nil)

	order, err := resolveOrder(comp)
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	app.logger.Debug("Provider construction order", "order", order)

	container, err := buildContainer(app, comp, order)
	if err != nil {
		return err
	}
	app.container = container

	app.orch = newOrchestrator(app, comp, container, order)
	if err := app.orch.initPhases(context.Background()); err != nil {
		return err
	}

	return nil
}

// Start drives the ApplicationStart phase and transitions to Running. A
// start hook failure rolls back every initialized provider and module.
func (app *Application) Start() error {
	if app.orch == nil {
		return ErrApplicationNotInitialized
	}
	if app.orch.currentPhase() != PhaseServiceInit {
		return ErrApplicationAlreadyStarted
	}

	if err := app.orch.startPhase(context.Background()); err != nil {
		return err
	}

	if app.watcher != nil {
		if err := app.watcher.Start(); err != nil {
			app.logger.Warn("Config watcher failed to start", "error", err)
		}
	}

	return nil
}

// Stop hands control to the shutdown coordinator, which drives the
// teardown phases bounded by the shutdown timeout. Per-hook failures are
// logged and non-fatal; only a timeout changes the returned error.
func (app *Application) Stop() error {
	if app.orch == nil {
		return ErrApplicationNotInitialized
	}
	if app.orch.currentPhase() != PhaseRunning {
		return ErrApplicationNotStarted
	}

	if app.watcher != nil {
		app.watcher.Stop()
	}

	coordinator := newShutdownCoordinator(app.shutdownTimeout, app.logger)
	return coordinator.shutdown(app.orch)
}

// Run drives the full lifecycle: Init, Start, block in Running until a
// termination signal arrives, then Stop. The returned error maps to a
// process exit code via ExitCode; on startup failure the process never
// enters Running and the failing provider and phase are reported.
func (app *Application) Run() error {
	if err := app.Init(); err != nil {
		app.emitEvent(context.Background(), EventTypeApplicationFailed, map[string]any{"error": err.Error()}, nil)
		return err
	}

	if err := app.Start(); err != nil {
		app.emitEvent(context.Background(), EventTypeApplicationFailed, map[string]any{"error": err.Error()}, nil)
		return err
	}

	sig := waitForSignal()
	app.logger.Info("Received signal, shutting down", "signal", sig)

	return app.Stop()
}
