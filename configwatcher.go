package loom

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches configuration files while the application is
// Running and emits config.changed CloudEvents on modification. It only
// notifies: the provider graph is never rebuilt mid-process, so consumers
// decide for themselves whether a change warrants a restart.
type ConfigWatcher struct {
	app     *Application
	paths   []string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newConfigWatcher(app *Application, paths []string) *ConfigWatcher {
	return &ConfigWatcher{app: app, paths: paths}
}

// Start begins watching. Called by the application on entering Running.
func (w *ConfigWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w.watcher = watcher
	w.done = make(chan struct{})

	for _, path := range w.paths {
		if err := watcher.Add(path); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
	}

	go w.loop()
	return nil
}

func (w *ConfigWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				w.app.logger.Info("Config file changed", "file", event.Name)
				w.app.emitEvent(context.Background(), EventTypeConfigChanged,
					map[string]any{"file": event.Name}, nil)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.app.logger.Error("Config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Stop ends watching. Called by the application before teardown begins.
func (w *ConfigWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	close(w.done)
	_ = w.watcher.Close()
	w.watcher = nil
}
