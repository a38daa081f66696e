package loom

import (
	"fmt"

	"github.com/go-chi/chi/v5"
)

// Controller is the contract the HTTP layer consumes from controller
// providers. The core never parses or routes HTTP itself; it only resolves
// controller instances and hands them a router to mount their operations on.
type Controller interface {
	Mount(r chi.Router)
}

// MountControllers resolves every controller in the composed graph and
// mounts it on r, in construction order. A controller provider whose
// instance does not implement Controller is a wiring error.
func MountControllers(app *Application, r chi.Router) error {
	if app.container == nil {
		return ErrContainerNotBuilt
	}

	for _, name := range app.comp.controllers {
		instance, err := app.container.Get(name)
		if err != nil {
			return err
		}
		ctrl, ok := instance.(Controller)
		if !ok {
			return fmt.Errorf("%w: %q of type %T", ErrNotAController, name, instance)
		}
		ctrl.Mount(r)
		app.logger.Debug("Mounted controller", "controller", name)
	}
	return nil
}
