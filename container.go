package loom

import (
	"fmt"
	"reflect"
)

// Container holds the realized singletons keyed by provider identity.
//
// Instances are created in resolved order during build, each factory
// receiving its dependencies' already-built instances. After build completes
// the identity map is never written again, so concurrent readers (request
// handlers resolved later) look instances up without locking. There is no
// rebuild or hot-swap mid-process.
type Container struct {
	instances map[string]any
	order     []string
}

// buildContainer instantiates every provider's factory exactly once, in
// resolved order. A factory error aborts the build; no lifecycle hook has
// run at that point, so there is nothing to roll back.
func buildContainer(app *Application, comp *composition, order []string) (*Container, error) {
	c := &Container{
		instances: make(map[string]any, len(order)),
		order:     order,
	}

	for _, name := range order {
		desc, _ := comp.registry.lookup(name)

		deps := make(map[string]any, len(desc.Dependencies))
		for _, dep := range desc.Dependencies {
			deps[dep] = c.instances[dep]
		}

		instance, err := desc.Factory(app, deps)
		if err != nil {
			return nil, fmt.Errorf("failed to construct provider %q: %w", name, err)
		}
		c.instances[name] = instance
	}

	return c, nil
}

// Get retrieves the singleton registered under name. A missing identity
// yields UnresolvedDependencyError: at runtime this indicates a caller
// requesting a type outside the composed graph, since structural gaps were
// already rejected during resolution.
func (c *Container) Get(name string) (any, error) {
	instance, exists := c.instances[name]
	if !exists {
		return nil, &UnresolvedDependencyError{Missing: name}
	}
	return instance, nil
}

// Has reports whether an identity was registered and built.
func (c *Container) Has(name string) bool {
	_, exists := c.instances[name]
	return exists
}

// Names returns provider identities in construction order.
func (c *Container) Names() []string {
	return c.order
}

// Get retrieves a singleton by identity with a typed assertion.
func Get[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: provider %q of type %T requested as %T",
			ErrServiceIncompatible, name, instance, zero)
	}
	return typed, nil
}

// GetInto retrieves a singleton and assigns it to target, which must be a
// non-nil pointer. Assignment supports interface targets the instance
// implements, struct targets with a settable interface field the instance
// implements, and direct or dereferenced assignable types.
func (c *Container) GetInto(name string, target any) error {
	instance, err := c.Get(name)
	if err != nil {
		return err
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return ErrTargetNotPointer
	}
	if !targetValue.Elem().IsValid() {
		return ErrTargetValueInvalid
	}

	instanceType := reflect.TypeOf(instance)
	targetType := targetValue.Elem().Type()

	// Case 1: target is an interface the instance implements
	if targetType.Kind() == reflect.Interface && instanceType.Implements(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(instance))
		return nil
	}

	// Case 2: target is a struct with an embedded interface field
	if targetType.Kind() == reflect.Struct {
		for i := 0; i < targetType.NumField(); i++ {
			field := targetType.Field(i)
			if field.Type.Kind() == reflect.Interface && instanceType.Implements(field.Type) {
				fieldValue := targetValue.Elem().Field(i)
				if fieldValue.CanSet() {
					fieldValue.Set(reflect.ValueOf(instance))
					return nil
				}
			}
		}
	}

	// Case 3: direct assignment or pointer dereference
	if instanceType.AssignableTo(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(instance))
		return nil
	} else if instanceType.Kind() == reflect.Ptr && instanceType.Elem().AssignableTo(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(instance).Elem())
		return nil
	}

	return fmt.Errorf("%w: provider %q of type %s cannot be assigned to %s",
		ErrServiceIncompatible, name, instanceType, targetType)
}
