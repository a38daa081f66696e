package loom

import "fmt"

// providerRegistry is the flat table of provider descriptors produced by
// composition. Declaration order is preserved for deterministic resolution.
// The registry is append-only while open and read-only once composition
// closes it.
type providerRegistry struct {
	order  []string
	table  map[string]ProviderDescriptor
	owner  map[string]string // identity -> declaring module name
	closed bool
}

func newProviderRegistry() *providerRegistry {
	return &providerRegistry{
		table: make(map[string]ProviderDescriptor),
		owner: make(map[string]string),
	}
}

// register appends a descriptor declared by the named module. Duplicate
// identities are a startup error regardless of which modules declared them.
func (r *providerRegistry) register(moduleName string, desc ProviderDescriptor) error {
	if r.closed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryClosed, desc.Name)
	}
	if err := desc.validate(); err != nil {
		return fmt.Errorf("module %q: %w", moduleName, err)
	}
	if _, exists := r.table[desc.Name]; exists {
		return &DuplicateProviderError{Identity: desc.Name, Module: moduleName}
	}
	r.order = append(r.order, desc.Name)
	r.table[desc.Name] = desc
	r.owner[desc.Name] = moduleName
	return nil
}

func (r *providerRegistry) lookup(name string) (ProviderDescriptor, bool) {
	desc, ok := r.table[name]
	return desc, ok
}

// names returns identities in declaration order.
func (r *providerRegistry) names() []string {
	return r.order
}

func (r *providerRegistry) close() {
	r.closed = true
}
