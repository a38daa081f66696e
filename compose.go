package loom

import "fmt"

// composition is the flattened view of a module tree: one registry, one
// controller list, the module order used by the ModuleInit/ModuleDestroy
// phases, and the per-module visibility sets the resolver enforces.
type composition struct {
	registry    *providerRegistry
	moduleOrder []*ModuleDescriptor
	controllers []string

	// visibility maps a module name to the set of identities addressable
	// from providers declared in that module: its own declarations plus
	// the exports of its direct imports.
	visibility map[string]map[string]struct{}

	configSections map[string]ConfigProvider
}

// compose flattens the module tree rooted at root. Imports are traversed
// depth-first, each imported module composing before its importer, so the
// registry's declaration order mirrors first-use-first-built semantics.
// Re-importing the same descriptor from different branches flattens it once.
//
// Composition is purely structural: no factory runs and no hook fires. All
// duplicate-identity and export errors are surfaced here.
func compose(root *ModuleDescriptor) (*composition, error) {
	if root == nil {
		return nil, ErrNilModule
	}

	comp := &composition{
		registry:       newProviderRegistry(),
		visibility:     make(map[string]map[string]struct{}),
		configSections: make(map[string]ConfigProvider),
	}

	seen := make(map[*ModuleDescriptor]bool)
	if err := comp.flatten(root, seen); err != nil {
		return nil, err
	}

	comp.registry.close()
	return comp, nil
}

func (c *composition) flatten(m *ModuleDescriptor, seen map[*ModuleDescriptor]bool) error {
	if m == nil {
		return ErrNilModule
	}
	if seen[m] {
		return nil
	}
	seen[m] = true

	// Distinct descriptors must not share a name: visibility is keyed by
	// module name, so a collision would silently merge two scopes.
	if _, taken := c.visibility[m.Name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, m.Name)
	}

	for _, imported := range m.Imports {
		if err := c.flatten(imported, seen); err != nil {
			return err
		}
	}

	visible := make(map[string]struct{})

	for _, p := range m.Providers {
		if err := c.registry.register(m.Name, p); err != nil {
			return err
		}
		visible[p.Name] = struct{}{}
	}
	for _, ctrl := range m.Controllers {
		if err := c.registry.register(m.Name, ctrl); err != nil {
			return err
		}
		visible[ctrl.Name] = struct{}{}
		c.controllers = append(c.controllers, ctrl.Name)
	}

	// Exports must name the module's own declarations; an export of an
	// identity the module never declared is a composition error.
	for _, exported := range m.Exports {
		if !m.declares(exported) {
			return fmt.Errorf("%w: %q exported by module %q", ErrUnknownExport, exported, m.Name)
		}
	}

	for _, imported := range m.Imports {
		for _, exported := range imported.Exports {
			visible[exported] = struct{}{}
		}
	}

	c.visibility[m.Name] = visible
	c.moduleOrder = append(c.moduleOrder, m)

	for section, provider := range m.ConfigSections {
		if provider == nil {
			return fmt.Errorf("%w: section %q in module %q", ErrConfigProviderNil, section, m.Name)
		}
		c.configSections[section] = provider
	}

	return nil
}

// visibleFrom reports whether identity is addressable from the module that
// declared requester.
func (c *composition) visibleFrom(requester, identity string) bool {
	owner, ok := c.registry.owner[requester]
	if !ok {
		return false
	}
	_, visible := c.visibility[owner][identity]
	return visible
}
