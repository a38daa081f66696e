package loom

import "slices"

// Three-color marks for the resolver's depth-first traversal.
type visitMark uint8

const (
	markUnvisited visitMark = iota
	markVisiting
	markDone
)

// resolveOrder computes the total construction order over the composed
// registry: for every provider P with dependency D, D appears strictly
// before P. Ties among independent providers keep declaration order, so the
// output is deterministic for a given module tree.
//
// Resolution is purely computational. Unresolved and circular dependencies
// are reported here, before any factory or hook runs, so startup fails fast
// with zero partial state.
func resolveOrder(comp *composition) ([]string, error) {
	marks := make(map[string]visitMark, len(comp.registry.names()))
	order := make([]string, 0, len(comp.registry.names()))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case markDone:
			return nil
		case markVisiting:
			// Back edge: the cycle is the path suffix starting at the
			// revisited node, with that node repeated to close it.
			start := slices.Index(path, name)
			cycle := append(slices.Clone(path[start:]), name)
			return &CircularDependencyError{Cycle: cycle}
		}

		marks[name] = markVisiting
		path = append(path, name)

		desc, _ := comp.registry.lookup(name)
		for _, dep := range desc.Dependencies {
			if _, registered := comp.registry.lookup(dep); !registered {
				return &UnresolvedDependencyError{Requester: name, Missing: dep}
			}
			if !comp.visibleFrom(name, dep) {
				return &UnresolvedDependencyError{Requester: name, Missing: dep}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		marks[name] = markDone
		order = append(order, name)
		return nil
	}

	for _, name := range comp.registry.names() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return order, nil
}
