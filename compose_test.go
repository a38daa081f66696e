package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moduleNames(comp *composition) []string {
	names := make([]string, 0, len(comp.moduleOrder))
	for _, m := range comp.moduleOrder {
		names = append(names, m.Name)
	}
	return names
}

func TestComposeFlattensImportsBeforeImporter(t *testing.T) {
	rec := &hookRecorder{}

	shared := &ModuleDescriptor{
		Name:      "shared",
		Providers: []ProviderDescriptor{svcProvider("cache", rec)},
		Exports:   []string{"cache"},
	}
	feature := &ModuleDescriptor{
		Name:      "feature",
		Imports:   []*ModuleDescriptor{shared},
		Providers: []ProviderDescriptor{svcProvider("worker", rec, "cache")},
	}
	root := &ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{feature}}

	comp, err := compose(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"shared", "feature", "root"}, moduleNames(comp))
	assert.Equal(t, []string{"cache", "worker"}, comp.registry.names())
}

// A module imported from two branches of the tree must flatten exactly once.
func TestComposeDeduplicatesDiamondImports(t *testing.T) {
	rec := &hookRecorder{}

	shared := &ModuleDescriptor{
		Name:      "shared",
		Providers: []ProviderDescriptor{svcProvider("cache", rec)},
		Exports:   []string{"cache"},
	}
	left := &ModuleDescriptor{
		Name:      "left",
		Imports:   []*ModuleDescriptor{shared},
		Providers: []ProviderDescriptor{svcProvider("leftWorker", rec, "cache")},
	}
	right := &ModuleDescriptor{
		Name:      "right",
		Imports:   []*ModuleDescriptor{shared},
		Providers: []ProviderDescriptor{svcProvider("rightWorker", rec, "cache")},
	}
	root := &ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{left, right}}

	comp, err := compose(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"shared", "left", "right", "root"}, moduleNames(comp))
	assert.Equal(t, []string{"cache", "leftWorker", "rightWorker"}, comp.registry.names())

	// cache appears once even though shared is reachable twice
	count := 0
	for _, name := range comp.registry.names() {
		if name == "cache" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestComposeRejectsCollidingIdentitiesAcrossModules(t *testing.T) {
	rec := &hookRecorder{}

	a := &ModuleDescriptor{
		Name:      "a",
		Providers: []ProviderDescriptor{svcProvider("store", rec)},
		Exports:   []string{"store"},
	}
	b := &ModuleDescriptor{
		Name:      "b",
		Providers: []ProviderDescriptor{svcProvider("store", rec)},
		Exports:   []string{"store"},
	}
	root := &ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{a, b}}

	_, err := compose(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateProvider)
}

func TestComposeRejectsUnknownExport(t *testing.T) {
	m := &ModuleDescriptor{
		Name:    "m",
		Exports: []string{"ghost"},
	}

	_, err := compose(&ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{m}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownExport)
}

func TestComposeVisibility(t *testing.T) {
	rec := &hookRecorder{}

	shared := &ModuleDescriptor{
		Name: "shared",
		Providers: []ProviderDescriptor{
			svcProvider("cache", rec),
			svcProvider("internals", rec),
		},
		Exports: []string{"cache"},
	}
	feature := &ModuleDescriptor{
		Name:      "feature",
		Imports:   []*ModuleDescriptor{shared},
		Providers: []ProviderDescriptor{svcProvider("worker", rec)},
	}
	root := &ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{feature}}

	comp, err := compose(root)
	require.NoError(t, err)

	// exported provider of an import is visible, unexported is not
	assert.True(t, comp.visibleFrom("worker", "cache"))
	assert.False(t, comp.visibleFrom("worker", "internals"))

	// own declarations are always visible
	assert.True(t, comp.visibleFrom("internals", "cache"))
	assert.True(t, comp.visibleFrom("cache", "internals"))

	// no import relationship, no visibility even when exported
	assert.False(t, comp.visibleFrom("cache", "worker"))
}

func TestComposeCollectsControllers(t *testing.T) {
	rec := &hookRecorder{}

	api := &ModuleDescriptor{
		Name:      "api",
		Providers: []ProviderDescriptor{svcProvider("userService", rec)},
		Controllers: []ProviderDescriptor{
			func() ProviderDescriptor {
				d := svcProvider("userController", rec, "userService")
				d.Controller = true
				return d
			}(),
		},
	}

	comp, err := compose(&ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{api}})
	require.NoError(t, err)

	assert.Equal(t, []string{"userController"}, comp.controllers)
	// controllers participate in the registry like any provider
	assert.Equal(t, []string{"userService", "userController"}, comp.registry.names())
}

func TestComposeRejectsDuplicateModuleName(t *testing.T) {
	rec := &hookRecorder{}
	a := &ModuleDescriptor{Name: "shared", Providers: []ProviderDescriptor{svcProvider("a", rec)}}
	b := &ModuleDescriptor{Name: "shared", Providers: []ProviderDescriptor{svcProvider("b", rec)}}

	_, err := compose(&ModuleDescriptor{Name: "root", Imports: []*ModuleDescriptor{a, b}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateModule)
	assert.Equal(t, ExitCodeStructural, ExitCode(err))
}

func TestComposeNilModule(t *testing.T) {
	_, err := compose(nil)
	assert.ErrorIs(t, err, ErrNilModule)
}
