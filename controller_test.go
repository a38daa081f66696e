package loom

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usersController struct {
	greeting string
}

func (c *usersController) Mount(r chi.Router) {
	r.Get("/users", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(c.greeting))
	})
}

func TestMountControllers(t *testing.T) {
	module := &ModuleDescriptor{
		Name: "users",
		Controllers: []ProviderDescriptor{{
			Name: "UsersController",
			Factory: func(app *Application, deps map[string]any) (any, error) {
				return &usersController{greeting: "hello"}, nil
			},
		}},
	}

	app := newTestApp(WithModules(module))
	require.NoError(t, app.Init())

	router := chi.NewRouter()
	require.NoError(t, MountControllers(app, router))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())
}

func TestMountControllersOrderFollowsComposition(t *testing.T) {
	var mounted []string
	controller := func(name string) ProviderDescriptor {
		return ProviderDescriptor{
			Name: name,
			Factory: func(app *Application, deps map[string]any) (any, error) {
				return &orderedController{name: name, mounted: &mounted}, nil
			},
		}
	}

	imported := &ModuleDescriptor{Name: "imported", Controllers: []ProviderDescriptor{controller("First")}}
	root := &ModuleDescriptor{
		Name:        "app",
		Imports:     []*ModuleDescriptor{imported},
		Controllers: []ProviderDescriptor{controller("Second")},
	}

	app := newTestApp(WithModules(root))
	require.NoError(t, app.Init())
	require.NoError(t, MountControllers(app, chi.NewRouter()))

	assert.Equal(t, []string{"First", "Second"}, mounted)
}

type orderedController struct {
	name    string
	mounted *[]string
}

func (c *orderedController) Mount(r chi.Router) {
	*c.mounted = append(*c.mounted, c.name)
}

func TestMountControllersRejectsNonController(t *testing.T) {
	module := &ModuleDescriptor{
		Name: "broken",
		Controllers: []ProviderDescriptor{{
			Name: "NotAController",
			Factory: func(app *Application, deps map[string]any) (any, error) {
				return &struct{}{}, nil
			},
		}},
	}

	app := newTestApp(WithModules(module))
	require.NoError(t, app.Init())

	err := MountControllers(app, chi.NewRouter())
	assert.ErrorIs(t, err, ErrNotAController)
}

func TestMountControllersBeforeBuild(t *testing.T) {
	app := newTestApp()
	assert.ErrorIs(t, MountControllers(app, chi.NewRouter()), ErrContainerNotBuilt)
}
