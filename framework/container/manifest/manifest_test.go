package manifest_test

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/manifest"
)

func load(t *testing.T, name string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(os.DirFS("testdata"), name)
	require.NoError(t, err)
	return m
}

// ── Parse ─────────────────────────────────────────────────────────────────────

func TestLoad_Services(t *testing.T) {
	m := load(t, "services.yaml")

	require.Len(t, m.Services, 4)
	assert.Equal(t, manifest.Service{Name: "config", Factory: "config"}, m.Services[0])
	assert.Equal(t, "postgres", m.Services[1].Factory)
	assert.Equal(t, []string{"session", "container"}, m.Services[3].DependsOn)
	assert.Equal(t, map[string]string{"database": "db"}, m.Aliases)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := manifest.Load(fstest.MapFS{}, "nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestParse_Empty(t *testing.T) {
	m, err := manifest.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Services)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "services:\n  - name: a\n    lifetime: scoped\n", "lifetime"},
		{"missing name", "services:\n  - factory: x\n", "missing required field: name"},
		{"bad lifecycle", "services:\n  - name: a\n    lifecycle: forever\n", "forever"},
		{"duplicate", "services:\n  - name: a\n  - name: a\n", "already registered"},
		{"blank dependency", "services:\n  - name: a\n    depends_on: ['']\n", "blank dependency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// ── Apply ─────────────────────────────────────────────────────────────────────

type db struct{ dsn string }

func TestApply_RegistersGraph(t *testing.T) {
	m := load(t, "services.yaml")
	catalog := manifest.StubCatalog(m)
	catalog["postgres"] = func(deps []any) (any, error) {
		return &db{dsn: deps[0].(string)}, nil
	}

	c := container.New()
	require.NoError(t, m.Apply(c, catalog))
	require.NoError(t, c.Validate())

	viaAlias, err := container.Resolve[*db](c, "database")
	require.NoError(t, err)
	assert.Equal(t, "config", viaAlias.dsn)

	direct, err := container.Resolve[*db](c, "db")
	require.NoError(t, err)
	assert.Same(t, direct, viaAlias)

	info, err := c.Describe("session")
	require.NoError(t, err)
	assert.Equal(t, container.Scoped, info.Lifecycle)

	_, err = c.Resolve("handler")
	assert.ErrorIs(t, err, container.ErrScopeRequired)

	got, err := c.ResolveIn(c.BeginScope(), "handler")
	require.NoError(t, err)
	assert.Equal(t, "handler", got)
}

func TestApply_UnknownFactory(t *testing.T) {
	m := load(t, "services.yaml")

	err := m.Apply(container.New(), manifest.Catalog{
		"config": func([]any) (any, error) { return "cfg", nil },
	})
	require.ErrorIs(t, err, manifest.ErrUnknownFactory)
	assert.Contains(t, err.Error(), "[db]")
}

func TestApply_Duplicate(t *testing.T) {
	m := load(t, "services.yaml")
	c := container.New()
	require.NoError(t, c.Instance("db", "already here"))

	err := m.Apply(c, manifest.StubCatalog(m))
	assert.ErrorIs(t, err, container.ErrDuplicateService)
}

func TestApply_ValidateReportsEveryProblem(t *testing.T) {
	m := load(t, "captive.yaml")
	c := container.New()
	require.NoError(t, m.Apply(c, manifest.StubCatalog(m)))

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrIllegalScopedInjection)
	assert.ErrorIs(t, err, container.ErrUnresolvedDependency)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "a -> b -> a")
}
