package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walflow/internal/domain"
	"walflow/internal/repository/sqlite"
)

func newTestPlans(t *testing.T) (*PlanService, *GraphService) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc, _ := newTestService(t)
	return NewPlanService(repo, svc, nil), svc
}

func seed(t *testing.T, svc *GraphService) {
	t.Helper()
	tank, err := svc.AddNode(domain.KindTank, domain.Position{X: 10}, nil)
	require.NoError(t, err)
	valve, err := svc.AddNode(domain.KindValve, domain.Position{X: 200}, nil)
	require.NoError(t, err)
	_, err = svc.AddEdge(tank, "outlet-0", valve, "inlet-0", nil)
	require.NoError(t, err)
}

func TestPlanLibrary(t *testing.T) {
	plans, svc := newTestPlans(t)
	ctx := context.Background()
	seed(t, svc)
	saved := svc.Snapshot()

	info, err := plans.Save(ctx, "loop")
	require.NoError(t, err)
	assert.Equal(t, 2, info.NodeCount)

	svc.Clear()
	n, _ := svc.Counts()
	require.Zero(t, n)

	_, err = plans.Load(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, svc.Snapshot())

	list, err := plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, plans.Delete(ctx, info.ID))
	_, err = plans.Load(ctx, info.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanLibraryNotConfigured(t *testing.T) {
	svc, _ := newTestService(t)
	plans := NewPlanService(nil, svc, nil)
	_, err := plans.Save(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoPlanLibrary)
	_, err = plans.List(context.Background())
	assert.ErrorIs(t, err, ErrNoPlanLibrary)
}

func TestPlanImportExport(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			plans, svc := newTestPlans(t)
			seed(t, svc)
			want := svc.Snapshot()

			var buf bytes.Buffer
			require.NoError(t, plans.Export(&buf, format))

			svc.Clear()
			loaded, err := plans.Import(&buf, format)
			require.NoError(t, err)
			assert.True(t, loaded)
			assert.Equal(t, want, svc.Snapshot())
		})
	}
}

func TestPlanImportTolerance(t *testing.T) {
	plans, svc := newTestPlans(t)
	seed(t, svc)
	before := svc.Snapshot()

	t.Run("document without edges is a no-op", func(t *testing.T) {
		loaded, err := plans.Import(strings.NewReader(`{"nodes": []}`), "json")
		require.NoError(t, err)
		assert.False(t, loaded)
		assert.Equal(t, before, svc.Snapshot())
	})

	t.Run("unparseable document", func(t *testing.T) {
		_, err := plans.Import(strings.NewReader(`not json`), "json")
		assert.ErrorIs(t, err, domain.ErrInvalidGraph)
		assert.Equal(t, before, svc.Snapshot())
	})

	t.Run("dangling edge keeps prior graph", func(t *testing.T) {
		doc := `{"nodes": [], "edges": [{"id": "Pipe 1", "source": "a", "target": "b", "data": {}}]}`
		_, err := plans.Import(strings.NewReader(doc), "json")
		assert.ErrorIs(t, err, domain.ErrInvalidGraph)
		assert.Equal(t, before, svc.Snapshot())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := plans.Import(strings.NewReader(`{}`), "xml")
		assert.Error(t, err)
	})
}

func TestPlanFiles(t *testing.T) {
	plans, svc := newTestPlans(t)
	seed(t, svc)
	want := svc.Snapshot()

	path := filepath.Join(t.TempDir(), "loop.yaml")
	require.NoError(t, plans.ExportFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "global_settings:")

	svc.Clear()
	loaded, err := plans.ImportFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, want, svc.Snapshot())

	_, err = plans.ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
