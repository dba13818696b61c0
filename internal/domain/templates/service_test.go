package templates

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
)

type fakeStore struct {
	seq  int64
	byID map[int64]Template
}

func newFakeStore() *fakeStore { return &fakeStore{byID: map[int64]Template{}} }

func (f *fakeStore) Create(_ context.Context, t Template) (*Template, error) {
	f.seq++
	t.ID = f.seq
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Template, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (f *fakeStore) Update(_ context.Context, t Template) (*Template, error) {
	if _, ok := f.byID[t.ID]; !ok {
		return nil, nil
	}
	f.byID[t.ID] = t
	out := t
	return &out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeStore) List(_ context.Context, _ Filter) ([]Template, error) {
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.byID[id])
	}
	return out, nil
}

type fakeLookup struct {
	byID map[int64]materials.Material
}

func (f *fakeLookup) GetManyByIDs(_ context.Context, ids []int64) ([]materials.Material, error) {
	var out []materials.Material
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store *fakeStore, lookup *fakeLookup) *Service {
	return NewService(store, lookup, testLogger(), nil)
}

func TestServiceCreateComputesAndClassifies(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Name: "caño 20x20", Category: "metal", Price: 100},
	}}
	svc := newTestService(store, lookup)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:        "Mesa ratona",
		Items:       []LineItem{{MaterialID: ptrI64(1), Quantity: 2, Category: "metal"}},
		Markups:     map[string]float64{"metal": 20},
		Consumables: map[string]float64{"metal": 10},
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.InDelta(t, 210.0, created.CostTotal, 1e-9)
	assert.InDelta(t, 252.0, created.FinalPrice, 1e-9)
	assert.InDelta(t, 42.0, created.Profit, 1e-9)
	assert.Equal(t, CategoryHerreria, created.Category)
	assert.Equal(t, "Otro", created.ProjectType)
}

func TestServiceCreateKeepsExplicitCategory(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLookup{})

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Plantilla vacía",
		Category: CategoryPintura,
	})
	require.NoError(t, err)
	assert.Equal(t, CategoryPintura, created.Category)
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLookup{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestServiceUpdatePartialSemantics(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Category: "metal", Price: 100},
	}}
	svc := newTestService(store, lookup)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:    "Reja",
		Items:   []LineItem{{MaterialID: ptrI64(1), Quantity: 1, Category: "metal"}},
		Markups: map[string]float64{"metal": 0},
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, created.FinalPrice, 1e-9)

	// Only markups in the payload: name and items must survive.
	markups := map[string]float64{"metal": 50}
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Markups: &markups})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Reja", updated.Name)
	assert.Len(t, updated.Items, 1)
	assert.InDelta(t, 150.0, updated.FinalPrice, 1e-9)
	assert.InDelta(t, 50.0, updated.Profit, 1e-9)
}

func TestServiceUpdateMissingReturnsNil(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLookup{})

	updated, err := svc.Update(context.Background(), 404, UpdateInput{})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestServiceDuplicateRecomputesPricing(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Category: "metal", Price: 100},
	}}
	svc := newTestService(store, lookup)

	src, err := svc.Create(context.Background(), CreateInput{
		Name:        "Banco plaza",
		Items:       []LineItem{{MaterialID: ptrI64(1), Quantity: 2, Category: "metal"}},
		Markups:     map[string]float64{"metal": 20},
		Consumables: map[string]float64{"metal": 5},
		Extras:      Extras{Shipping: ExtraCharge{Value: 10}},
		Tags:        []string{"exterior"},
	})
	require.NoError(t, err)

	// Material price changes between create and duplicate.
	lookup.byID[1] = materials.Material{ID: 1, Category: "metal", Price: 200}

	dup, err := svc.Duplicate(context.Background(), src.ID, "")
	require.NoError(t, err)
	require.NotNil(t, dup)

	assert.Equal(t, "Banco plaza (copia)", dup.Name)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.Items, dup.Items)
	assert.Equal(t, src.Markups, dup.Markups)
	assert.Equal(t, src.Consumables, dup.Consumables)
	assert.Equal(t, src.Extras, dup.Extras)
	assert.Equal(t, src.Tags, dup.Tags)
	assert.Equal(t, src.Category, dup.Category)

	// Totals reflect today's prices, not the source's stored numbers.
	assert.Greater(t, dup.FinalPrice, src.FinalPrice)
	assert.InDelta(t, 415.0, dup.CostTotal, 1e-9) // 400 + 5 + 10

	// The copy is reloadable under its own id.
	reloaded, err := svc.GetByID(context.Background(), dup.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, dup.FinalPrice, reloaded.FinalPrice)
}

func TestServiceDuplicateMissingReturnsNil(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLookup{})

	dup, err := svc.Duplicate(context.Background(), 404, "x")
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestServiceRecalculateAllIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Category: "metal", Price: 100},
	}}
	svc := newTestService(store, lookup)

	for _, name := range []string{"A", "B"} {
		_, err := svc.Create(context.Background(), CreateInput{
			Name:    name,
			Items:   []LineItem{{MaterialID: ptrI64(1), Quantity: 1, Category: "metal"}},
			Markups: map[string]float64{"metal": 10},
		})
		require.NoError(t, err)
	}
	empty, err := svc.Create(context.Background(), CreateInput{Name: "Sin items"})
	require.NoError(t, err)

	// Prices moved since creation.
	lookup.byID[1] = materials.Material{ID: 1, Category: "metal", Price: 150}

	res, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Updated)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, empty.ID, res.Errors[0].ID)
	assert.Equal(t, "plantilla sin items", res.Errors[0].Message)

	a, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 165.0, a.FinalPrice, 1e-9)
}

func TestServiceRecalculateAllReclassifies(t *testing.T) {
	store := newFakeStore()
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Name: "caño", Category: "metal", Price: 80},
		2: {ID: 2, Name: "pino", Category: "madera", Price: 20},
	}}
	svc := newTestService(store, lookup)

	created, err := svc.Create(context.Background(), CreateInput{
		Name: "Mesa con estructura",
		Items: []LineItem{
			{MaterialID: ptrI64(1), Quantity: 1, Category: "metal"},
			{MaterialID: ptrI64(2), Quantity: 1, Category: "madera"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, CategoryHerreria, created.Category) // metal holds 80% of cost

	// The cost mix flips to an even split, below the dominance threshold.
	lookup.byID[1] = materials.Material{ID: 1, Name: "caño", Category: "metal", Price: 50}
	lookup.byID[2] = materials.Material{ID: 2, Name: "pino", Category: "madera", Price: 50}

	res, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, CategoryMixta, got.Category)
}
