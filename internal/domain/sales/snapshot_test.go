package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/domain/products"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
)

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

func ptrI64(v int64) *int64 { return &v }

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestBuildSnapshotManualPath(t *testing.T) {
	snap, err := BuildSnapshot(context.Background(), &fakeLookup{}, nil, 1500, testNow)
	require.NoError(t, err)

	assert.Equal(t, SourceManual, snap.Source)
	assert.Equal(t, 1500.0, snap.UnitPrice)
	assert.Equal(t, testNow, snap.RecordedAt)
	assert.Empty(t, snap.Materials)
}

func TestBuildSnapshotCatalogPath(t *testing.T) {
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Name: "caño 20x20", Category: "metal", Type: "cuadrado",
			Size: "20x20", Thickness: "1.2mm", Price: 100,
			UpdatedAt: testNow.Add(-24 * time.Hour)},
	}}
	tplID := int64(9)
	product := &products.Product{
		ID:         5,
		Price:      999, // list price, should lose to the template price
		TemplateID: &tplID,
		Template: &templates.Template{
			ID: tplID,
			Items: []templates.LineItem{
				{MaterialID: ptrI64(1), Quantity: 2, Category: "metal"},
			},
			Markups: map[string]float64{"metal": 20},
		},
	}

	snap, err := BuildSnapshot(context.Background(), lookup, product, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, SourceCatalog, snap.Source)
	assert.InDelta(t, 240.0, snap.UnitPrice, 1e-9)

	require.Len(t, snap.Materials, 1)
	row := snap.Materials[0]
	assert.Equal(t, int64(1), *row.MaterialID)
	assert.Equal(t, "caño 20x20", row.Name)
	assert.Equal(t, "metal", row.Category)
	assert.Equal(t, "cuadrado", row.Type)
	assert.Equal(t, 100.0, row.Price)
	assert.Equal(t, 2.0, row.Quantity)
	assert.InDelta(t, 200.0, row.Subtotal, 1e-9)
	require.NotNil(t, row.PriceUpdatedAt)
}

func TestBuildSnapshotFallsBackToListPrice(t *testing.T) {
	tplID := int64(9)
	// Template prices to zero: its only item points at a deleted material.
	product := &products.Product{
		ID:         5,
		Price:      800,
		TemplateID: &tplID,
		Template: &templates.Template{
			ID: tplID,
			Items: []templates.LineItem{
				{MaterialID: ptrI64(42), Quantity: 1, Category: "metal"},
			},
		},
	}

	snap, err := BuildSnapshot(context.Background(), &fakeLookup{}, product, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, SourceCatalog, snap.Source)
	assert.Equal(t, 800.0, snap.UnitPrice)
	// The row is still recorded, zeroed, documenting the dangling reference.
	require.Len(t, snap.Materials, 1)
	assert.Equal(t, 0.0, snap.Materials[0].Price)
}

func TestBuildSnapshotProductWithoutTemplate(t *testing.T) {
	product := &products.Product{ID: 5, Price: 650}

	snap, err := BuildSnapshot(context.Background(), &fakeLookup{}, product, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, SourceCatalog, snap.Source)
	assert.Equal(t, 650.0, snap.UnitPrice)
	assert.Empty(t, snap.Materials)
}

func TestBuildSnapshotKeepsZeroQuantityRows(t *testing.T) {
	lookup := &fakeLookup{byID: map[int64]materials.Material{
		1: {ID: 1, Name: "bisagra", Category: "herrajes", Price: 10},
	}}
	tplID := int64(3)
	product := &products.Product{
		ID:         1,
		Price:      100,
		TemplateID: &tplID,
		Template: &templates.Template{
			ID: tplID,
			Items: []templates.LineItem{
				{MaterialID: ptrI64(1), Quantity: 0, Category: "herrajes"},
			},
		},
	}

	snap, err := BuildSnapshot(context.Background(), lookup, product, 0, testNow)
	require.NoError(t, err)

	// Prices to zero (no chargeable quantity) so the list price wins, but the
	// breakdown still shows what the template listed.
	assert.Equal(t, 100.0, snap.UnitPrice)
	require.Len(t, snap.Materials, 1)
	assert.Equal(t, 0.0, snap.Materials[0].Quantity)
}
