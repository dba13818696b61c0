package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/domain/products"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
)

// BuildSnapshot freezes the price a sale is made at.
//
// With a product whose template has line items, the unit price is the
// template's current final price (same calculation the template lifecycle
// uses) and the breakdown lists every line item at today's material prices;
// a template that prices to zero falls back to the product's list price.
// Without a product the manually supplied price is used and the breakdown is
// empty.
func BuildSnapshot(
	ctx context.Context,
	lookup templates.MaterialLookup,
	product *products.Product,
	manualPrice float64,
	now time.Time,
) (Snapshot, error) {
	snap := Snapshot{
		UnitPrice:  manualPrice,
		Source:     SourceManual,
		RecordedAt: now,
	}
	if product == nil {
		return snap, nil
	}

	snap.Source = SourceCatalog
	snap.UnitPrice = product.Price

	tpl := product.Template
	if tpl == nil || len(tpl.Items) == 0 {
		return snap, nil
	}

	resolved, err := resolveMaterials(ctx, lookup, tpl.Items)
	if err != nil {
		return snap, err
	}

	prices := make(map[int64]float64, len(resolved))
	for id, m := range resolved {
		prices[id] = m.Price
	}
	result := templates.CalculatePrice(tpl.Items, tpl.Markups, tpl.Consumables, tpl.Extras, prices)
	if result.FinalPrice > 0 {
		snap.UnitPrice = result.FinalPrice
	}

	// The breakdown keeps every line item, including zero-quantity ones:
	// the row documents what the template listed, not what it charged.
	for _, it := range tpl.Items {
		row := MaterialSnapshot{
			Category: it.Category,
			Quantity: it.Quantity,
		}
		if it.MaterialID != nil {
			row.MaterialID = it.MaterialID
			if m, ok := resolved[*it.MaterialID]; ok {
				row.Name = m.Name
				row.Category = m.Category
				row.Type = m.Type
				row.Size = m.Size
				row.Thickness = m.Thickness
				row.Price = m.Price
				updatedAt := m.UpdatedAt
				row.PriceUpdatedAt = &updatedAt
			}
		} else {
			row.Name = it.Description
			row.Price = it.Value
		}
		row.Subtotal = row.Price * row.Quantity
		snap.Materials = append(snap.Materials, row)
	}
	return snap, nil
}

func resolveMaterials(
	ctx context.Context,
	lookup templates.MaterialLookup,
	items []templates.LineItem,
) (map[int64]materials.Material, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, it := range items {
		if it.MaterialID == nil || seen[*it.MaterialID] {
			continue
		}
		seen[*it.MaterialID] = true
		ids = append(ids, *it.MaterialID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	mats, err := lookup.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot materials: %w", err)
	}
	out := make(map[int64]materials.Material, len(mats))
	for _, m := range mats {
		out[m.ID] = m
	}
	return out, nil
}
