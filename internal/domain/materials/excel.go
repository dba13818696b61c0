package materials

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CatalogStore is the slice of the repo the Excel flows need.
type CatalogStore interface {
	List(ctx context.Context, category string) ([]Material, error)
	Create(ctx context.Context, m Material) (*Material, error)
	UpdatePrice(ctx context.Context, id int64, price float64) (*Material, error)
	FindByAttrs(ctx context.Context, name, typ, size, thickness string) (*Material, error)
}

var priceSheetHeader = []interface{}{
	"id", "name", "category", "type", "size", "thickness", "price", "stock",
}

// ExportPrices writes the whole catalog into a one-sheet xlsx.
func ExportPrices(ctx context.Context, store CatalogStore) ([]byte, error) {
	items, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &priceSheetHeader); err != nil {
		return nil, err
	}

	row := 2
	for _, m := range items {
		excelRow := []interface{}{
			m.ID, m.Name, m.Category, m.Type, m.Size, m.Thickness, m.Price, m.Stock,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type ImportResult struct {
	Rows    int
	Updated int
	Created int
	Skipped int
}

// ImportPrices reads an xlsx in the ExportPrices layout. Rows with an id
// update that material's price; rows without one are matched by
// name/type/size/thickness and created when no match exists.
// Prices are never imported automatically into templates: recalculating
// templates is an explicit admin step after the import.
func ImportPrices(ctx context.Context, store CatalogStore, data []byte) (ImportResult, error) {
	var res ImportResult

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return res, fmt.Errorf("read xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return res, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return res, fmt.Errorf("the file has no data rows")
	}
	if len(rows[0]) < 7 {
		return res, fmt.Errorf("unexpected layout: want at least 7 columns (id ... price)")
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 7 {
			res.Skipped++
			continue
		}
		res.Rows++

		idStr := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		typ := strings.TrimSpace(row[3])
		size := strings.TrimSpace(row[4])
		thickness := strings.TrimSpace(row[5])
		priceStr := strings.TrimSpace(strings.ReplaceAll(row[6], ",", "."))

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			res.Skipped++
			continue
		}

		if idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				res.Skipped++
				continue
			}
			m, err := store.UpdatePrice(ctx, id, price)
			if err != nil {
				return res, err
			}
			if m == nil {
				res.Skipped++
				continue
			}
			res.Updated++
			continue
		}

		if name == "" {
			res.Skipped++
			continue
		}
		existing, err := store.FindByAttrs(ctx, name, typ, size, thickness)
		if err != nil {
			return res, err
		}
		if existing != nil {
			if _, err := store.UpdatePrice(ctx, existing.ID, price); err != nil {
				return res, err
			}
			res.Updated++
			continue
		}
		if _, err := store.Create(ctx, Material{
			Name:      name,
			Category:  category,
			Type:      typ,
			Size:      size,
			Thickness: thickness,
			Price:     price,
		}); err != nil {
			return res, err
		}
		res.Created++
	}

	return res, nil
}
