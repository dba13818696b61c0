package templates

import "time"

// LineItem is one row of a cost template. A catalog item references a
// material from the catalog; a custom item carries its own unit value and
// description. Both kinds have a category tag and a quantity.
type LineItem struct {
	MaterialID     *int64   `json:"materialId,omitempty"`
	Value          float64  `json:"value,omitempty"` // unit value of a custom item
	Quantity       float64  `json:"quantity"`
	Category       string   `json:"category"`
	Description    string   `json:"description,omitempty"`
	MarkupOverride *float64 `json:"markupOverride,omitempty"` // per-item profit %, overrides the category markup
}

// IsCatalog reports whether the item references a catalog material.
func (it LineItem) IsCatalog() bool { return it.MaterialID != nil }

// ExtraCharge is a fixed value plus a percentage markup applied on top of it.
type ExtraCharge struct {
	Value      float64 `json:"valor"`
	Percentage float64 `json:"porcentaje"`
}

// CustomExtra is an ad-hoc named extra charge.
type CustomExtra struct {
	Name       string  `json:"nombre"`
	Value      float64 `json:"valor"`
	Percentage float64 `json:"porcentaje"`
}

// Extras holds the two fixed surcharge slots plus any custom ones.
// Shipping is "envío"; VehicleCredit is the van-financing surcharge
// ("crédito camioneta").
type Extras struct {
	VehicleCredit ExtraCharge   `json:"creditoCamioneta"`
	Shipping      ExtraCharge   `json:"envio"`
	Custom        []CustomExtra `json:"camposPersonalizados,omitempty"`
}

// Template is a reusable bill of materials with category-based markups
// used to price a product. Stored totals are recomputed on every write.
type Template struct {
	ID          int64
	Name        string
	Items       []LineItem
	Markups     map[string]float64 // category tag -> profit %
	Consumables map[string]float64 // category tag -> flat overhead
	Extras      Extras
	Category    string // display label: Herrería / Carpintería / Pintura / Mixta / Otro
	ProjectType string
	Tags        []string
	Subtotals   map[string]float64
	ExtrasTotal float64
	CostTotal   float64
	FinalPrice  float64
	Profit      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
