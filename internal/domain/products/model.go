package products

import (
	"time"

	"github.com/tallerapp/taller-backend/internal/domain/templates"
)

// Product is a sellable catalog entry. Price is the list price used when no
// cost template is attached; Template is populated by the repo when loaded
// for pricing.
type Product struct {
	ID          int64
	Name        string
	Description string
	TemplateID  *int64
	Template    *templates.Template
	Catalog     string // muebles / sillas / mesas ...
	Model       string
	Active      bool
	Price       float64
	Stock       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
