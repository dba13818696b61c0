package sales

import "time"

type Status string

const (
	StatusPending    Status = "pendiente"
	StatusInProgress Status = "en_proceso"
	StatusDone       Status = "finalizada"
	StatusCancelled  Status = "cancelada"
)

// Snapshot price provenance.
const (
	SourceCatalog = "catalogo" // priced from the product's cost template
	SourceManual  = "manual"   // operator-entered price
)

// MaterialSnapshot is one frozen row of the material breakdown: the material
// as it existed when the sale was priced.
type MaterialSnapshot struct {
	MaterialID     *int64     `json:"materialId"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Type           string     `json:"type,omitempty"`
	Size           string     `json:"size,omitempty"`
	Thickness      string     `json:"thickness,omitempty"`
	Price          float64    `json:"price"`
	Quantity       float64    `json:"quantity"`
	Subtotal       float64    `json:"subtotal"`
	PriceUpdatedAt *time.Time `json:"priceUpdatedAt,omitempty"`
}

// Snapshot freezes the unit price and material breakdown at the moment the
// sale was priced. It is never recomputed behind the sale's back; it changes
// only when the sale's price-relevant fields are edited.
type Snapshot struct {
	UnitPrice  float64            `json:"unitPrice"`
	Source     string             `json:"source"`
	RecordedAt time.Time          `json:"recordedAt"`
	Materials  []MaterialSnapshot `json:"materials,omitempty"`
}

type Sale struct {
	ID            int64
	Date          time.Time
	Client        string
	Channel       string // mercado libre / instagram / local ...
	ProductID     *int64
	ProductName   string
	TemplateID    *int64
	Quantity      float64
	Description   string
	ShippingValue float64
	Total         float64
	DownPayment   float64 // seña
	Remaining     float64 // restan
	ManualPrice   *float64
	Deadline      *time.Time
	Status        Status
	InProgressAt  *time.Time
	Snapshot      Snapshot
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
