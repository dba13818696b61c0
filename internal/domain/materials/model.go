package materials

import "time"

// Material is one entry of the raw-material catalog (hierro, madera,
// herrajes, pinturas...). Prices are per unit of the stated size.
type Material struct {
	ID        int64
	Name      string
	Category  string
	Type      string // cuadrado / redondo / bisagras / tornillos ...
	Size      string // 20x20 / 1.22x2.44 / 35mm ...
	Thickness string // 1.2mm / 1.6mm, empty when not applicable
	Price     float64
	Stock     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
