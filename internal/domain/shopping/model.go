package shopping

import "time"

// Trade sections of the shopping list. Unknown sections coming from older
// clients are kept as-is.
const (
	SectionHerreria    = "herreria"
	SectionCarpinteria = "carpinteria"
	SectionPintura     = "pintura"
	SectionOtros       = "otros"
)

var defaultSections = []string{
	SectionHerreria, SectionCarpinteria, SectionPintura, SectionOtros,
}

// Item is one shopping entry. The frontend owns the item shape and it has
// drifted over time, so entries stay schemaless.
type Item map[string]any

type Sections map[string][]Item

// List is the single shared shopping list of the workshop, sectioned by
// trade, plus the cash on hand to buy against.
type List struct {
	ID            int64
	Sections      Sections
	CashAvailable float64 // efectivo disponible
	DigitalMoney  float64 // dinero digital
	UpdatedAt     time.Time
}

// NormalizeSections returns the canonical shape: all four trade sections
// present (empty when missing), every value a non-nil slice, extra sections
// preserved.
func NormalizeSections(in Sections) Sections {
	out := make(Sections, len(in)+len(defaultSections))
	for _, key := range defaultSections {
		out[key] = []Item{}
	}
	for key, items := range in {
		if items == nil {
			if _, ok := out[key]; !ok {
				out[key] = []Item{}
			}
			continue
		}
		out[key] = items
	}
	return out
}

// StripItemFields removes the named fields from every item in every section
// and reports whether anything was removed. Used to purge legacy fields that
// older frontend builds wrote into items.
func StripItemFields(s Sections, fields ...string) (Sections, bool) {
	changed := false
	out := make(Sections, len(s))
	for key, items := range s {
		next := make([]Item, 0, len(items))
		for _, item := range items {
			clean := make(Item, len(item))
			for k, v := range item {
				clean[k] = v
			}
			for _, f := range fields {
				if _, ok := clean[f]; ok {
					delete(clean, f)
					changed = true
				}
			}
			next = append(next, clean)
		}
		out[key] = next
	}
	return out, changed
}
