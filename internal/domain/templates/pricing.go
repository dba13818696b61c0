package templates

import (
	"sort"
	"strings"
)

// PriceResult is the full output of the pricing calculation.
type PriceResult struct {
	Subtotals       map[string]float64 // per-category cost, consumables included
	CostOfMaterials float64
	ExtrasTotal     float64
	CostTotal       float64
	FinalPrice      float64
	Profit          float64
	Skipped         []SkippedItem // items that contributed nothing, for diagnostics
}

// SkippedItem records a line item that was silently zeroed out. The numbers
// are unaffected; callers may surface these as warnings.
type SkippedItem struct {
	Index      int
	MaterialID int64 // 0 for custom items
	Reason     string
}

func normalizeCategory(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "general"
	}
	return tag
}

func normalizeCategoryMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[normalizeCategory(k)] += finiteOrZero(v)
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CalculatePrice prices a template from already-resolved material prices.
// Missing materials and non-positive quantities contribute nothing and are
// reported in Skipped rather than failing the whole computation: materials
// get deleted while old templates still reference them, and a hard error
// here would break routine catalog maintenance.
func CalculatePrice(
	items []LineItem,
	markups map[string]float64,
	consumables map[string]float64,
	extras Extras,
	prices map[int64]float64,
) PriceResult {
	markups = normalizeCategoryMap(markups)
	consumables = normalizeCategoryMap(consumables)
	extras = NormalizeExtras(extras)

	res := PriceResult{Subtotals: map[string]float64{}}
	basePrice := 0.0

	for i, it := range items {
		if it.Quantity <= 0 {
			res.Skipped = append(res.Skipped, skipped(i, it, "cantidad no positiva"))
			continue
		}

		unit := finiteOrZero(it.Value)
		if it.IsCatalog() {
			var ok bool
			unit, ok = prices[*it.MaterialID]
			if !ok {
				res.Skipped = append(res.Skipped, skipped(i, it, "materia prima inexistente"))
				continue
			}
		}

		subtotal := unit * it.Quantity
		if subtotal <= 0 {
			res.Skipped = append(res.Skipped, skipped(i, it, "subtotal no positivo"))
			continue
		}

		category := normalizeCategory(it.Category)
		res.Subtotals[category] += subtotal

		pct := markups[category]
		if it.MarkupOverride != nil {
			pct = finiteOrZero(*it.MarkupOverride)
		}
		basePrice += subtotal * (1 + pct/100)
	}

	// Flat per-category overheads join the subtotals even when no line item
	// touched that category yet. They take the category markup; there is no
	// per-item override for consumables.
	for _, category := range sortedKeys(consumables) {
		amount := consumables[category]
		if amount <= 0 {
			continue
		}
		res.Subtotals[category] += amount
		basePrice += amount * (1 + markups[category]/100)
	}

	for _, subtotal := range res.Subtotals {
		res.CostOfMaterials += subtotal
	}

	res.ExtrasTotal = CalculateExtrasTotal(extras)
	res.CostTotal = res.CostOfMaterials + res.ExtrasTotal
	res.FinalPrice = basePrice + res.ExtrasTotal
	res.Profit = res.FinalPrice - res.CostTotal
	return res
}

func skipped(index int, it LineItem, reason string) SkippedItem {
	s := SkippedItem{Index: index, Reason: reason}
	if it.MaterialID != nil {
		s.MaterialID = *it.MaterialID
	}
	return s
}
