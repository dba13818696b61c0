package templates

import (
	"math"
	"strings"
)

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func normalizeCharge(e ExtraCharge) ExtraCharge {
	value := finiteOrZero(e.Value)
	if value < 0 {
		value = 0
	}
	return ExtraCharge{Value: value, Percentage: finiteOrZero(e.Percentage)}
}

// NormalizeExtras coerces an extras payload into its canonical shape: both
// fixed slots present with non-negative values, custom entries trimmed, and
// custom entries with an empty name and no positive value dropped.
func NormalizeExtras(e Extras) Extras {
	out := Extras{
		VehicleCredit: normalizeCharge(e.VehicleCredit),
		Shipping:      normalizeCharge(e.Shipping),
	}
	for _, c := range e.Custom {
		name := strings.TrimSpace(c.Name)
		value := finiteOrZero(c.Value)
		if name == "" && value <= 0 {
			continue
		}
		out.Custom = append(out.Custom, CustomExtra{
			Name:       name,
			Value:      value,
			Percentage: finiteOrZero(c.Percentage),
		})
	}
	return out
}

// CalculateExtrasTotal sums value*(1+pct/100) over every retained entry.
// Plain summation, so reordering the custom list does not change the result.
func CalculateExtrasTotal(e Extras) float64 {
	total := chargeTotal(e.VehicleCredit.Value, e.VehicleCredit.Percentage)
	total += chargeTotal(e.Shipping.Value, e.Shipping.Percentage)
	for _, c := range e.Custom {
		total += chargeTotal(c.Value, c.Percentage)
	}
	return total
}

func chargeTotal(value, pct float64) float64 {
	return finiteOrZero(value) * (1 + finiteOrZero(pct)/100)
}
