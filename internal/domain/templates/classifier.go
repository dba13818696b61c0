package templates

// Display labels for the template category filter.
const (
	CategoryHerreria    = "Herrería"
	CategoryCarpinteria = "Carpintería"
	CategoryPintura     = "Pintura"
	CategoryMixta       = "Mixta"
	CategoryOtro        = "Otro"
)

// displayLabels maps normalized category tags to the trade they belong to.
// Tags outside this table classify as Mixta.
var displayLabels = map[string]string{
	"herreria":    CategoryHerreria,
	"herrería":    CategoryHerreria,
	"hierro":      CategoryHerreria,
	"metal":       CategoryHerreria,
	"carpinteria": CategoryCarpinteria,
	"carpintería": CategoryCarpinteria,
	"madera":      CategoryCarpinteria,
	"wood":        CategoryCarpinteria,
	"pintura":     CategoryPintura,
	"pinturas":    CategoryPintura,
	"paint":       CategoryPintura,
}

// dominantShareThreshold: below this share of the total cost, a two-category
// template counts as mixed work rather than the dominant trade.
const dominantShareThreshold = 0.70

// ClassifyCategory infers a single display category from the per-category
// cost subtotals. It is a heuristic: more than two significant categories, or
// two without a clear dominant, read as mixed work. Categories are scanned in
// sorted tag order, so equal subtotals resolve to the lexicographically
// smallest tag and the result never depends on map iteration order. A share
// of exactly 0.70 counts as dominant.
func ClassifyCategory(subtotals map[string]float64) string {
	total := 0.0
	significant := 0
	dominantTag := ""
	dominantAmount := 0.0

	for _, tag := range sortedKeys(subtotals) {
		amount := subtotals[tag]
		if amount <= 0 {
			continue
		}
		total += amount
		significant++
		if amount > dominantAmount {
			dominantTag = tag
			dominantAmount = amount
		}
	}

	if significant == 0 || total <= 0 {
		return CategoryOtro
	}
	if significant > 2 {
		return CategoryMixta
	}
	if significant > 1 && dominantAmount/total < dominantShareThreshold {
		return CategoryMixta
	}

	if label, ok := displayLabels[normalizeCategory(dominantTag)]; ok {
		return label
	}
	return CategoryMixta
}
