package energy

import (
	"math"
	"sort"

	"github.com/jameshartig/energyreport/pkg/types"
)

// rows smaller than this are left out of the category table
const negligible = 1e-6

// Summarize groups totals by category and derives the estimated and
// untracked consumption.
func Summarize(metrics []types.Metric, totals map[string]float64, metadata map[string]types.StatisticMetadata) types.Summary {
	summary := types.Summary{
		Totals:  make(map[types.Category]float64),
		Metrics: len(metrics),
	}

	type key struct {
		category types.Category
		unit     string
	}
	grouped := make(map[key]float64)

	for _, m := range metrics {
		total, ok := totals[m.StatisticID]
		if !ok {
			continue
		}
		meta := metadata[m.StatisticID]
		grouped[key{m.Category, meta.Unit}] += total

		name := meta.Name
		if name == "" {
			name = m.StatisticID
		}
		summary.Details = append(summary.Details, types.EntityTotal{
			Category:    m.Category,
			StatisticID: m.StatisticID,
			Name:        name,
			Unit:        meta.Unit,
			Total:       total,
		})

		if !m.Category.IsElectricity() {
			continue
		}
		factor, ok := types.KWHFactor(meta.Unit)
		if !ok {
			continue
		}
		summary.Totals[m.Category] += total * factor
	}

	for k, total := range grouped {
		if math.Abs(total) < negligible {
			continue
		}
		summary.Categories = append(summary.Categories, types.CategoryTotal{
			Category: k.category,
			Unit:     k.unit,
			Total:    total,
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if math.Abs(a.Total) != math.Abs(b.Total) {
			return math.Abs(a.Total) > math.Abs(b.Total)
		}
		if a.Category != b.Category {
			return a.Category.Rank() < b.Category.Rank()
		}
		return a.Unit < b.Unit
	})

	sort.SliceStable(summary.Details, func(i, j int) bool {
		a, b := summary.Details[i], summary.Details[j]
		if a.Category != b.Category {
			return a.Category.Rank() < b.Category.Rank()
		}
		if math.Abs(a.Total) != math.Abs(b.Total) {
			return math.Abs(a.Total) > math.Abs(b.Total)
		}
		return a.Name < b.Name
	})

	summary.EstimatedConsumption = EstimatedConsumption(summary.Totals)
	summary.TrackedConsumption = summary.Totals[types.CategoryTrackedDevice]
	summary.Untracked = summary.EstimatedConsumption - summary.TrackedConsumption
	summary.UntrackedNegative = summary.Untracked < 0

	return summary
}

// EstimatedConsumption returns production + import + battery discharge -
// export - battery charge.
func EstimatedConsumption(totals map[types.Category]float64) float64 {
	return totals[types.CategoryProduction] +
		totals[types.CategoryImport] +
		totals[types.CategoryBatteryOut] -
		totals[types.CategoryExport] -
		totals[types.CategoryBatteryIn]
}

// Dominant returns the category row with the largest absolute total. The bool
// is false when there are no rows.
func Dominant(categories []types.CategoryTotal) (types.CategoryTotal, bool) {
	var best types.CategoryTotal
	var found bool
	for _, c := range categories {
		if !found || math.Abs(c.Total) > math.Abs(best.Total) {
			best = c
			found = true
		}
	}
	return best, found
}

// NetTotal returns the sum of the category rows and their unit, empty when
// the rows use more than one unit.
func NetTotal(categories []types.CategoryTotal) (float64, string) {
	var total float64
	units := make(map[string]bool)
	for _, c := range categories {
		total += c.Total
		if c.Unit != "" {
			units[c.Unit] = true
		}
	}
	if len(units) != 1 {
		return total, ""
	}
	for unit := range units {
		return total, unit
	}
	return total, ""
}
