package energy

import "github.com/jameshartig/energyreport/pkg/types"

// CalculateTotals sums the change of every statistic over the period. Each
// metric has an entry, zero when the store returned nothing usable.
func CalculateTotals(metrics []types.Metric, rows map[string][]types.StatisticRow) map[string]float64 {
	totals := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		totals[m.StatisticID] = 0
	}
	for id, statRows := range rows {
		if _, ok := totals[id]; !ok {
			continue
		}
		if total, ok := ChangeTotal(statRows); ok {
			totals[id] = total
		}
	}
	return totals
}

// ChangeTotal adds the change of each row. The bool is false when no row has
// a change.
func ChangeTotal(rows []types.StatisticRow) (float64, bool) {
	var total float64
	var found bool
	for _, row := range rows {
		if row.Change == nil {
			continue
		}
		found = true
		total += *row.Change
	}
	return total, found
}
