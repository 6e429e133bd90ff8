package energy

import (
	"strconv"
	"strings"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
)

// DailySnapshotTotal keeps the last numeric state of each local day and adds
// them. It is used for sensors that have no long term statistics. The bool is
// false when no state is numeric.
func DailySnapshotTotal(states []types.StateSnapshot, loc *time.Location) (float64, bool) {
	type snapshot struct {
		at    time.Time
		value float64
	}
	days := make(map[string]snapshot)

	for _, s := range states {
		value, err := strconv.ParseFloat(strings.TrimSpace(s.State), 64)
		if err != nil {
			continue
		}
		local := s.LastChanged.In(loc)
		day := local.Format("2006-01-02")
		if prev, ok := days[day]; ok && local.Before(prev.at) {
			continue
		}
		days[day] = snapshot{at: local, value: value}
	}

	if len(days) == 0 {
		return 0, false
	}
	var total float64
	for _, s := range days {
		total += s.value
	}
	return total, true
}

// CO2Balance returns the emissions, the savings and emissions minus savings.
func CO2Balance(totals []types.CO2Total) (emissions, savings, balance float64) {
	for _, t := range totals {
		if t.Sensor.IsSaving {
			savings += t.Total
		} else {
			emissions += t.Total
		}
	}
	return emissions, savings, emissions - savings
}
