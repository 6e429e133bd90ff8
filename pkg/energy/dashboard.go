package energy

import (
	"errors"
	"strings"

	"github.com/jameshartig/energyreport/pkg/types"
)

// ErrNoDashboard is returned when the store has no energy dashboard.
var ErrNoDashboard = errors.New("the energy dashboard is not configured yet")

// SelectDashboard picks the dashboard named by requested, matching its id or
// name without regard to case. When requested is empty, fallback is tried
// the same way before the first dashboard is used.
func SelectDashboard(dashboards []types.Dashboard, requested, fallback string) (types.Dashboard, error) {
	if len(dashboards) == 0 {
		return types.Dashboard{}, ErrNoDashboard
	}

	if strings.TrimSpace(requested) != "" {
		if d, ok := findDashboard(dashboards, requested); ok {
			return d, nil
		}
		return types.Dashboard{}, types.NewValidationError("dashboard", "no energy dashboard named %q", requested)
	}

	if d, ok := findDashboard(dashboards, fallback); ok {
		return d, nil
	}
	return dashboards[0], nil
}

func findDashboard(dashboards []types.Dashboard, key string) (types.Dashboard, bool) {
	key = types.NormalizeKey(key)
	if key == "" {
		return types.Dashboard{}, false
	}
	for _, d := range dashboards {
		if types.NormalizeKey(d.ID) == key || types.NormalizeKey(d.Name) == key {
			return d, true
		}
	}
	return types.Dashboard{}, false
}
