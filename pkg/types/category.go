package types

import "strings"

// Category groups statistics in the report.
type Category string

const (
	CategoryProduction    Category = "production"
	CategoryImport        Category = "import"
	CategoryExport        Category = "export"
	CategoryBatteryIn     Category = "battery_in"
	CategoryBatteryOut    Category = "battery_out"
	CategoryTrackedDevice Category = "tracked_device"
	CategoryGas           Category = "gas"
	CategoryWater         Category = "water"
	CategoryCO2           Category = "co2"
	CategoryCost          Category = "cost"
	CategoryCompensation  Category = "compensation"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryProduction,
	CategoryImport,
	CategoryExport,
	CategoryBatteryOut,
	CategoryBatteryIn,
	CategoryTrackedDevice,
	CategoryGas,
	CategoryWater,
	CategoryCost,
	CategoryCompensation,
	CategoryCO2,
}

// Rank returns the position of c in Categories. Unknown categories sort last.
func (c Category) Rank() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}

// IsElectricity returns true for categories that take part in the estimated
// consumption balance.
func (c Category) IsElectricity() bool {
	switch c {
	case CategoryProduction, CategoryImport, CategoryExport,
		CategoryBatteryIn, CategoryBatteryOut, CategoryTrackedDevice:
		return true
	}
	return false
}

// KWHFactor returns the multiplier converting a value in unit to kWh. The
// second value is false when unit is not an energy unit.
func KWHFactor(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "wh":
		return 0.001, true
	case "kwh", "":
		return 1, true
	case "mwh":
		return 1000, true
	case "gwh":
		return 1_000_000, true
	}
	return 0, false
}
