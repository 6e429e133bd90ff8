package types

import "time"

// Metric is a statistic included in a report.
type Metric struct {
	Category    Category `json:"category"`
	StatisticID string   `json:"statisticID"`
}

// StatisticRow is one bucket of a statistic as returned by the store.
// Change is nil when the store has no value for the bucket.
type StatisticRow struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Change *float64  `json:"change,omitempty"`
}

// StatisticMetadata describes a statistic.
type StatisticMetadata struct {
	StatisticID string `json:"statisticID"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
}

// StateSnapshot is a recorded state of an entity.
type StateSnapshot struct {
	State       string    `json:"state"`
	LastChanged time.Time `json:"lastChanged"`
}

// CategoryTotal is a row of the summary table.
type CategoryTotal struct {
	Category Category `json:"category"`
	Unit     string   `json:"unit"`
	Total    float64  `json:"total"`
}

// EntityTotal is a row of the detail table.
type EntityTotal struct {
	Category    Category `json:"category"`
	StatisticID string   `json:"statisticID"`
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	Total       float64  `json:"total"`
}

// Summary is the aggregated view of a report's statistics.
type Summary struct {
	Categories []CategoryTotal `json:"categories"`
	Details    []EntityTotal   `json:"details"`

	// Totals per electricity category in kWh.
	Totals map[Category]float64 `json:"totals"`

	// production + import + battery discharge - export - battery charge
	EstimatedConsumption float64 `json:"estimatedConsumption"`
	// Sum of tracked devices
	TrackedConsumption float64 `json:"trackedConsumption"`
	// EstimatedConsumption - TrackedConsumption, never clamped
	Untracked float64 `json:"untracked"`
	// Set when tracked devices exceed the estimated consumption
	UntrackedNegative bool `json:"untrackedNegative"`

	Metrics int `json:"metrics"`
}

// CO2Total is the total of a CO2 sensor over the period.
type CO2Total struct {
	Sensor CO2Sensor `json:"sensor"`
	Total  float64   `json:"total"`
}
