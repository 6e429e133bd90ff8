package types

import "time"

// ReportRecord is stored for every generated report.
type ReportRecord struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Dashboard   string    `json:"dashboard"`
	Period      Period    `json:"period"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Location    string    `json:"location"`
	Language    string    `json:"language"`
	Metrics     int       `json:"metrics"`

	EstimatedConsumptionKWH float64 `json:"estimatedConsumptionKWH"`
	UntrackedKWH            float64 `json:"untrackedKWH"`
}
