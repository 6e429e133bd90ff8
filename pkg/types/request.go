package types

// ReportRequest is the input of a generate call. Every field is optional and
// falls back to the stored Settings.
type ReportRequest struct {
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Period       Period `json:"period,omitempty"`
	Filename     string `json:"filename,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
	Dashboard    string `json:"dashboard,omitempty"`
	Language     string `json:"language,omitempty"`
	CO2Enabled   *bool  `json:"co2_enabled,omitempty"`
	PriceEnabled *bool  `json:"price_enabled,omitempty"`
}
