package types

import (
	"path/filepath"
	"strings"
)

// Settings represents the report defaults stored in the database.
// These are dynamic settings that can be changed without redeploying and are
// used whenever a generate request leaves the matching field empty.
type Settings struct {
	// Directory the PDF is written to. Relative paths are resolved by the
	// output sink.
	OutputDir string `json:"outputDir"`
	// Pattern used when no filename is given. Supports {start}, {end} and
	// {period}.
	FilenamePattern string `json:"filenamePattern"`
	// Granularity used when the request has no period.
	DefaultReportType Period `json:"defaultReportType"`
	// Report language (fr, en, nl)
	Language string `json:"language"`
	// Dashboard used when the request does not name one.
	DefaultDashboard string `json:"defaultDashboard"`

	// Include CO2 statistics and the CO2 sensor section
	CO2Enabled bool `json:"co2Enabled"`
	// Entities whose statistics feed the CO2 section. Empty entries are skipped.
	CO2ElectricitySensor string `json:"co2ElectricitySensor"`
	CO2GasSensor         string `json:"co2GasSensor"`
	CO2WaterSensor       string `json:"co2WaterSensor"`
	CO2SavingsSensor     string `json:"co2SavingsSensor"`

	// Include cost and compensation statistics
	PriceEnabled bool `json:"priceEnabled"`
}

const (
	DefaultOutputDir       = "www/energy_reports"
	DefaultFilenamePattern = "energy_report_{start}_{end}.pdf"
	DefaultLanguage        = "fr"
)

// ValidateOutputDir returns a ValidationError unless dir stays under the
// output root: it must be relative and must not contain "..". An empty dir is
// the root itself.
func ValidateOutputDir(dir string) error {
	slashed := strings.ReplaceAll(strings.TrimSpace(dir), `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(dir) ||
		(len(slashed) >= 2 && slashed[1] == ':') {
		return NewValidationError("output_dir", "%q must be relative to the output root", dir)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return NewValidationError("output_dir", "%q must not leave the output root", dir)
		}
	}
	return nil
}

// DefaultSettings returns the settings used before anything has been stored.
func DefaultSettings() Settings {
	return Settings{
		OutputDir:         DefaultOutputDir,
		FilenamePattern:   DefaultFilenamePattern,
		DefaultReportType: PeriodWeek,
		Language:          DefaultLanguage,
	}
}

// WithDefaults fills any empty field with its default value.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.OutputDir == "" {
		s.OutputDir = d.OutputDir
	}
	if s.FilenamePattern == "" {
		s.FilenamePattern = d.FilenamePattern
	}
	if !s.DefaultReportType.Valid() {
		s.DefaultReportType = d.DefaultReportType
	}
	if s.Language == "" {
		s.Language = d.Language
	}
	return s
}

// CO2Sensor describes a sensor whose totals are listed in the CO2 section.
type CO2Sensor struct {
	EntityID string
	// Key used to look up the localized label (co2_electricity, ...)
	Key string
	// Savings are subtracted from emissions in the balance.
	IsSaving bool
}

// CO2Sensors returns the configured CO2 sensors, or nil when CO2 is disabled.
func (s Settings) CO2Sensors() []CO2Sensor {
	if !s.CO2Enabled {
		return nil
	}
	candidates := []CO2Sensor{
		{EntityID: s.CO2ElectricitySensor, Key: "co2_electricity"},
		{EntityID: s.CO2GasSensor, Key: "co2_gas"},
		{EntityID: s.CO2WaterSensor, Key: "co2_water"},
		{EntityID: s.CO2SavingsSensor, Key: "co2_savings", IsSaving: true},
	}
	var sensors []CO2Sensor
	for _, c := range candidates {
		if c.EntityID == "" {
			continue
		}
		sensors = append(sensors, c)
	}
	return sensors
}
