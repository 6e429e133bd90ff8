package types

// Dashboard is an energy dashboard configured in the statistics store.
type Dashboard struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Preferences EnergyPreferences `json:"preferences"`
}

// Label returns a readable name for the dashboard, combining name and id when
// they differ.
func (d Dashboard) Label() string {
	switch {
	case d.Name != "" && d.ID != "":
		if NormalizeKey(d.Name) == NormalizeKey(d.ID) {
			return d.Name
		}
		return d.Name + " (" + d.ID + ")"
	case d.Name != "":
		return d.Name
	}
	return d.ID
}

// EnergyPreferences names the statistics that make up a dashboard.
type EnergyPreferences struct {
	EnergySources     []EnergySource      `json:"energy_sources"`
	DeviceConsumption []DeviceConsumption `json:"device_consumption"`
}

// EnergySourceType is the kind of an energy source.
type EnergySourceType string

const (
	SourceGrid    EnergySourceType = "grid"
	SourceSolar   EnergySourceType = "solar"
	SourceBattery EnergySourceType = "battery"
	SourceGas     EnergySourceType = "gas"
	SourceWater   EnergySourceType = "water"
)

// EnergySource is a single entry of the dashboard's energy sources. Only the
// fields relevant to Type are set.
type EnergySource struct {
	Type EnergySourceType `json:"type"`

	// grid
	FlowFrom []GridFlowFrom `json:"flow_from,omitempty"`
	FlowTo   []GridFlowTo   `json:"flow_to,omitempty"`

	// solar, battery (discharge), gas, water
	StatEnergyFrom string `json:"stat_energy_from,omitempty"`
	// battery (charge)
	StatEnergyTo string `json:"stat_energy_to,omitempty"`
	// gas, water
	StatCost string `json:"stat_cost,omitempty"`
	StatCO2  string `json:"stat_co2,omitempty"`
}

// GridFlowFrom is energy imported from the grid.
type GridFlowFrom struct {
	StatEnergyFrom string `json:"stat_energy_from"`
	StatCost       string `json:"stat_cost,omitempty"`
	StatCO2        string `json:"stat_co2,omitempty"`
}

// GridFlowTo is energy exported to the grid.
type GridFlowTo struct {
	StatEnergyTo     string `json:"stat_energy_to"`
	StatCompensation string `json:"stat_compensation,omitempty"`
	StatCO2          string `json:"stat_co2,omitempty"`
}

// DeviceConsumption is an individually tracked device.
type DeviceConsumption struct {
	StatConsumption string `json:"stat_consumption"`
	Name            string `json:"name,omitempty"`
	StatCO2         string `json:"stat_co2,omitempty"`
}
