// Package energy aggregates energy statistics into the totals shown in a
// report.
package energy

import (
	"errors"

	"github.com/jameshartig/energyreport/pkg/types"
)

// ErrNoMetrics is returned when a dashboard references no statistics.
var ErrNoMetrics = errors.New("no statistics found in the energy preferences")

// BuildMetrics lists the statistics of a dashboard with their category. A
// statistic referenced more than once keeps its first category.
func BuildMetrics(prefs types.EnergyPreferences, co2Enabled, priceEnabled bool) ([]types.Metric, error) {
	var metrics []types.Metric
	seen := make(map[string]bool)

	add := func(id string, category types.Category) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		metrics = append(metrics, types.Metric{Category: category, StatisticID: id})
	}
	addCost := func(id string, category types.Category) {
		if priceEnabled {
			add(id, category)
		}
	}
	addCO2 := func(id string) {
		if co2Enabled {
			add(id, types.CategoryCO2)
		}
	}

	for _, source := range prefs.EnergySources {
		switch source.Type {
		case types.SourceGrid:
			for _, flow := range source.FlowFrom {
				add(flow.StatEnergyFrom, types.CategoryImport)
				addCost(flow.StatCost, types.CategoryCost)
				addCO2(flow.StatCO2)
			}
			for _, flow := range source.FlowTo {
				add(flow.StatEnergyTo, types.CategoryExport)
				addCost(flow.StatCompensation, types.CategoryCompensation)
				addCO2(flow.StatCO2)
			}
		case types.SourceSolar:
			add(source.StatEnergyFrom, types.CategoryProduction)
		case types.SourceBattery:
			add(source.StatEnergyFrom, types.CategoryBatteryOut)
			add(source.StatEnergyTo, types.CategoryBatteryIn)
		case types.SourceGas:
			add(source.StatEnergyFrom, types.CategoryGas)
			addCost(source.StatCost, types.CategoryCost)
		case types.SourceWater:
			add(source.StatEnergyFrom, types.CategoryWater)
			addCost(source.StatCost, types.CategoryCost)
		}
		addCO2(source.StatCO2)
	}

	for _, device := range prefs.DeviceConsumption {
		add(device.StatConsumption, types.CategoryTrackedDevice)
		addCO2(device.StatCO2)
	}

	if len(metrics) == 0 {
		return nil, ErrNoMetrics
	}
	return metrics, nil
}

// StatisticIDs returns the ids of metrics in order.
func StatisticIDs(metrics []types.Metric) []string {
	ids := make([]string, 0, len(metrics))
	for _, m := range metrics {
		ids = append(ids, m.StatisticID)
	}
	return ids
}
