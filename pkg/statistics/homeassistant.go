package statistics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
)

// Commander sends websocket commands to Home Assistant.
type Commander interface {
	Command(ctx context.Context, commandType string, fields map[string]any, result any) error
	Validate() error
	Close() error
}

// HomeAssistant reads statistics from the Home Assistant recorder.
type HomeAssistant struct {
	ws Commander
}

// NewHomeAssistant returns a provider sending its commands through ws.
func NewHomeAssistant(ws Commander) *HomeAssistant {
	return &HomeAssistant{ws: ws}
}

// Validate implements Provider.
func (h *HomeAssistant) Validate() error {
	return h.ws.Validate()
}

// Close implements Provider.
func (h *HomeAssistant) Close() error {
	return h.ws.Close()
}

// TimeZone implements Provider.
func (h *HomeAssistant) TimeZone(ctx context.Context) (*time.Location, error) {
	var cfg struct {
		TimeZone string `json:"time_zone"`
	}
	if err := h.ws.Command(ctx, "get_config", nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	if cfg.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.TimeZone, err)
	}
	return loc, nil
}

type haDashboard struct {
	ID          string                   `json:"id"`
	DashboardID string                   `json:"dashboard_id"`
	Name        string                   `json:"name"`
	Title       string                   `json:"title"`
	Preferences *types.EnergyPreferences `json:"preferences"`
	types.EnergyPreferences
}

type haPrefs struct {
	types.EnergyPreferences
	Dashboards []haDashboard `json:"dashboards"`
}

// GetDashboards implements Provider. Home Assistant stores a single set of
// energy preferences, exposed as the "energy" dashboard, unless the response
// carries a dashboards list.
func (h *HomeAssistant) GetDashboards(ctx context.Context) ([]types.Dashboard, error) {
	var prefs haPrefs
	if err := h.ws.Command(ctx, "energy/get_prefs", nil, &prefs); err != nil {
		return nil, fmt.Errorf("failed to get energy preferences: %w", err)
	}

	if len(prefs.Dashboards) == 0 {
		if len(prefs.EnergySources) == 0 && len(prefs.DeviceConsumption) == 0 {
			return nil, nil
		}
		return []types.Dashboard{{
			ID:          "energy",
			Name:        "Energy",
			Preferences: prefs.EnergyPreferences,
		}}, nil
	}

	dashboards := make([]types.Dashboard, 0, len(prefs.Dashboards))
	for _, d := range prefs.Dashboards {
		dashboard := types.Dashboard{
			ID:          d.ID,
			Name:        d.Name,
			Preferences: d.EnergyPreferences,
		}
		if dashboard.ID == "" {
			dashboard.ID = d.DashboardID
		}
		if dashboard.Name == "" {
			dashboard.Name = d.Title
		}
		if d.Preferences != nil {
			dashboard.Preferences = *d.Preferences
		}
		dashboards = append(dashboards, dashboard)
	}
	return dashboards, nil
}

type haMetadata struct {
	StatisticID string `json:"statistic_id"`
	Name        string `json:"name"`
	Unit        string `json:"statistics_unit_of_measurement"`
	DisplayUnit string `json:"display_unit_of_measurement"`
}

// GetMetadata implements Provider.
func (h *HomeAssistant) GetMetadata(ctx context.Context, ids []string) (map[string]types.StatisticMetadata, error) {
	out := make(map[string]types.StatisticMetadata, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var res []haMetadata
	if err := h.ws.Command(ctx, "recorder/get_statistics_metadata", map[string]any{
		"statistic_ids": ids,
	}, &res); err != nil {
		return nil, fmt.Errorf("failed to get statistics metadata: %w", err)
	}

	for _, m := range res {
		unit := m.Unit
		if unit == "" {
			unit = m.DisplayUnit
		}
		out[m.StatisticID] = types.StatisticMetadata{
			StatisticID: m.StatisticID,
			Name:        m.Name,
			Unit:        unit,
		}
	}
	return out, nil
}

// haTime is a timestamp sent either as milliseconds since the epoch or as an
// ISO 8601 string depending on the Home Assistant version.
type haTime struct {
	time.Time
}

func (t *haTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	t.Time = time.UnixMilli(int64(math.Round(ms)))
	return nil
}

type haStatisticRow struct {
	Start  haTime   `json:"start"`
	End    haTime   `json:"end"`
	Change *float64 `json:"change"`
}

// GetStatistics implements Provider.
func (h *HomeAssistant) GetStatistics(ctx context.Context, ids []string, start, end time.Time, bucket types.Bucket) (map[string][]types.StatisticRow, error) {
	out := make(map[string][]types.StatisticRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var res map[string][]haStatisticRow
	if err := h.ws.Command(ctx, "recorder/statistics_during_period", map[string]any{
		"start_time":    start.UTC().Format(time.RFC3339),
		"end_time":      end.UTC().Format(time.RFC3339),
		"statistic_ids": ids,
		"period":        string(bucket),
		"types":         []string{"change"},
	}, &res); err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	for id, rows := range res {
		converted := make([]types.StatisticRow, 0, len(rows))
		for _, r := range rows {
			converted = append(converted, types.StatisticRow{
				Start:  r.Start.Time,
				End:    r.End.Time,
				Change: r.Change,
			})
		}
		out[id] = converted
	}

	slog.DebugContext(
		ctx,
		"fetched statistics",
		slog.Int("requested", len(ids)),
		slog.Int("returned", len(out)),
		slog.String("bucket", string(bucket)),
	)
	return out, nil
}

// haState is a state in the minimal history format. lc is omitted when it
// equals lu.
type haState struct {
	State       string   `json:"s"`
	LastUpdated float64  `json:"lu"`
	LastChanged *float64 `json:"lc"`
}

// GetStateHistory implements Provider.
func (h *HomeAssistant) GetStateHistory(ctx context.Context, entityID string, start, end time.Time) ([]types.StateSnapshot, error) {
	var res map[string][]haState
	if err := h.ws.Command(ctx, "history/history_during_period", map[string]any{
		"start_time":       start.UTC().Format(time.RFC3339),
		"end_time":         end.UTC().Format(time.RFC3339),
		"entity_ids":       []string{entityID},
		"minimal_response": true,
		"no_attributes":    true,
	}, &res); err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", entityID, err)
	}

	states := res[entityID]
	out := make([]types.StateSnapshot, 0, len(states))
	for _, s := range states {
		ts := s.LastUpdated
		if s.LastChanged != nil {
			ts = *s.LastChanged
		}
		out = append(out, types.StateSnapshot{
			State:       s.State,
			LastChanged: time.UnixMilli(int64(math.Round(ts * 1000))),
		})
	}
	return out, nil
}
