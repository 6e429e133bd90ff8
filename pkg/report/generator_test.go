package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameshartig/energyreport/pkg/energy"
	"github.com/jameshartig/energyreport/pkg/notify"
	"github.com/jameshartig/energyreport/pkg/output"
	"github.com/jameshartig/energyreport/pkg/render"
	"github.com/jameshartig/energyreport/pkg/types"
)

func ptr[T any](v T) *T { return &v }

type statsCall struct {
	ids    []string
	start  time.Time
	end    time.Time
	bucket types.Bucket
}

type mockStats struct {
	loc        *time.Location
	dashboards []types.Dashboard
	metadata   map[string]types.StatisticMetadata
	rows       map[string][]types.StatisticRow
	history    map[string][]types.StateSnapshot
	statsErr   map[string]error
	dashErr    error

	calls []statsCall
}

func (m *mockStats) TimeZone(ctx context.Context) (*time.Location, error) {
	return m.loc, nil
}

func (m *mockStats) GetDashboards(ctx context.Context) ([]types.Dashboard, error) {
	return m.dashboards, m.dashErr
}

func (m *mockStats) GetMetadata(ctx context.Context, ids []string) (map[string]types.StatisticMetadata, error) {
	return m.metadata, nil
}

func (m *mockStats) GetStatistics(ctx context.Context, ids []string, start, end time.Time, bucket types.Bucket) (map[string][]types.StatisticRow, error) {
	m.calls = append(m.calls, statsCall{ids: ids, start: start, end: end, bucket: bucket})
	out := make(map[string][]types.StatisticRow)
	for _, id := range ids {
		if err := m.statsErr[id]; err != nil {
			return nil, err
		}
		if rows, ok := m.rows[id]; ok {
			out[id] = rows
		}
	}
	return out, nil
}

func (m *mockStats) GetStateHistory(ctx context.Context, entityID string, start, end time.Time) ([]types.StateSnapshot, error) {
	return m.history[entityID], nil
}

func (m *mockStats) Validate() error { return nil }
func (m *mockStats) Close() error    { return nil }

type mockSink struct {
	dir  string
	name string
	data []byte
	err  error
}

func (m *mockSink) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	m.dir, m.name, m.data = dir, name, data
	if m.err != nil {
		return "", m.err
	}
	return "/out/" + dir + "/" + name, nil
}

func (m *mockSink) Validate() error { return nil }

type mockNotifier struct {
	notifications []notify.Notification
	err           error
}

func (m *mockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	m.notifications = append(m.notifications, n)
	return m.err
}

func (m *mockNotifier) Validate() error { return nil }
func (m *mockNotifier) Close() error    { return nil }

type mockStorage struct {
	settings  types.Settings
	records   []types.ReportRecord
	getErr    error
	insertErr error
}

func (m *mockStorage) GetSettings(ctx context.Context) (types.Settings, error) {
	return m.settings, m.getErr
}

func (m *mockStorage) SetSettings(ctx context.Context, settings types.Settings) error {
	m.settings = settings
	return nil
}

func (m *mockStorage) InsertReport(ctx context.Context, record types.ReportRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockStorage) GetReportHistory(ctx context.Context, start, end time.Time) ([]types.ReportRecord, error) {
	return m.records, nil
}

func (m *mockStorage) Close() error { return nil }

type mockAdvisor struct {
	enabled    bool
	language   string
	conclusion string
}

func (m *mockAdvisor) Enabled() bool { return m.enabled }

func (m *mockAdvisor) Advise(ctx context.Context, language, conclusion string) string {
	m.language = language
	m.conclusion = conclusion
	return "advice"
}

func change(v float64) types.StatisticRow {
	return types.StatisticRow{Change: &v}
}

type harness struct {
	gen      *Generator
	stats    *mockStats
	sink     *mockSink
	notifier *mockNotifier
	storage  *mockStorage
	advisor  *mockAdvisor
	metrics  *Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	h := &harness{
		stats: &mockStats{
			loc: loc,
			dashboards: []types.Dashboard{{
				ID:   "energy",
				Name: "Energy",
				Preferences: types.EnergyPreferences{
					EnergySources: []types.EnergySource{
						{
							Type:     types.SourceGrid,
							FlowFrom: []types.GridFlowFrom{{StatEnergyFrom: "sensor.import"}},
							FlowTo:   []types.GridFlowTo{{StatEnergyTo: "sensor.export"}},
						},
						{Type: types.SourceSolar, StatEnergyFrom: "sensor.solar"},
					},
					DeviceConsumption: []types.DeviceConsumption{{StatConsumption: "sensor.fridge"}},
				},
			}},
			metadata: map[string]types.StatisticMetadata{
				"sensor.import": {StatisticID: "sensor.import", Name: "Import", Unit: "kWh"},
				"sensor.export": {StatisticID: "sensor.export", Name: "Export", Unit: "kWh"},
				"sensor.solar":  {StatisticID: "sensor.solar", Name: "Solar", Unit: "kWh"},
				"sensor.fridge": {StatisticID: "sensor.fridge", Name: "Fridge", Unit: "Wh"},
			},
			rows: map[string][]types.StatisticRow{
				"sensor.import": {change(10), change(5)},
				"sensor.export": {change(3)},
				"sensor.solar":  {change(8)},
				"sensor.fridge": {change(2000)},
			},
		},
		sink:     &mockSink{},
		notifier: &mockNotifier{},
		storage:  &mockStorage{settings: types.DefaultSettings()},
		advisor:  &mockAdvisor{},
		metrics:  NewMetrics(),
	}
	h.gen = NewGenerator(h.stats, h.sink, h.notifier, h.storage, h.advisor, h.metrics)
	h.gen.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, loc) }
	h.gen.newID = func() string { return "report-1" }
	return h
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Current Week With Defaults", func(t *testing.T) {
		h := newHarness(t)

		record, err := h.gen.Generate(ctx, types.ReportRequest{})
		require.NoError(t, err)

		assert.Equal(t, "report-1", record.ID)
		assert.Equal(t, types.PeriodWeek, record.Period)
		assert.Equal(t, "2024-01-08", record.StartDate.Format(time.DateOnly))
		assert.Equal(t, "2024-01-14", record.EndDate.Format(time.DateOnly))
		assert.Equal(t, "Energy", record.Dashboard)
		assert.Equal(t, "fr", record.Language)
		assert.Equal(t, 4, record.Metrics)
		assert.InDelta(t, 20, record.EstimatedConsumptionKWH, 1e-9)
		assert.InDelta(t, 18, record.UntrackedKWH, 1e-9)
		assert.Equal(t, "/out/www/energy_reports/energy_report_2024-01-08_2024-01-14.pdf", record.Location)

		assert.Equal(t, types.DefaultOutputDir, h.sink.dir)
		assert.True(t, strings.HasPrefix(string(h.sink.data), "%PDF-"))

		require.Len(t, h.stats.calls, 1)
		call := h.stats.calls[0]
		assert.Equal(t, types.BucketDay, call.bucket)
		assert.Equal(t, []string{"sensor.import", "sensor.export", "sensor.solar", "sensor.fridge"}, call.ids)
		assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, h.stats.loc), call.start)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, h.stats.loc), call.end)

		require.Len(t, h.notifier.notifications, 1)
		n := h.notifier.notifications[0]
		assert.Equal(t, "Rapport énergie", n.Title)
		assert.Contains(t, n.Message, "08/01/2024")
		assert.Contains(t, n.Message, "Tableau de bord : Energy")
		assert.Contains(t, n.Message, record.Location)

		require.Len(t, h.storage.records, 1)
		assert.Equal(t, record, h.storage.records[0])

		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.generated.WithLabelValues("success")))
		assert.InDelta(t, 18.0, testutil.ToFloat64(h.metrics.untracked), 1e-9)
		assert.False(t, h.advisor.enabled)
		assert.Empty(t, h.advisor.conclusion)
	})

	t.Run("Request Overrides Settings", func(t *testing.T) {
		h := newHarness(t)

		record, err := h.gen.Generate(ctx, types.ReportRequest{
			StartDate: "2024-01-01",
			EndDate:   "2024-01-01",
			Period:    "day",
			Filename:  "daily",
			OutputDir: "reports",
			Dashboard: "ENERGY",
			Language:  "en",
		})
		require.NoError(t, err)

		assert.Equal(t, types.PeriodDay, record.Period)
		assert.Equal(t, "en", record.Language)
		assert.Equal(t, "reports", h.sink.dir)
		assert.Equal(t, "daily.pdf", h.sink.name)
		assert.Equal(t, types.BucketHour, h.stats.calls[0].bucket)
		assert.Equal(t, "Energy report", h.notifier.notifications[0].Title)
	})

	t.Run("Price And CO2 Flags From Request", func(t *testing.T) {
		h := newHarness(t)
		h.stats.dashboards[0].Preferences.EnergySources[0].FlowFrom[0].StatCost = "sensor.import_cost"
		h.stats.dashboards[0].Preferences.EnergySources[0].FlowFrom[0].StatCO2 = "sensor.import_co2"

		_, err := h.gen.Generate(ctx, types.ReportRequest{PriceEnabled: ptr(true)})
		require.NoError(t, err)
		assert.Contains(t, h.stats.calls[0].ids, "sensor.import_cost")
		assert.NotContains(t, h.stats.calls[0].ids, "sensor.import_co2")

		h.storage.settings.PriceEnabled = true
		h.storage.settings.CO2Enabled = true
		h.stats.calls = nil
		_, err = h.gen.Generate(ctx, types.ReportRequest{PriceEnabled: ptr(false)})
		require.NoError(t, err)
		assert.NotContains(t, h.stats.calls[0].ids, "sensor.import_cost")
		assert.Contains(t, h.stats.calls[0].ids, "sensor.import_co2")
	})

	t.Run("Advice When Enabled", func(t *testing.T) {
		h := newHarness(t)
		h.advisor.enabled = true

		_, err := h.gen.Generate(ctx, types.ReportRequest{Language: "nl"})
		require.NoError(t, err)
		assert.Equal(t, "nl", h.advisor.language)
		assert.Contains(t, h.advisor.conclusion, "De netto stroom over de periode bedraagt")
	})

	t.Run("Invalid Period", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.gen.Generate(ctx, types.ReportRequest{Period: "year"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "period", verr.Field)
		assert.True(t, IsInvalidRequest(err))
		assert.Nil(t, h.sink.data)
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.generated.WithLabelValues("invalid")))
	})

	t.Run("Output Dir Escapes Root", func(t *testing.T) {
		parent := t.TempDir()
		root := filepath.Join(parent, "root")

		for _, dir := range []string{"../escaped", "reports/../../escaped", filepath.Join(parent, "escaped")} {
			h := newHarness(t)
			h.gen.sink = output.NewLocal(root)

			_, err := h.gen.Generate(ctx, types.ReportRequest{OutputDir: dir})
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr, dir)
			assert.Equal(t, "output_dir", verr.Field)
			assert.True(t, IsInvalidRequest(err))
			assert.Empty(t, h.stats.calls, "no statistics should be fetched")
		}

		_, err := os.Stat(filepath.Join(parent, "escaped"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Stored Output Dir Escapes Root", func(t *testing.T) {
		h := newHarness(t)
		h.storage.settings.OutputDir = "/etc"

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "output_dir", verr.Field)
		assert.Nil(t, h.sink.data)
	})

	t.Run("Unknown Dashboard", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.gen.Generate(ctx, types.ReportRequest{Dashboard: "garage"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dashboard", verr.Field)
	})

	t.Run("No Dashboards", func(t *testing.T) {
		h := newHarness(t)
		h.stats.dashboards = nil

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		assert.ErrorIs(t, err, energy.ErrNoDashboard)
		assert.False(t, IsInvalidRequest(err))
		assert.True(t, IsNotConfigured(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.generated.WithLabelValues("unconfigured")))
	})

	t.Run("Unsupported Language", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.gen.Generate(ctx, types.ReportRequest{Language: "de"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "language", verr.Field)
	})

	t.Run("Bad Filename Pattern", func(t *testing.T) {
		h := newHarness(t)
		h.storage.settings.FilenamePattern = "report_{week}.pdf"

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "filename_pattern", verr.Field)
	})

	t.Run("Store Error", func(t *testing.T) {
		h := newHarness(t)
		h.stats.dashErr = errors.New("connection refused")

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		require.Error(t, err)
		assert.False(t, IsInvalidRequest(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.generated.WithLabelValues("error")))
	})

	t.Run("Sink Error", func(t *testing.T) {
		h := newHarness(t)
		h.sink.err = errors.New("disk full")

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		assert.ErrorContains(t, err, "disk full")
		assert.Empty(t, h.notifier.notifications)
		assert.Empty(t, h.storage.records)
	})

	t.Run("Notification And History Failures Are Not Fatal", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.err = errors.New("unreachable")
		h.storage.insertErr = errors.New("read only")

		_, err := h.gen.Generate(ctx, types.ReportRequest{})
		assert.NoError(t, err)
	})
}

func TestCO2Totals(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	loc := h.stats.loc

	h.stats.rows["sensor.co2_electricity"] = []types.StatisticRow{change(1.5), change(2.5)}
	h.stats.history = map[string][]types.StateSnapshot{
		"sensor.co2_gas": {
			{State: "100", LastChanged: time.Date(2024, 1, 7, 22, 0, 0, 0, loc)},
			{State: "1", LastChanged: time.Date(2024, 1, 8, 8, 0, 0, 0, loc)},
			{State: "3", LastChanged: time.Date(2024, 1, 8, 20, 0, 0, 0, loc)},
			{State: "2", LastChanged: time.Date(2024, 1, 9, 20, 0, 0, 0, loc)},
		},
	}
	h.stats.statsErr = map[string]error{"sensor.co2_water": errors.New("boom")}

	settings := types.DefaultSettings()
	settings.CO2Enabled = true
	settings.CO2ElectricitySensor = "sensor.co2_electricity"
	settings.CO2GasSensor = "sensor.co2_gas"
	settings.CO2WaterSensor = "sensor.co2_water"
	settings.CO2SavingsSensor = "sensor.co2_missing"

	p := types.ResolvedPeriod{
		Start:    time.Date(2024, 1, 8, 0, 0, 0, 0, loc),
		End:      time.Date(2024, 1, 15, 0, 0, 0, 0, loc),
		Location: loc,
	}
	totals := h.gen.co2Totals(ctx, settings.CO2Sensors(), p)
	require.Len(t, totals, 2)
	assert.Equal(t, "co2_electricity", totals[0].Sensor.Key)
	assert.Equal(t, 4.0, totals[0].Total)
	assert.Equal(t, "co2_gas", totals[1].Sensor.Key)
	assert.Equal(t, 5.0, totals[1].Total)
}

func TestNotificationMessage(t *testing.T) {
	record := types.ReportRecord{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		Location:  "/reports/r.pdf",
	}

	t.Run("Without Dashboard", func(t *testing.T) {
		msg := NotificationMessage(render.Lookup("en"), record)
		assert.Equal(t, "Energy report generated for 01/01/2024 to 07/01/2024.\nFile: /reports/r.pdf", msg)
	})

	t.Run("With Dashboard", func(t *testing.T) {
		record.Dashboard = "Home"
		msg := NotificationMessage(render.Lookup("en"), record)
		assert.Equal(t, "Energy report generated for 01/01/2024 to 07/01/2024.\nDashboard: Home\nFile: /reports/r.pdf", msg)
	})
}
