package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPeriod() types.ResolvedPeriod {
	loc := time.UTC
	return types.ResolvedPeriod{
		Period:    types.PeriodWeek,
		Bucket:    types.BucketDay,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, loc),
		EndDate:   time.Date(2024, 1, 7, 0, 0, 0, 0, loc),
		Start:     time.Date(2024, 1, 1, 0, 0, 0, 0, loc),
		End:       time.Date(2024, 1, 8, 0, 0, 0, 0, loc),
		Location:  loc,
	}
}

func TestResolveFilename(t *testing.T) {
	p := testPeriod()

	t.Run("Default Pattern", func(t *testing.T) {
		name, err := ResolveFilename("", "", p)
		require.NoError(t, err)
		assert.Equal(t, "energy_report_2024-01-01_2024-01-07.pdf", name)
	})

	t.Run("Pattern With Period", func(t *testing.T) {
		name, err := ResolveFilename("", "{period}-{start}", p)
		require.NoError(t, err)
		assert.Equal(t, "week-2024-01-01.pdf", name)
	})

	t.Run("Explicit Filename Wins", func(t *testing.T) {
		name, err := ResolveFilename("  monthly  ", "{start}.pdf", p)
		require.NoError(t, err)
		assert.Equal(t, "monthly.pdf", name)
	})

	t.Run("Explicit Filename Keeps Extension", func(t *testing.T) {
		name, err := ResolveFilename("Report.PDF", "", p)
		require.NoError(t, err)
		assert.Equal(t, "Report.PDF", name)
	})

	t.Run("Unknown Placeholder", func(t *testing.T) {
		_, err := ResolveFilename("", "report_{year}.pdf", p)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "filename_pattern", verr.Field)
		assert.Contains(t, verr.Message, "{year}")
	})

	t.Run("Empty Result", func(t *testing.T) {
		_, err := ResolveFilename("", "{}", p)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "filename_pattern", verr.Field)
	})

	t.Run("Path Rejected", func(t *testing.T) {
		_, err := ResolveFilename("../escape", "", p)
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "filename", verr.Field)
	})
}

func TestTranslations(t *testing.T) {
	assert.Equal(t, "fr", Lookup("").Language)
	assert.Equal(t, "fr", Lookup("de").Language)
	assert.Equal(t, "en", Lookup("EN").Language)
	assert.Equal(t, "nl", Lookup("nl").Language)
	assert.True(t, SupportedLanguage("nl"))
	assert.False(t, SupportedLanguage("de"))

	for _, lang := range Languages() {
		tr := Lookup(lang)
		for _, c := range types.Categories {
			assert.NotEqual(t, string(c), tr.Category(c), "%s: %s", lang, c)
		}
		for _, key := range []string{"co2_electricity", "co2_gas", "co2_water", "co2_savings"} {
			assert.NotEqual(t, key, tr.CO2Sensor(key), "%s: %s", lang, key)
		}
	}

	assert.Equal(t, "from 1 to 2", Format("from {start} to {end}", "start", "1", "end", "2"))
	assert.Equal(t, "{unknown}", Format("{unknown}", "start", "1"))
}

func TestConclusionLines(t *testing.T) {
	tr := Lookup("en")

	t.Run("Empty Summary", func(t *testing.T) {
		assert.Empty(t, ConclusionLines(tr, types.Summary{}))
	})

	t.Run("Single Unit", func(t *testing.T) {
		lines := ConclusionLines(tr, types.Summary{Categories: []types.CategoryTotal{
			{Category: types.CategoryImport, Unit: "kWh", Total: 20},
			{Category: types.CategoryExport, Unit: "kWh", Total: -5},
		}})
		require.Len(t, lines, 2)
		assert.Equal(t, "The net flow observed over the period is 15.0 kWh.", lines[0])
		assert.Equal(t, "The most significant category is Grid import with 20.0 kWh.", lines[1])
	})
}

func TestRender(t *testing.T) {
	summary := types.Summary{
		Categories: []types.CategoryTotal{
			{Category: types.CategoryProduction, Unit: "kWh", Total: 12.5},
			{Category: types.CategoryImport, Unit: "kWh", Total: 8},
			{Category: types.CategoryExport, Unit: "kWh", Total: -3},
		},
		Details: []types.EntityTotal{
			{Category: types.CategoryProduction, StatisticID: "sensor.solar", Name: "Solar énergie", Unit: "kWh", Total: 12.5},
		},
		EstimatedConsumption: 17.5,
		TrackedConsumption:   20,
		Untracked:            -2.5,
		UntrackedNegative:    true,
		Metrics:              3,
	}

	for _, lang := range Languages() {
		t.Run("Language "+lang, func(t *testing.T) {
			data, err := Render(Report{
				Period:    testPeriod(),
				Dashboard: "Energy",
				Summary:   summary,
				CO2: []types.CO2Total{
					{Sensor: types.CO2Sensor{EntityID: "sensor.co2", Key: "co2_electricity"}, Total: 4.2},
					{Sensor: types.CO2Sensor{EntityID: "sensor.saved", Key: "co2_savings", IsSaving: true}, Total: 1},
				},
				Advice:      "Shift loads to solar hours.",
				Location:    "www/energy_reports/report.pdf",
				GeneratedAt: time.Date(2024, 1, 8, 6, 0, 0, 0, time.UTC),
				Language:    lang,
			})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
			assert.True(t, bytes.Contains(data, []byte("%%EOF")))
		})
	}

	t.Run("Empty Summary Renders", func(t *testing.T) {
		data, err := Render(Report{Period: testPeriod(), GeneratedAt: time.Now()})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})
}
