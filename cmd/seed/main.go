package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"

	"github.com/jameshartig/energyreport/pkg/storage"
	"github.com/jameshartig/energyreport/pkg/types"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	lflag.Configure()

	ctx := context.Background()
	defer s.Close()

	slog.InfoContext(ctx, "seeding mock data")

	settings := types.DefaultSettings()
	settings.Language = "en"
	settings.CO2Enabled = true
	settings.CO2ElectricitySensor = "sensor.electricity_maps_co2_intensity"
	settings.CO2SavingsSensor = "sensor.solar_co2_savings"
	if err := s.SetSettings(ctx, settings); err != nil {
		slog.ErrorContext(ctx, "failed to seed settings", slog.Any("error", err))
		os.Exit(1)
	}

	// One weekly report per past week, oldest first
	now := time.Now()
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}
	for weeks := 8; weeks >= 1; weeks-- {
		start := monday.AddDate(0, 0, -7*weeks)
		end := start.AddDate(0, 0, 6)
		estimated := 70 + float64(weeks)*3.5
		record := types.ReportRecord{
			ID:          uuid.NewString(),
			GeneratedAt: end.AddDate(0, 0, 1).Add(6 * time.Hour),
			Dashboard:   "Energy",
			Period:      types.PeriodWeek,
			StartDate:   start,
			EndDate:     end,
			Location: fmt.Sprintf("%s/energy_report_%s_%s.pdf", types.DefaultOutputDir,
				start.Format("2006-01-02"), end.Format("2006-01-02")),
			Language:                settings.Language,
			Metrics:                 9,
			EstimatedConsumptionKWH: estimated,
			UntrackedKWH:            estimated * 0.3,
		}
		if err := s.InsertReport(ctx, record); err != nil {
			slog.ErrorContext(ctx, "failed to seed report", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("Seeded report for %s - %s\n", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	slog.Info("seeded mock data successfully")
}
