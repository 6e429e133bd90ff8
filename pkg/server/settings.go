package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jameshartig/energyreport/pkg/render"
	"github.com/jameshartig/energyreport/pkg/types"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get settings", slog.Any("error", err))
		http.Error(w, "failed to get settings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(settings); err != nil {
		slog.ErrorContext(ctx, "failed to encode settings", slog.Any("error", err))
	}
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.bypassAuth {
		// don't let a misconfiguration to allow updates
		if len(s.adminEmails) == 0 {
			http.Error(w, "settings updates are disabled", http.StatusForbidden)
			return
		}

		// Validate Authentication from Context (set by authMiddleware)
		email, ok := ctx.Value(emailContextKey).(string)
		if !ok || email == "" {
			http.Error(w, "missing authentication", http.StatusUnauthorized)
			return
		}

		if !s.isAdmin(email) {
			slog.WarnContext(ctx, "unauthorized email for settings update", slog.String("email", email))
			http.Error(w, "unauthorized email", http.StatusForbidden)
			return
		}
	}

	var newSettings types.Settings
	if err := json.NewDecoder(r.Body).Decode(&newSettings); err != nil {
		slog.WarnContext(ctx, "failed to decode settings", slog.Any("error", err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateSettings(newSettings); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid settings values", http.StatusBadRequest)
		return
	}

	if err := s.storage.SetSettings(ctx, newSettings); err != nil {
		slog.ErrorContext(ctx, "failed to save settings", slog.Any("error", err))
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "settings updated")

	w.WriteHeader(http.StatusOK)
}

// validateSettings rejects settings that would make every default report
// fail. Empty fields are allowed and fall back to their defaults.
func validateSettings(settings types.Settings) error {
	if settings.DefaultReportType != "" && !settings.DefaultReportType.Valid() {
		return types.NewValidationError("default_report_type", "unknown period %q", settings.DefaultReportType)
	}
	if settings.Language != "" && !render.SupportedLanguage(settings.Language) {
		return types.NewValidationError("language", "unsupported language %q (available: %s)",
			settings.Language, strings.Join(render.Languages(), ", "))
	}
	if err := types.ValidateOutputDir(settings.OutputDir); err != nil {
		return err
	}

	// resolve the pattern against a sample period so placeholders are checked
	sample := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := render.ResolveFilename("", settings.FilenamePattern, types.ResolvedPeriod{
		Period:    types.PeriodWeek,
		StartDate: sample,
		EndDate:   sample.AddDate(0, 0, 6),
	})
	if err != nil {
		return err
	}

	if settings.CO2Enabled {
		for _, sensor := range []struct{ field, entityID string }{
			{"co2_electricity_sensor", settings.CO2ElectricitySensor},
			{"co2_gas_sensor", settings.CO2GasSensor},
			{"co2_water_sensor", settings.CO2WaterSensor},
			{"co2_savings_sensor", settings.CO2SavingsSensor},
		} {
			if sensor.entityID != "" && !strings.Contains(sensor.entityID, ".") {
				return types.NewValidationError(sensor.field, "%q is not an entity id", sensor.entityID)
			}
		}
	}
	return nil
}
