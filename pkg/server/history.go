package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// longest range a single history request may cover
const maxHistoryRange = 366 * 24 * time.Hour

func (s *Server) handleReportHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := s.parseTimeRange(r)
	if err != nil {
		http.Error(w, "invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	reports, err := s.storage.GetReportHistory(ctx, start, end)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get report history", slog.Any("error", err))
		http.Error(w, "failed to get report history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	// Reports are only ever added with the current time, so a range that ended
	// before today will not change.
	today := time.Now().Truncate(24 * time.Hour)
	if end.Before(today) {
		w.Header().Set("Cache-Control", "private, max-age=86400")
	} else {
		w.Header().Set("Cache-Control", "private, max-age=60")
	}

	if err := json.NewEncoder(w).Encode(reports); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" && endStr == "" {
		end := time.Now()
		return end.Add(-s.historyDefaultDuration), end, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start and end must be given together")
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start time must be before end time")
	}

	if end.Sub(start) > maxHistoryRange {
		return time.Time{}, time.Time{}, fmt.Errorf("time range cannot exceed 366 days")
	}

	return start, end, nil
}
