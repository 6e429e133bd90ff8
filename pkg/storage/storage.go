// Package storage persists settings and the history of generated reports.
package storage

import (
	"context"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
)

// Database stores settings and report history.
type Database interface {
	// GetSettings returns the stored settings with defaults applied. Default
	// settings are returned when nothing has been stored yet.
	GetSettings(ctx context.Context) (types.Settings, error)
	SetSettings(ctx context.Context, settings types.Settings) error
	InsertReport(ctx context.Context, record types.ReportRecord) error
	// GetReportHistory returns reports generated in [start, end), oldest
	// first.
	GetReportHistory(ctx context.Context, start, end time.Time) ([]types.ReportRecord, error)
	Close() error
}
