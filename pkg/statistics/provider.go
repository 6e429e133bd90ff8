// Package statistics reads dashboards and long term statistics from the
// store that records them.
package statistics

import (
	"context"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
)

// Provider is a source of energy dashboards and statistics.
type Provider interface {
	// TimeZone returns the location reports are computed in.
	TimeZone(ctx context.Context) (*time.Location, error)
	// GetDashboards returns the configured energy dashboards.
	GetDashboards(ctx context.Context) ([]types.Dashboard, error)
	// GetMetadata returns metadata keyed by statistic id. Unknown ids are
	// missing from the map.
	GetMetadata(ctx context.Context, ids []string) (map[string]types.StatisticMetadata, error)
	// GetStatistics returns the change of each statistic per bucket in
	// [start, end).
	GetStatistics(ctx context.Context, ids []string, start, end time.Time, bucket types.Bucket) (map[string][]types.StatisticRow, error)
	// GetStateHistory returns the recorded states of an entity in [start, end).
	GetStateHistory(ctx context.Context, entityID string, start, end time.Time) ([]types.StateSnapshot, error)
	Validate() error
	Close() error
}
