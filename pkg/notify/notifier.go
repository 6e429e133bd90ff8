// Package notify tells users that a report has been generated.
package notify

import (
	"context"

	"github.com/jameshartig/energyreport/pkg/types"
)

// Notification describes a generated report.
type Notification struct {
	Title   string
	Message string
	Record  types.ReportRecord
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Validate() error
	Close() error
}
