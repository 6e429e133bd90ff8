// Package output persists rendered reports.
package output

import (
	"context"
)

// ContentType of every written report.
const ContentType = "application/pdf"

// Sink stores a rendered report and returns where it was written.
type Sink interface {
	Write(ctx context.Context, dir, name string, data []byte) (string, error)
	Validate() error
}
