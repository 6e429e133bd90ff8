package notify

import (
	"context"
	"fmt"
)

// NotificationID is reused for every report so only the latest one is shown.
const NotificationID = "energy_pdf_report_last_report"

type serviceCaller interface {
	CallService(ctx context.Context, domain, service string, data any) error
	Validate() error
}

// HomeAssistant creates a persistent notification in Home Assistant.
type HomeAssistant struct {
	ha serviceCaller
}

// NewHomeAssistant returns a notifier calling services through ha.
func NewHomeAssistant(ha serviceCaller) *HomeAssistant {
	return &HomeAssistant{ha: ha}
}

// Validate implements Notifier.
func (h *HomeAssistant) Validate() error {
	return h.ha.Validate()
}

// Close implements Notifier.
func (h *HomeAssistant) Close() error {
	return nil
}

// Notify implements Notifier.
func (h *HomeAssistant) Notify(ctx context.Context, n Notification) error {
	err := h.ha.CallService(ctx, "persistent_notification", "create", map[string]string{
		"title":           n.Title,
		"message":         n.Message,
		"notification_id": NotificationID,
	})
	if err != nil {
		return fmt.Errorf("failed to create persistent notification: %w", err)
	}
	return nil
}
