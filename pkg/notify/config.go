package notify

import (
	"fmt"

	"github.com/jameshartig/energyreport/pkg/homeassistant"
	"github.com/levenlabs/go-lflag"
)

// Configured sets up the notifier based on flags.
func Configured(ha *homeassistant.Client) Notifier {
	provider := lflag.String("notify-provider", "homeassistant", "Where report notifications are sent (available: homeassistant, amqp, log)")
	amqpURL := lflag.String("notify-amqp-url", "", "AMQP broker URL for report events")
	amqpExchange := lflag.String("notify-amqp-exchange", "energyreport", "AMQP exchange report events are published to")

	var n struct{ Notifier }

	lflag.Do(func() {
		switch *provider {
		case "homeassistant":
			hass := NewHomeAssistant(ha)
			if err := hass.Validate(); err != nil {
				panic(fmt.Sprintf("homeassistant notify validation failed: %v", err))
			}
			n.Notifier = hass
		case "amqp":
			a := NewAMQP(*amqpURL, *amqpExchange)
			if err := a.Validate(); err != nil {
				panic(fmt.Sprintf("amqp notify validation failed: %v", err))
			}
			n.Notifier = a
		case "log":
			n.Notifier = Log{}
		default:
			panic(fmt.Sprintf("unknown notify provider: %s", *provider))
		}
	})

	return &n
}
