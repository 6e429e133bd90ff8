package statistics

import (
	"fmt"

	"github.com/jameshartig/energyreport/pkg/homeassistant"
	"github.com/levenlabs/go-lflag"
)

// Configured sets up the statistics provider based on flags.
func Configured(ha *homeassistant.Client) Provider {
	provider := lflag.String("statistics-provider", "homeassistant", "Statistics provider to use (available: homeassistant)")

	var p struct{ Provider }

	lflag.Do(func() {
		switch *provider {
		case "homeassistant":
			hass := NewHomeAssistant(ha)
			if err := hass.Validate(); err != nil {
				panic(fmt.Sprintf("homeassistant validation failed: %v", err))
			}
			p.Provider = hass
		default:
			panic(fmt.Sprintf("unknown statistics provider: %s", *provider))
		}
	})

	return &p
}
