package homeassistant

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/levenlabs/go-lflag"
)

// Configured registers the Home Assistant connection flags and returns a
// client that connects lazily on first use.
func Configured() *Client {
	baseURL := lflag.String("homeassistant-url", "http://homeassistant.local:8123", "Base URL of the Home Assistant instance")
	token := lflag.String("homeassistant-token", "", "Long-lived access token used for the websocket and REST APIs")

	c := &Client{}
	lflag.Do(func() {
		c.baseURL = strings.TrimRight(*baseURL, "/")
		c.token = *token
		c.client = &http.Client{Timeout: 30 * time.Second}
		c.dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	})
	return c
}

// Validate checks that the client has what it needs to connect.
func (c *Client) Validate() error {
	if c.baseURL == "" {
		return fmt.Errorf("homeassistant-url is required")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid homeassistant-url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("homeassistant-url must be http or https, got %q", u.Scheme)
	}
	if c.token == "" {
		return fmt.Errorf("homeassistant-token is required")
	}
	return nil
}
