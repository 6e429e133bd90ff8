// Package homeassistant talks to a Home Assistant instance over its websocket
// and REST APIs.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultCommandTimeout = 30 * time.Second

// ErrAuthInvalid is returned when Home Assistant rejects the access token.
var ErrAuthInvalid = errors.New("home assistant rejected the access token")

// CommandError is returned when Home Assistant answers a command with
// success=false.
type CommandError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("home assistant error %s: %s", e.Code, e.Message)
}

// Client is a Home Assistant API client. Websocket commands are sent one at a
// time over a single connection that is opened on first use and reopened
// after any transport error.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	dialer  *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int
}

// NewClient returns a client for the instance at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

type wsMessage struct {
	ID      int             `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *CommandError   `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) websocketURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/websocket"
}

// connect must be called with mu held.
func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.websocketURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial home assistant: %w", err)
	}
	setDeadline(ctx, conn)

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read auth request: %w", err)
	}
	if msg.Type != "auth_required" {
		conn.Close()
		return fmt.Errorf("unexpected message before auth: %s", msg.Type)
	}

	if err := conn.WriteJSON(map[string]string{
		"type":         "auth",
		"access_token": c.token,
	}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send auth: %w", err)
	}

	msg = wsMessage{}
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	switch msg.Type {
	case "auth_ok":
	case "auth_invalid":
		conn.Close()
		return fmt.Errorf("%w: %s", ErrAuthInvalid, msg.Message)
	default:
		conn.Close()
		return fmt.Errorf("unexpected auth response: %s", msg.Type)
	}

	slog.DebugContext(ctx, "connected to home assistant", slog.String("url", c.baseURL))

	c.conn = conn
	c.nextID = 0
	return nil
}

func setDeadline(ctx context.Context, conn *websocket.Conn) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultCommandTimeout)
	}
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)
}

// dropConn must be called with mu held.
func (c *Client) dropConn() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Command sends a websocket command and decodes its result into result, which
// may be nil. fields are merged into the command next to its id and type.
func (c *Client) Command(ctx context.Context, commandType string, fields map[string]any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return err
	}
	setDeadline(ctx, c.conn)

	c.nextID++
	id := c.nextID

	cmd := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		cmd[k] = v
	}
	cmd["id"] = id
	cmd["type"] = commandType

	if err := c.conn.WriteJSON(cmd); err != nil {
		c.dropConn()
		return fmt.Errorf("failed to send %s: %w", commandType, err)
	}

	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.dropConn()
			return fmt.Errorf("failed to read %s response: %w", commandType, err)
		}
		// skip events and stale responses
		if msg.ID != id || msg.Type != "result" {
			continue
		}
		if !msg.Success {
			if msg.Error == nil {
				return fmt.Errorf("%s failed", commandType)
			}
			return fmt.Errorf("%s failed: %w", commandType, msg.Error)
		}
		if result == nil || len(msg.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(msg.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", commandType, err)
		}
		return nil
	}
}

// CallService calls a service through the REST API.
func (c *Client) CallService(ctx context.Context, domain, service string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode service data: %w", err)
	}

	url := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, domain, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s.%s: %w", domain, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s.%s returned %d: %s", domain, service, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Close closes the websocket connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropConn()
	return nil
}
