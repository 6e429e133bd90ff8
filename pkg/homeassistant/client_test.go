package homeassistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHA struct {
	token    string
	handle   func(cmd map[string]any) []map[string]any
	dials    atomic.Int32
	upgrader websocket.Upgrader
}

func (f *fakeHA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	f.dials.Add(1)

	if err := conn.WriteJSON(map[string]any{"type": "auth_required"}); err != nil {
		return
	}
	var auth map[string]any
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth["access_token"] != f.token {
		_ = conn.WriteJSON(map[string]any{"type": "auth_invalid", "message": "Invalid access token"})
		return
	}
	if err := conn.WriteJSON(map[string]any{"type": "auth_ok"}); err != nil {
		return
	}

	for {
		var cmd map[string]any
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		for _, resp := range f.handle(cmd) {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}
}

func TestCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("Authenticates And Decodes Result", func(t *testing.T) {
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any {
			assert.Equal(t, "get_config", cmd["type"])
			return []map[string]any{{
				"id":      cmd["id"],
				"type":    "result",
				"success": true,
				"result":  map[string]any{"time_zone": "Europe/Paris"},
			}}
		}}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		defer c.Close()

		var cfg struct {
			TimeZone string `json:"time_zone"`
		}
		require.NoError(t, c.Command(ctx, "get_config", nil, &cfg))
		assert.Equal(t, "Europe/Paris", cfg.TimeZone)
	})

	t.Run("Skips Events And Other IDs", func(t *testing.T) {
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any {
			return []map[string]any{
				{"id": cmd["id"], "type": "event", "event": map[string]any{}},
				{"id": 999, "type": "result", "success": true, "result": "wrong"},
				{"id": cmd["id"], "type": "result", "success": true, "result": "right"},
			}
		}}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		defer c.Close()

		var got string
		require.NoError(t, c.Command(ctx, "ping", nil, &got))
		assert.Equal(t, "right", got)
	})

	t.Run("Merges Fields And Increments IDs", func(t *testing.T) {
		var ids []float64
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any {
			ids = append(ids, cmd["id"].(float64))
			assert.Equal(t, []any{"sensor.a"}, cmd["statistic_ids"])
			return []map[string]any{{"id": cmd["id"], "type": "result", "success": true}}
		}}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		defer c.Close()

		fields := map[string]any{"statistic_ids": []string{"sensor.a"}}
		require.NoError(t, c.Command(ctx, "recorder/get_statistics_metadata", fields, nil))
		require.NoError(t, c.Command(ctx, "recorder/get_statistics_metadata", fields, nil))
		assert.Equal(t, []float64{1, 2}, ids)
		assert.EqualValues(t, 1, ha.dials.Load())
	})

	t.Run("Command Error", func(t *testing.T) {
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any {
			return []map[string]any{{
				"id":      cmd["id"],
				"type":    "result",
				"success": false,
				"error":   map[string]any{"code": "unknown_command", "message": "Unknown command."},
			}}
		}}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		defer c.Close()

		err := c.Command(ctx, "energy/get_prefs", nil, nil)
		require.Error(t, err)
		var cmdErr *CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, "unknown_command", cmdErr.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any { return nil }}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "wrong")
		defer c.Close()

		err := c.Command(ctx, "get_config", nil, nil)
		assert.ErrorIs(t, err, ErrAuthInvalid)
	})

	t.Run("Reconnects After Transport Error", func(t *testing.T) {
		ha := &fakeHA{token: "secret", handle: func(cmd map[string]any) []map[string]any {
			return []map[string]any{{"id": cmd["id"], "type": "result", "success": true}}
		}}
		srv := httptest.NewServer(ha)
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		defer c.Close()

		require.NoError(t, c.Command(ctx, "ping", nil, nil))
		c.mu.Lock()
		c.conn.Close()
		c.mu.Unlock()

		assert.Error(t, c.Command(ctx, "ping", nil, nil))
		require.NoError(t, c.Command(ctx, "ping", nil, nil))
		assert.EqualValues(t, 2, ha.dials.Load())
	})
}

func TestCallService(t *testing.T) {
	ctx := context.Background()

	t.Run("Posts JSON With Bearer Token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/services/persistent_notification/create", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			var data map[string]string
			require.NoError(t, json.Unmarshal(body, &data))
			assert.Equal(t, "hello", data["message"])
			w.Write([]byte("[]"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		require.NoError(t, c.CallService(ctx, "persistent_notification", "create", map[string]string{"message": "hello"}))
	})

	t.Run("Non-200 Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "secret")
		err := c.CallService(ctx, "persistent_notification", "create", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewClient("http://ha.local:8123", "t").Validate())
	assert.Error(t, NewClient("http://ha.local:8123", "").Validate())
	assert.Error(t, NewClient("ftp://ha.local", "t").Validate())
	assert.Error(t, NewClient("", "t").Validate())
}
