package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameshartig/energyreport/pkg/types"
)

type mockCaller struct {
	domain  string
	service string
	data    any
	err     error
}

func (m *mockCaller) CallService(ctx context.Context, domain, service string, data any) error {
	m.domain = domain
	m.service = service
	m.data = data
	return m.err
}

func (m *mockCaller) Validate() error { return nil }

type mockConnection struct {
	closed bool
	closes int
}

func (m *mockConnection) IsClosed() bool { return m.closed }

func (m *mockConnection) Close() error {
	m.closes++
	m.closed = true
	return nil
}

type mockPublisher struct {
	exchange string
	key      string
	msgs     []amqp091.Publishing
	err      error
}

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	m.exchange = exchange
	m.key = key
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func TestHomeAssistant(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Persistent Notification", func(t *testing.T) {
		m := &mockCaller{}
		err := NewHomeAssistant(m).Notify(ctx, Notification{Title: "Energy report", Message: "line 1\nline 2"})
		require.NoError(t, err)
		assert.Equal(t, "persistent_notification", m.domain)
		assert.Equal(t, "create", m.service)
		assert.Equal(t, map[string]string{
			"title":           "Energy report",
			"message":         "line 1\nline 2",
			"notification_id": NotificationID,
		}, m.data)
	})

	t.Run("Error", func(t *testing.T) {
		m := &mockCaller{err: assert.AnError}
		err := NewHomeAssistant(m).Notify(ctx, Notification{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAMQP(t *testing.T) {
	ctx := context.Background()
	record := types.ReportRecord{ID: "abc", Dashboard: "Energy", Location: "/tmp/r.pdf"}

	t.Run("Publishes Persistent JSON", func(t *testing.T) {
		pub := &mockPublisher{}
		dials := 0
		a := NewAMQP("amqp://localhost", "energyreport")
		a.dial = func() (publisher, error) {
			dials++
			return pub, nil
		}

		require.NoError(t, a.Notify(ctx, Notification{Title: "t", Message: "m", Record: record}))
		require.NoError(t, a.Notify(ctx, Notification{Title: "t", Message: "m", Record: record}))
		assert.Equal(t, 1, dials)

		assert.Equal(t, "energyreport", pub.exchange)
		assert.Equal(t, RoutingKey, pub.key)
		require.Len(t, pub.msgs, 2)
		msg := pub.msgs[0]
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
		assert.Equal(t, "abc", msg.MessageId)

		var body GeneratedMessage
		require.NoError(t, json.Unmarshal(msg.Body, &body))
		assert.Equal(t, RoutingKey, body.Type)
		assert.Equal(t, record.Location, body.Report.Location)
	})

	t.Run("Redials After Publish Error", func(t *testing.T) {
		pub := &mockPublisher{err: assert.AnError}
		var conns []*mockConnection
		a := NewAMQP("amqp://localhost", "energyreport")
		a.dial = func() (publisher, error) {
			conn := &mockConnection{}
			conns = append(conns, conn)
			a.conn = conn
			return pub, nil
		}

		assert.ErrorIs(t, a.Notify(ctx, Notification{Record: record}), assert.AnError)
		require.Len(t, conns, 1)
		assert.Equal(t, 1, conns[0].closes, "failed connection should be closed")

		pub.err = nil
		require.NoError(t, a.Notify(ctx, Notification{Record: record}))
		require.Len(t, conns, 2)
		assert.Equal(t, 0, conns[1].closes)

		require.NoError(t, a.Close())
		assert.Equal(t, 1, conns[1].closes)
		assert.Equal(t, 1, conns[0].closes)
	})

	t.Run("Redials After Connection Closed", func(t *testing.T) {
		pub := &mockPublisher{}
		var conns []*mockConnection
		a := NewAMQP("amqp://localhost", "energyreport")
		a.dial = func() (publisher, error) {
			conn := &mockConnection{}
			conns = append(conns, conn)
			a.conn = conn
			return pub, nil
		}

		require.NoError(t, a.Notify(ctx, Notification{Record: record}))
		conns[0].closed = true
		require.NoError(t, a.Notify(ctx, Notification{Record: record}))
		require.Len(t, conns, 2)
		assert.Equal(t, 1, conns[0].closes)
	})

	t.Run("Dial Error", func(t *testing.T) {
		a := NewAMQP("amqp://localhost", "energyreport")
		a.dial = func() (publisher, error) { return nil, assert.AnError }
		assert.ErrorIs(t, a.Notify(ctx, Notification{}), assert.AnError)
	})

	t.Run("Validate", func(t *testing.T) {
		assert.Error(t, NewAMQP("", "x").Validate())
		assert.Error(t, NewAMQP("amqp://localhost", "").Validate())
		assert.NoError(t, NewAMQP("amqp://localhost", "x").Validate())
	})
}

func TestLog(t *testing.T) {
	assert.NoError(t, Log{}.Notify(context.Background(), Notification{Title: "t"}))
}
