package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/jameshartig/energyreport/pkg/types"
)

// RoutingKey is used for every published report event.
const RoutingKey = "report.generated"

type connection interface {
	IsClosed() bool
	Close() error
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// GeneratedMessage is the body of a report.generated event.
type GeneratedMessage struct {
	Type      string             `json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Report    types.ReportRecord `json:"report"`
	Timestamp time.Time          `json:"timestamp"`
}

// AMQP publishes report events to a durable direct exchange. The connection
// is opened on first use and reopened after it closes.
type AMQP struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    connection
	channel publisher
	dial    func() (publisher, error)
}

// NewAMQP returns a notifier publishing to exchange on the broker at url.
func NewAMQP(url, exchange string) *AMQP {
	a := &AMQP{url: url, exchange: exchange}
	a.dial = a.connect
	return a
}

// Validate implements Notifier.
func (a *AMQP) Validate() error {
	if a.url == "" {
		return fmt.Errorf("notify-amqp-url is required")
	}
	if a.exchange == "" {
		return fmt.Errorf("notify-amqp-exchange is required")
	}
	return nil
}

func (a *AMQP) connect() (publisher, error) {
	conn, err := amqp091.Dial(a.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		a.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	a.conn = conn
	return channel, nil
}

// Notify implements Notifier.
func (a *AMQP) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(GeneratedMessage{
		Type:      RoutingKey,
		Title:     n.Title,
		Message:   n.Message,
		Report:    n.Record,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.channel == nil || (a.conn != nil && a.conn.IsClosed()) {
		a.reset()
		channel, err := a.dial()
		if err != nil {
			return err
		}
		a.channel = channel
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.channel.PublishWithContext(
		ctx,
		a.exchange, // exchange
		RoutingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			MessageId:    n.Record.ID,
			Body:         body,
		},
	)
	if err != nil {
		a.reset()
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(
		ctx,
		"published report event",
		slog.String("exchange", a.exchange),
		slog.String("reportID", n.Record.ID),
	)
	return nil
}

// reset drops the channel and closes the connection. a.mu must be held.
func (a *AMQP) reset() error {
	a.channel = nil
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	if errors.Is(err, amqp091.ErrClosed) {
		return nil
	}
	return err
}

// Close implements Notifier.
func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reset()
}
