package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	notifyport "pet-reunite/internal/ports/notify"

	"github.com/streadway/amqp"
)

var (
	ErrNotConnected = errors.New("amqp publisher not connected")
)

const (
	defaultExchange = "pet-reunite.notifications"
)

// Publisher implementa notify.Sink publicando a un exchange fanout.
// At-least-once la garantiza el broker + los consumidores; acá solo
// publicamos y no reintentamos (fire-and-forget desde el core).
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial conecta y declara el exchange. exchange vacío usa el default.
func Dial(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
	}, nil
}

type notificationEnvelope struct {
	UserRef   string    `json:"user_ref"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	ReportID  string    `json:"report_id"`
	MatchID   string    `json:"match_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (p *Publisher) Notify(ctx context.Context, userRef string, msg notifyport.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(notificationEnvelope{
		UserRef:   userRef,
		Subject:   msg.Subject,
		Body:      msg.Body,
		ReportID:  msg.ReportID,
		MatchID:   msg.MatchID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("amqp marshal: %w", err)
	}

	return p.ch.Publish(
		p.exchange,
		"", // fanout ignora routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && first == nil {
			first = err
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && first == nil {
			first = err
		}
		p.conn = nil
	}
	return first
}
