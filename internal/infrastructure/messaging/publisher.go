// Package messaging publishes verification status events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"observer-console.backend/internal/domain/entities"
	"observer-console.backend/pkg/logger"
)

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type realConnection struct {
	conn *amqp.Connection
}

func (c realConnection) Channel() (amqpChannel, error) {
	return c.conn.Channel()
}

func (c realConnection) Close() error {
	return c.conn.Close()
}

var dialAMQP = func(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return realConnection{conn: conn}, nil
}

// RabbitMQPublisher publishes persistent JSON messages to a durable queue.
// The connection is opened lazily and re-dialed after a failed publish.
type RabbitMQPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn amqpConnection
	ch   amqpChannel
}

// NewRabbitMQPublisher creates a publisher for queue on the broker at url
func NewRabbitMQPublisher(url, queue string) *RabbitMQPublisher {
	return &RabbitMQPublisher{url: url, queue: queue}
}

// PublishStatusChanged sends event to the status queue
func (p *RabbitMQPublisher) PublishStatusChanged(ctx context.Context, event entities.StatusChangedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.VerificationID.String() + ":" + string(event.Status),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}

// Close releases the broker connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func (p *RabbitMQPublisher) channel() (amqpChannel, error) {
	if p.ch != nil {
		return p.ch, nil
	}

	conn, err := dialAMQP(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitMQPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// LogPublisher records events in the log when no broker is configured
type LogPublisher struct{}

// PublishStatusChanged logs event
func (LogPublisher) PublishStatusChanged(ctx context.Context, event entities.StatusChangedEvent) error {
	logger.Info(ctx, "Verification status changed",
		zap.String("verification_id", event.VerificationID.String()),
		zap.String("previous_status", string(event.PreviousStatus)),
		zap.String("status", string(event.Status)),
		zap.String("source", event.Source),
	)
	return nil
}
