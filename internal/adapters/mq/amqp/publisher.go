// Package amqp publishes store change events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
)

// Defaults for the change exchange.
const (
	DefaultExchange   = "nova_changes"
	RoutingKeyPrefix  = "nova.change."
	defaultBufferSize = 256
	publishTimeout    = 5 * time.Second
)

// ErrClosed is returned when publishing on a closed publisher.
var ErrClosed = errors.New("publisher closed")

// Channel is the subset of *amqp091.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends change events to a topic exchange. Publish is synchronous;
// Enqueue hands events to a background loop started by Run.
type Publisher struct {
	ch       Channel
	conn     *amqp091.Connection
	exchange string
	log      logger.Logger

	events    chan model.DataChangeEvent
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithExchange overrides the exchange name.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.exchange = name
		}
	}
}

// WithBufferSize sets how many events Enqueue may hold before dropping.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.events = make(chan model.DataChangeEvent, n)
		}
	}
}

// WithLogger sets the publisher logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPublisher wraps an open channel.
func NewPublisher(ch Channel, opts ...Option) *Publisher {
	p := &Publisher{
		ch:       ch,
		exchange: DefaultExchange,
		log:      logger.Nop(),
		events:   make(chan model.DataChangeEvent, defaultBufferSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dial connects to url, declares the durable topic exchange and returns a
// publisher owning the connection.
func Dial(url string, opts ...Option) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := NewPublisher(ch, opts...)
	p.conn = conn
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}
	return p, nil
}

// RoutingKey returns the topic routing key for an event type.
func RoutingKey(t model.ChangeType) string {
	return RoutingKeyPrefix + string(t)
}

// Message builds the AMQP publishing for ev.
func Message(ev model.DataChangeEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.Timestamp,
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	}, nil
}

// Publish sends ev and waits for the broker to accept it.
func (p *Publisher) Publish(ctx context.Context, ev model.DataChangeEvent) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	msg, err := Message(ev)
	if err != nil {
		metrics.RecordChangePublished("error")
		return err
	}
	start := time.Now()
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev.Type), false, false, msg)
	metrics.RecordGatewayLatency("amqp", "publish", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordChangePublished("error")
		return fmt.Errorf("failed to publish message: %w", err)
	}
	metrics.RecordChangePublished("success")
	return nil
}

// Enqueue hands ev to the background loop without blocking. It reports false
// when the buffer is full or the publisher is closed.
func (p *Publisher) Enqueue(ev model.DataChangeEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.events <- ev:
		return true
	default:
		metrics.RecordChangePublished("dropped")
		return false
	}
}

// Run publishes enqueued events until ctx is done or the publisher closes.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.events:
			if !ok {
				return
			}
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.Publish(pctx, ev); err != nil {
				p.log.Warn(ctx, "change event not published",
					logger.String("event_id", ev.ID),
					logger.String("type", string(ev.Type)),
					logger.Error(err),
				)
			}
			cancel()
		}
	}
}

// Close stops the publisher and releases the channel and connection.
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()

		err = p.ch.Close()
		if p.conn != nil {
			err = errors.Join(err, p.conn.Close())
		}
	})
	return err
}
