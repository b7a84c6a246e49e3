// Package events publishes domain events to a message broker
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// publishChannel is the part of *amqp091.Channel the publisher uses
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher is an event publisher that holds resources until closed
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, tx *entity.Transaction) error
	Close() error
}

// Connect returns an AMQP publisher for url, or a NopPublisher when url is empty or the
// broker cannot be reached. A broker outage therefore disables events instead of
// stopping the service.
func Connect(url, exchange, routingKey string, log logger.Logger) Publisher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if url == "" {
		log.Info("No AMQP broker configured, events disabled", nil)
		return NopPublisher{}
	}

	p, err := NewAMQPPublisher(url, exchange, routingKey, log)
	if err != nil {
		log.Error("Failed to connect to AMQP broker, events disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return NopPublisher{}
	}
	return p
}

// AMQPPublisher sends transaction.created events to a direct exchange
type AMQPPublisher struct {
	conn       *amqp091.Connection
	channel    publishChannel
	exchange   string
	routingKey string
	logger     logger.Logger
	now        func() time.Time
}

// NewAMQPPublisher dials url and declares a durable direct exchange
func NewAMQPPublisher(url, exchange, routingKey string, log logger.Logger) (*AMQPPublisher, error) {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Info("AMQP publisher ready", map[string]interface{}{
		"exchange":    exchange,
		"routing_key": routingKey,
	})

	p := newPublisher(channel, exchange, routingKey, log)
	p.conn = conn
	return p, nil
}

func newPublisher(channel publishChannel, exchange, routingKey string, log logger.Logger) *AMQPPublisher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AMQPPublisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     log,
		now:        time.Now,
	}
}

// PublishTransactionCreated sends tx as a persistent JSON message
func (p *AMQPPublisher) PublishTransactionCreated(ctx context.Context, tx *entity.Transaction) error {
	now := p.now()
	body, err := NewTransactionCreatedMessage(tx, now).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    tx.ID,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Debug("Published transaction created event", map[string]interface{}{
		"request_id":  middleware.GetRequestID(ctx),
		"id":          tx.ID,
		"exchange":    p.exchange,
		"routing_key": p.routingKey,
	})

	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		conn := p.conn
		p.conn = nil
		return conn.Close()
	}
	return nil
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Close does nothing
func (NopPublisher) Close() error {
	return nil
}

// PublishTransactionCreated does nothing
func (NopPublisher) PublishTransactionCreated(context.Context, *entity.Transaction) error {
	return nil
}
