package event

import (
	"banking-api/internal/infrastructure/monitoring"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publisherAppID = "banking-api"

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishTransactionCompleted(ctx context.Context, event TransactionCompletedEvent) error
	PublishLoanDisbursed(ctx context.Context, event LoanDisbursedEvent) error
	PublishLoanRepaid(ctx context.Context, event LoanRepaidEvent) error
	PublishLoanOverdue(ctx context.Context, event LoanOverdueEvent) error
}

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	if err := tempCh.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	return p.publish(ctx, RoutingKeyCustomerCreated, event)
}

func (p *RabbitMQEventPublisher) PublishTransactionCompleted(ctx context.Context, event TransactionCompletedEvent) error {
	return p.publish(ctx, event.RoutingKey(), event)
}

func (p *RabbitMQEventPublisher) PublishLoanDisbursed(ctx context.Context, event LoanDisbursedEvent) error {
	return p.publish(ctx, RoutingKeyLoanDisbursed, event)
}

func (p *RabbitMQEventPublisher) PublishLoanRepaid(ctx context.Context, event LoanRepaidEvent) error {
	return p.publish(ctx, RoutingKeyLoanRepaid, event)
}

func (p *RabbitMQEventPublisher) PublishLoanOverdue(ctx context.Context, event LoanOverdueEvent) error {
	return p.publish(ctx, RoutingKeyLoanOverdue, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload interface{}) (err error) {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))
	defer func() { monitoring.RecordEventPublished(routingKey, err) }()

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := newPublishing(body)
	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body), "messageId", msg.MessageId)

	if err = channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message", "messageId", msg.MessageId)
	return nil
}

func newPublishing(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
		AppId:        publisherAppID,
	}
}

// NoopPublisher drops every event. It stands in when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) drop(ctx context.Context, routingKey string) error {
	p.logger.DebugContext(ctx, "Event dropped, no broker configured", "routingKey", routingKey)
	return nil
}

func (p *NoopPublisher) PublishCustomerCreated(ctx context.Context, _ CustomerCreatedEvent) error {
	return p.drop(ctx, RoutingKeyCustomerCreated)
}

func (p *NoopPublisher) PublishTransactionCompleted(ctx context.Context, event TransactionCompletedEvent) error {
	return p.drop(ctx, event.RoutingKey())
}

func (p *NoopPublisher) PublishLoanDisbursed(ctx context.Context, _ LoanDisbursedEvent) error {
	return p.drop(ctx, RoutingKeyLoanDisbursed)
}

func (p *NoopPublisher) PublishLoanRepaid(ctx context.Context, _ LoanRepaidEvent) error {
	return p.drop(ctx, RoutingKeyLoanRepaid)
}

func (p *NoopPublisher) PublishLoanOverdue(ctx context.Context, _ LoanOverdueEvent) error {
	return p.drop(ctx, RoutingKeyLoanOverdue)
}
