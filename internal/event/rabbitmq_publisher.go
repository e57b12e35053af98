package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"arthastra/internal/domain/alert"
	"arthastra/internal/domain/profile"
)

const (
	routingKeyAlertCreated   = "alert.created"
	routingKeyProfileCreated = "profile.created"
	routingKeyProfileUpdated = "profile.updated"
	publisherAppID           = "arthastra"
)

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

type EventPublisher interface {
	PublishAlertCreated(ctx context.Context, a alert.Alert) error
	PublishProfileCreated(ctx context.Context, p profile.ApplicantProfile) error
	PublishProfileUpdated(ctx context.Context, p profile.ApplicantProfile) error
}

// AlertCreatedEvent is the wire form of an alert.created message.
type AlertCreatedEvent struct {
	AlertID   string    `json:"alertId"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfileEvent announces profile lifecycle changes for downstream consumers
// (CRM sync, analytics).
type ProfileEvent struct {
	UserID    int64     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (EventPublisher, error) {
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

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishAlertCreated(ctx context.Context, a alert.Alert) error {
	return p.publish(ctx, routingKeyAlertCreated, AlertCreatedEvent{
		AlertID:   a.ID.String(),
		UserID:    a.UserID,
		Type:      string(a.Type),
		Title:     a.Title,
		Severity:  string(a.Severity),
		Timestamp: a.CreatedAt,
	})
}

func (p *RabbitMQEventPublisher) PublishProfileCreated(ctx context.Context, ap profile.ApplicantProfile) error {
	return p.publish(ctx, routingKeyProfileCreated, ProfileEvent{UserID: ap.UserID, Timestamp: time.Now()})
}

func (p *RabbitMQEventPublisher) PublishProfileUpdated(ctx context.Context, ap profile.ApplicantProfile) error {
	return p.publish(ctx, routingKeyProfileUpdated, ProfileEvent{UserID: ap.UserID, Timestamp: time.Now()})
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

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

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}
