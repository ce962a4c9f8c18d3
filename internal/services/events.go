package services

import (
	"context"
	"log"

	"hetave/pkg/rabbitmq"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hetave/internal/services")

// EventPublisher publishes order lifecycle events. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error
}

func publishBestEffort(ctx context.Context, pub EventPublisher, event rabbitmq.OrderEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", event.Type, event.OrderNumber, err)
	}
}
