package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// OrderQueue is the durable queue carrying order lifecycle events.
const OrderQueue = "hetave_order_events"

// Event types published on OrderQueue.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

// OrderEvent is the JSON body of every message on OrderQueue.
type OrderEvent struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	Email        string    `json:"email"`
	CustomerName string    `json:"customerName,omitempty"`
	Status       string    `json:"status"`
	TotalAmount  float64   `json:"totalAmount"`
	ItemCount    int       `json:"itemCount"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Encode marshals e for publishing.
func (e OrderEvent) Encode() ([]byte, error) {
	if e.Type == "" {
		return nil, fmt.Errorf("order event has no type")
	}
	return json.Marshal(e)
}

// DecodeOrderEvent parses a message body produced by Encode.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to decode order event: %w", err)
	}
	if e.Type == "" || e.OrderID == "" {
		return OrderEvent{}, fmt.Errorf("order event is missing type or orderId")
	}
	return e, nil
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares OrderQueue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareOrderQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected and %s declared.", OrderQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareOrderQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		OrderQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishOrderEvent publishes event to OrderQueue as a persistent JSON message.
func (c *Client) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := event.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",         // default exchange
		OrderQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	log.Printf(" [x] Sent %s for order %s", event.Type, event.OrderNumber)
	return nil
}

// ConsumeOrderEvents registers handler on OrderQueue and processes deliveries
// in a goroutine until ctx is done or the channel closes. Messages that fail
// to decode are dropped; handler errors requeue the message once.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler func(context.Context, OrderEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for order events on %s", OrderQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, OrderEvent) error) {
	event, err := DecodeOrderEvent(msg.Body)
	if err != nil {
		log.Printf("Dropping message %d: %v", msg.DeliveryTag, err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		log.Printf("Error processing %s for order %s: %v", event.Type, event.OrderNumber, err)
		// Redelivered messages are not requeued a second time.
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
	}
}
