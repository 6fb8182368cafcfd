package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types published on the storefront topic.
const (
	EventOrderStatusChanged     = "order.status_changed"
	EventNewsletterSubscribed   = "newsletter.subscribed"
	EventNewsletterUnsubscribed = "newsletter.unsubscribed"
)

// Envelope wraps every domain event on the bus.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderStatusChanged is emitted after a fulfillment update.
type OrderStatusChanged struct {
	OrderID        string  `json:"order_id"`
	OrderNumber    string  `json:"order_number"`
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

// NewsletterChanged is emitted when a subscriber opts in or out.
type NewsletterChanged struct {
	Email   string `json:"email"`
	Outcome string `json:"outcome"`
}

// PublishEvent marshals payload into an Envelope and publishes it under key.
func PublishEvent(ctx context.Context, client Client, key, eventType string, payload any) error {
	if client == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	value, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: body})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return client.Publish(ctx, []byte(key), value, map[string]string{
		HeaderEventType: eventType,
		"content-type":  "application/json",
	})
}

// DecodeEnvelope parses a bus message into its envelope. The event-type
// header wins over the type recorded in the body.
func DecodeEnvelope(msg Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return Envelope{}, err
	}
	if t := msg.Headers[HeaderEventType]; t != "" {
		env.Type = t
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("event without type")
	}
	return env, nil
}
