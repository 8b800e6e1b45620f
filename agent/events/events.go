// Package events publishes booking lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	qstashx "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/qstash"
)

const (
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
)

type BookingEvent struct {
	Type           string    `json:"type"`
	ReservationID  int64     `json:"reservation_id"`
	CustomerID     int64     `json:"customer_id"`
	RestaurantID   int64     `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Date           string    `json:"reservation_date"`
	Time           string    `json:"reservation_time"`
	PartySize      int       `json:"party_size"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// DeduplicationID is stable per reservation and event type so a retried
// publish is delivered once.
func (e BookingEvent) DeduplicationID() string {
	return fmt.Sprintf("%s-%d", strings.ReplaceAll(e.Type, ".", "-"), e.ReservationID)
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

type messageSender interface {
	Publish(ctx context.Context, destination string, body []byte, opts qstashx.PublishOptions) (string, error)
}

// QStashPublisher forwards booking events to a QStash destination.
type QStashPublisher struct {
	client      messageSender
	destination string
}

var _ Publisher = (*QStashPublisher)(nil)

func NewQStashPublisher(client *qstashx.Client, destination string) (*QStashPublisher, error) {
	if client == nil {
		return nil, errors.New("events: qstash client is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("events: destination is required")
	}
	return &QStashPublisher{client: client, destination: destination}, nil
}

func (p *QStashPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}

	_, err = p.client.Publish(ctx, p.destination, body, qstashx.PublishOptions{
		DeduplicationID: event.DeduplicationID(),
		Headers:         map[string]string{"X-Booking-Event": event.Type},
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}
