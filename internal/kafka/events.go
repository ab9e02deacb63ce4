package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// OrderEvents wraps engine events in the envelope and hands them to the
// producer, keyed by order id.
type OrderEvents struct {
	Producer    publisher
	ServiceName string
}

func NewOrderEvents(p *Producer, service string) *OrderEvents {
	return &OrderEvents{Producer: p, ServiceName: service}
}

func (e *OrderEvents) Publish(ctx context.Context, eventType string, orderID int64, payload any) {
	id := strconv.FormatInt(orderID, 10)
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: id,
		Payload:       MustMarshal(payload),
	}
	e.Producer.Publish(orders.PartitionKey(orderID), MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
