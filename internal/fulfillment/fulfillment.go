// Package fulfillment keeps a per-vendor projection of order lines still
// waiting to be shipped, fed by the order.events topic.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	kafkax "github.com/ariefcatur/go-marketplace/internal/kafka"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Entry identifies one pending order line.
type Entry struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
}

func (e Entry) member() string { return fmt.Sprintf("%d:%d", e.OrderID, e.ProductID) }

func parseMember(s string) (Entry, error) {
	o, p, ok := strings.Cut(s, ":")
	if !ok {
		return Entry{}, fmt.Errorf("malformed member %q", s)
	}
	oid, err := strconv.ParseInt(o, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed member %q: %w", s, err)
	}
	pid, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed member %q: %w", s, err)
	}
	return Entry{OrderID: oid, ProductID: pid}, nil
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].OrderID != es[j].OrderID {
			return es[i].OrderID < es[j].OrderID
		}
		return es[i].ProductID < es[j].ProductID
	})
}

type Projection interface {
	Add(ctx context.Context, vendorID int64, entries ...Entry) error
	Remove(ctx context.Context, vendorID int64, entries ...Entry) error
	Pending(ctx context.Context, vendorID int64) ([]Entry, error)
}

// Deduper remembers processed event ids.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type Recorder interface {
	RecordEvent(eventType string, err error)
}

type Service struct {
	Projection Projection
	Dedup      Deduper
	Metrics    Recorder
	Log        zerolog.Logger
}

func NewService(p Projection, d Deduper, metrics Recorder, log zerolog.Logger) *Service {
	return &Service{Projection: p, Dedup: d, Metrics: metrics, Log: log}
}

func (s *Service) Pending(ctx context.Context, vendorID int64) ([]Entry, error) {
	return s.Projection.Pending(ctx, vendorID)
}

// HandleMessage is the consumer handler. A returned error makes the consumer
// retry the same message; undecodable messages are dropped here instead.
func (s *Service) HandleMessage(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message, skip it
		s.Log.Error().Err(err).Int64("offset", m.Offset).Msg("undecodable envelope dropped")
		return nil
	}
	err := s.Handle(ctx, env)
	if s.Metrics != nil {
		s.Metrics.RecordEvent(env.EventType, err)
	}
	return err
}

func (s *Service) Handle(ctx context.Context, env orders.Envelope) error {
	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup lookup: %w", err)
		}
		if seen {
			s.Log.Debug().Str("event_id", env.EventID).Msg("duplicate event skipped")
			return nil
		}
	}

	var err error
	switch env.EventType {
	case orders.EventOrderCreated:
		err = s.created(ctx, env.Payload)
	case orders.EventOrderCancelled:
		err = s.cancelled(ctx, env.Payload)
	case orders.EventLineStatusChanged:
		err = s.lineChanged(ctx, env.Payload)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", env.EventType, env.EventID, err)
	}

	if s.Dedup != nil {
		if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
			// projection updates are idempotent, a replay is harmless
			s.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("dedup mark failed")
		}
	}
	s.Log.Debug().
		Str("event_id", env.EventID).
		Str("event_type", env.EventType).
		Str("trace_id", env.TraceID).
		Msg("event applied")
	return nil
}

func byVendor(orderID int64, items []orders.LineItem, keep func(orders.LineItem) bool) map[int64][]Entry {
	out := map[int64][]Entry{}
	for _, it := range items {
		if keep(it) {
			out[it.VendorID] = append(out[it.VendorID], Entry{OrderID: orderID, ProductID: it.ProductID})
		}
	}
	return out
}

func (s *Service) created(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](raw)
	if err != nil {
		return err
	}
	pending := byVendor(p.OrderID, p.Items, func(it orders.LineItem) bool { return it.Status == orders.StatusPending })
	for vendor, es := range pending {
		if err := s.Projection.Add(ctx, vendor, es...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) cancelled(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](raw)
	if err != nil {
		return err
	}
	all := byVendor(p.OrderID, p.Items, func(orders.LineItem) bool { return true })
	for vendor, es := range all {
		if err := s.Projection.Remove(ctx, vendor, es...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) lineChanged(ctx context.Context, raw json.RawMessage) error {
	p, err := kafkax.UnwrapPayload[orders.LineStatusChangedPayload](raw)
	if err != nil {
		return err
	}
	if p.To == orders.StatusPending {
		return nil
	}
	return s.Projection.Remove(ctx, p.VendorID, Entry{OrderID: p.OrderID, ProductID: p.ProductID})
}
