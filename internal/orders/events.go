package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderCancelled    = "OrderCancelled"
	EventLineStatusChanged = "OrderLineStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type LineItem struct {
	ProductID int64  `json:"product_id"`
	VendorID  int64  `json:"vendor_id"`
	Quantity  int    `json:"quantity"`
	Status    Status `json:"status"`
}

type OrderCreatedPayload struct {
	OrderID int64      `json:"order_id"`
	BuyerID int64      `json:"user_id"`
	Items   []LineItem `json:"items"`
}

// OrderCancelledPayload lists only the lines the cancellation moved.
type OrderCancelledPayload struct {
	OrderID int64      `json:"order_id"`
	BuyerID int64      `json:"user_id"`
	Items   []LineItem `json:"items"`
}

type LineStatusChangedPayload struct {
	OrderID     int64  `json:"order_id"`
	BuyerID     int64  `json:"user_id"`
	ProductID   int64  `json:"product_id"`
	VendorID    int64  `json:"vendor_id"`
	Quantity    int    `json:"quantity"`
	From        Status `json:"from"`
	To          Status `json:"to"`
	OrderStatus Status `json:"order_status"`
}

func lineItems(lines []Line) []LineItem {
	out := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineItem{ProductID: l.ProductID, VendorID: l.VendorID, Quantity: l.Quantity, Status: l.Status})
	}
	return out
}
