package orders

import "context"

// Store is the persistence the engine runs on. Every method must join the
// transaction carried by ctx when called inside RunAtomic.
type Store interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error

	Buyer(ctx context.Context, userID int64) (Buyer, error)
	CartLines(ctx context.Context, userID int64) ([]CartLine, error)
	ClearCart(ctx context.Context, userID int64) error

	// LockProduct reads the product row FOR UPDATE.
	LockProduct(ctx context.Context, productID int64) (ProductStock, error)
	AdjustStock(ctx context.Context, productID int64, delta int) error

	InsertOrder(ctx context.Context, buyerID int64) (Order, error)
	InsertLine(ctx context.Context, l Line) error

	// LockOrder reads the order header FOR UPDATE.
	LockOrder(ctx context.Context, orderID int64) (Order, error)
	Order(ctx context.Context, orderID int64) (Order, error)
	Lines(ctx context.Context, orderID int64) ([]Line, error)
	OrdersByBuyer(ctx context.Context, buyerID int64) ([]Order, error)

	SetOrderStatus(ctx context.Context, orderID int64, s Status) error
	SetLineStatus(ctx context.Context, orderID, productID int64, s Status) error
}

// EventPublisher receives lifecycle events after their transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, orderID int64, payload any)
}

// Recorder counts engine operations by outcome.
type Recorder interface {
	RecordOrderOp(op string, err error)
}
