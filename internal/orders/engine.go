package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/rs/zerolog"
)

// Engine owns every order mutation. Callers pass the acting user explicitly;
// the engine never reads identity from the context.
type Engine struct {
	Store   Store
	Events  EventPublisher // optional
	Metrics Recorder       // optional
	Log     zerolog.Logger
}

func NewEngine(store Store, events EventPublisher, metrics Recorder, log zerolog.Logger) *Engine {
	return &Engine{Store: store, Events: events, Metrics: metrics, Log: log}
}

type pendingEvent struct {
	eventType string
	orderID   int64
	payload   any
}

// CreateFromCart turns the buyer's whole cart into one pending order and
// clears the cart. Nothing is written unless every line has stock.
func (e *Engine) CreateFromCart(ctx context.Context, buyerID int64) (Detail, error) {
	var (
		out Detail
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := e.buyerWithAddress(ctx, buyerID); err != nil {
			return err
		}
		cart, err := e.Store.CartLines(ctx, buyerID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrCartEmpty
		}
		if out, err = e.place(ctx, buyerID, cart); err != nil {
			return err
		}
		if err := e.Store.ClearCart(ctx, buyerID); err != nil {
			return err
		}
		evs = append(evs, createdEvent(out))
		return nil
	})
	if err := e.finish(ctx, "create_from_cart", err, evs); err != nil {
		return Detail{}, err
	}
	return out, nil
}

// CreateFromProduct buys a single product without touching the cart.
func (e *Engine) CreateFromProduct(ctx context.Context, buyerID, productID int64, quantity int) (Detail, error) {
	if quantity <= 0 {
		return Detail{}, e.finish(ctx, "create_from_product", ErrInvalidQuantity, nil)
	}
	var (
		out Detail
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := e.buyerWithAddress(ctx, buyerID); err != nil {
			return err
		}
		var err error
		out, err = e.place(ctx, buyerID, []CartLine{{ProductID: productID, Quantity: quantity}})
		if err != nil {
			return err
		}
		evs = append(evs, createdEvent(out))
		return nil
	})
	if err := e.finish(ctx, "create_from_product", err, evs); err != nil {
		return Detail{}, err
	}
	return out, nil
}

func (e *Engine) buyerWithAddress(ctx context.Context, buyerID int64) (Buyer, error) {
	b, err := e.Store.Buyer(ctx, buyerID)
	if err != nil {
		return Buyer{}, err
	}
	if b.Address == "" {
		return Buyer{}, ErrAddressNotSet
	}
	return b, nil
}

// place locks every product in ascending id order, checks stock, then writes
// the order, its lines and the decrements. Must run inside RunAtomic.
func (e *Engine) place(ctx context.Context, buyerID int64, cart []CartLine) (Detail, error) {
	ids := make([]int64, 0, len(cart))
	want := make(map[int64]int, len(cart))
	for _, c := range cart {
		if c.Quantity <= 0 {
			return Detail{}, ErrInvalidQuantity
		}
		if _, seen := want[c.ProductID]; !seen {
			ids = append(ids, c.ProductID)
		}
		want[c.ProductID] += c.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[int64]ProductStock, len(ids))
	for _, id := range ids {
		p, err := e.Store.LockProduct(ctx, id)
		if err != nil {
			return Detail{}, err
		}
		locked[id] = p
	}
	for _, c := range cart {
		if locked[c.ProductID].Stock-want[c.ProductID] < 0 {
			return Detail{}, ErrInsufficientStock
		}
	}

	o, err := e.Store.InsertOrder(ctx, buyerID)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Order: o, Products: make([]Line, 0, len(cart))}
	for _, c := range cart {
		l := Line{
			OrderID:   o.ID,
			ProductID: c.ProductID,
			VendorID:  locked[c.ProductID].VendorID,
			Quantity:  c.Quantity,
			Status:    StatusPending,
		}
		if err := e.Store.AdjustStock(ctx, l.ProductID, -l.Quantity); err != nil {
			return Detail{}, err
		}
		if err := e.Store.InsertLine(ctx, l); err != nil {
			return Detail{}, err
		}
		d.Products = append(d.Products, l)
	}
	return d, nil
}

// GetOrder returns the order with its lines. Orders of other buyers are
// reported as missing.
func (e *Engine) GetOrder(ctx context.Context, buyerID, orderID int64) (Detail, error) {
	o, err := e.Store.Order(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	if o.BuyerID != buyerID {
		return Detail{}, ErrOrderNotFound
	}
	lines, err := e.Store.Lines(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: o, Products: lines}, nil
}

func (e *Engine) ListOrders(ctx context.Context, buyerID int64) ([]Order, error) {
	return e.Store.OrdersByBuyer(ctx, buyerID)
}

// CancelOrder cancels a pending order whose lines have not been acted on and
// restores stock for every line not already cancelled.
func (e *Engine) CancelOrder(ctx context.Context, buyerID, orderID int64) (Detail, error) {
	var (
		out Detail
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := e.lockOwnOrder(ctx, buyerID, orderID)
		if err != nil {
			return err
		}
		switch o.Status {
		case StatusCancelled:
			return ErrOrderAlreadyCancelled
		case StatusPending:
		default:
			return ErrOrderBeingProcessed
		}
		lines, err := e.Store.Lines(ctx, orderID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if l.Status == StatusShipped || l.Status == StatusDisputed {
				return ErrOrderBeingProcessed
			}
		}

		var moved []Line
		for i, l := range lines {
			if l.Status == StatusCancelled {
				continue
			}
			if err := e.cancelLine(ctx, l); err != nil {
				return err
			}
			lines[i].Status = StatusCancelled
			moved = append(moved, lines[i])
		}
		if err := e.Store.SetOrderStatus(ctx, orderID, StatusCancelled); err != nil {
			return err
		}
		o.Status = StatusCancelled
		out = Detail{Order: o, Products: lines}
		evs = append(evs, pendingEvent{EventOrderCancelled, orderID, OrderCancelledPayload{
			OrderID: orderID, BuyerID: o.BuyerID, Items: lineItems(moved),
		}})
		return nil
	})
	if err := e.finish(ctx, "cancel_order", err, evs); err != nil {
		return Detail{}, err
	}
	return out, nil
}

// CancelOrderProduct cancels one pending line and restores its stock. The
// header status is left alone.
func (e *Engine) CancelOrderProduct(ctx context.Context, buyerID, orderID, productID int64) (Line, error) {
	var (
		out Line
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := e.lockOwnOrder(ctx, buyerID, orderID)
		if err != nil {
			return err
		}
		lines, err := e.Store.Lines(ctx, orderID)
		if err != nil {
			return err
		}
		l, ok := findLine(lines, productID)
		if !ok {
			return ErrProductNotInOrder
		}
		switch l.Status {
		case StatusCancelled:
			return ErrProductAlreadyCancelled
		case StatusPending:
		default:
			return ErrProductBeingProcessed
		}
		if err := e.cancelLine(ctx, l); err != nil {
			return err
		}
		out = l
		out.Status = StatusCancelled
		evs = append(evs, lineEvent(o, l, StatusCancelled))
		return nil
	})
	if err := e.finish(ctx, "cancel_order_product", err, evs); err != nil {
		return Line{}, err
	}
	return out, nil
}

func (e *Engine) cancelLine(ctx context.Context, l Line) error {
	if err := e.Store.SetLineStatus(ctx, l.OrderID, l.ProductID, StatusCancelled); err != nil {
		return err
	}
	return e.Store.AdjustStock(ctx, l.ProductID, l.Quantity)
}

func (e *Engine) lockOwnOrder(ctx context.Context, buyerID, orderID int64) (Order, error) {
	o, err := e.Store.LockOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.BuyerID != buyerID {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (e *Engine) ShipOrder(ctx context.Context, vendorID, orderID int64) (Detail, error) {
	return e.transitionOrder(ctx, "ship_order", vendorID, orderID, StatusShipped)
}

func (e *Engine) DisputeOrder(ctx context.Context, vendorID, orderID int64) (Detail, error) {
	return e.transitionOrder(ctx, "dispute_order", vendorID, orderID, StatusDisputed)
}

// transitionOrder moves every pending line of the order to target. The vendor
// must own every line that is not cancelled.
func (e *Engine) transitionOrder(ctx context.Context, op string, vendorID, orderID int64, target Status) (Detail, error) {
	var (
		out Detail
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := e.Store.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID == 0 {
			return ErrUserNotFound
		}
		if _, err := e.Store.Buyer(ctx, o.BuyerID); err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return cancelledOrderErr(target)
		}
		lines, err := e.Store.Lines(ctx, orderID)
		if err != nil {
			return err
		}
		if !ownsOrder(lines, vendorID) {
			return ErrNotAllProductsOwned
		}

		var changed []Line
		for i, l := range lines {
			if l.Status != StatusPending {
				continue
			}
			if err := e.Store.SetLineStatus(ctx, orderID, l.ProductID, target); err != nil {
				return err
			}
			lines[i].Status = target
			changed = append(changed, l)
		}
		if o.Status, err = e.rederive(ctx, o, lines, target); err != nil {
			return err
		}
		for _, l := range changed {
			evs = append(evs, lineEvent(o, l, target))
		}
		out = Detail{Order: o, Products: lines}
		return nil
	})
	if err := e.finish(ctx, op, err, evs); err != nil {
		return Detail{}, err
	}
	return out, nil
}

// ownsOrder reports whether vendorID owns every active line. With no active
// line left, the vendor must own every line instead.
func ownsOrder(lines []Line, vendorID int64) bool {
	active := 0
	for _, l := range lines {
		if l.Status == StatusCancelled {
			continue
		}
		active++
		if l.VendorID != vendorID {
			return false
		}
	}
	if active > 0 {
		return true
	}
	for _, l := range lines {
		if l.VendorID != vendorID {
			return false
		}
	}
	return len(lines) > 0
}

func (e *Engine) ShipOrderProduct(ctx context.Context, vendorID, orderID, productID int64) (LineView, error) {
	return e.transitionLine(ctx, "ship_order_product", vendorID, orderID, productID, StatusShipped)
}

func (e *Engine) DisputeOrderProduct(ctx context.Context, vendorID, orderID, productID int64) (LineView, error) {
	return e.transitionLine(ctx, "dispute_order_product", vendorID, orderID, productID, StatusDisputed)
}

func (e *Engine) transitionLine(ctx context.Context, op string, vendorID, orderID, productID int64, target Status) (LineView, error) {
	var (
		out LineView
		evs []pendingEvent
	)
	err := e.Store.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := e.Store.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		lines, err := e.Store.Lines(ctx, orderID)
		if err != nil {
			return err
		}
		idx := -1
		for i := range lines {
			if lines[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrProductNotInOrder
		}
		l := lines[idx]
		if l.VendorID != vendorID {
			return ErrProductNotOwned
		}
		switch {
		case l.Status == StatusCancelled:
			return cancelledLineErr(target)
		case l.Status == target:
			// already there
		case !CanTransition(l.Status, target):
			return ErrInvalidTransition
		default:
			if err := e.Store.SetLineStatus(ctx, orderID, productID, target); err != nil {
				return err
			}
			lines[idx].Status = target
			if o.Status, err = e.rederive(ctx, o, lines, target); err != nil {
				return err
			}
			evs = append(evs, lineEvent(o, l, target))
		}

		var buyer Buyer
		if o.BuyerID != 0 {
			if buyer, err = e.Store.Buyer(ctx, o.BuyerID); err != nil && !errors.Is(err, ErrUserNotFound) {
				return err
			}
		}
		out = LineView{
			OrderID:     o.ID,
			BuyerID:     o.BuyerID,
			BuyerName:   buyer.Name,
			Address:     buyer.Address,
			OrderStatus: o.Status,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Status:      lines[idx].Status,
		}
		return nil
	})
	if err := e.finish(ctx, op, err, evs); err != nil {
		return LineView{}, err
	}
	return out, nil
}

// rederive writes the header status computed from lines when it changed.
func (e *Engine) rederive(ctx context.Context, o Order, lines []Line, target Status) (Status, error) {
	next := deriveOrderStatus(o.Status, lines, target)
	if next == o.Status {
		return o.Status, nil
	}
	if err := e.Store.SetOrderStatus(ctx, o.ID, next); err != nil {
		return o.Status, err
	}
	return next, nil
}

func findLine(lines []Line, productID int64) (Line, bool) {
	for _, l := range lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

func createdEvent(d Detail) pendingEvent {
	return pendingEvent{EventOrderCreated, d.ID, OrderCreatedPayload{
		OrderID: d.ID, BuyerID: d.BuyerID, Items: lineItems(d.Products),
	}}
}

// lineEvent describes l moving to status to; o carries the header after the move.
func lineEvent(o Order, l Line, to Status) pendingEvent {
	return pendingEvent{EventLineStatusChanged, o.ID, LineStatusChangedPayload{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		ProductID:   l.ProductID,
		VendorID:    l.VendorID,
		Quantity:    l.Quantity,
		From:        l.Status,
		To:          to,
		OrderStatus: o.Status,
	}}
}

// finish records the outcome and, on success, publishes the events gathered
// inside the committed transaction. It returns err unchanged.
func (e *Engine) finish(ctx context.Context, op string, err error, evs []pendingEvent) error {
	if e.Metrics != nil {
		e.Metrics.RecordOrderOp(op, err)
	}
	if err != nil {
		lvl := e.Log.Warn()
		if apperr.KindOf(err) == apperr.KindInternal {
			lvl = e.Log.Error()
		}
		lvl.Err(err).Str("op", op).Msg("order operation rejected")
		return err
	}
	for _, ev := range evs {
		e.Log.Debug().Str("op", op).Str("event", ev.eventType).Int64("order_id", ev.orderID).Msg("order committed")
		if e.Events != nil {
			e.Events.Publish(ctx, ev.eventType, ev.orderID, ev.payload)
		}
	}
	return nil
}
