package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type memTxKey struct{}

// memStore is an in-memory Store. Transactions are serialized and roll back
// to a snapshot on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[int64]Buyer
	products map[int64]ProductStock
	carts    map[int64][]CartLine
	orders   map[int64]Order
	lines    map[int64][]Line
	nextID   int64

	failSetOrderStatus error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]Buyer{},
		products: map[int64]ProductStock{},
		carts:    map[int64][]CartLine{},
		orders:   map[int64]Order{},
		lines:    map[int64][]Line{},
	}
}

func (m *memStore) addUser(id int64, name, address string) {
	m.users[id] = Buyer{ID: id, Name: name, Address: address}
}

func (m *memStore) addProduct(id, vendorID int64, stock int) {
	m.products[id] = ProductStock{ID: id, VendorID: vendorID, Stock: stock}
}

func (m *memStore) addToCart(userID, productID int64, qty int) {
	m.carts[userID] = append(m.carts[userID], CartLine{ProductID: productID, Quantity: qty})
}

func (m *memStore) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memSnapshot struct {
	products map[int64]ProductStock
	carts    map[int64][]CartLine
	orders   map[int64]Order
	lines    map[int64][]Line
	nextID   int64
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		products: map[int64]ProductStock{},
		carts:    map[int64][]CartLine{},
		orders:   map[int64]Order{},
		lines:    map[int64][]Line{},
		nextID:   m.nextID,
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.carts {
		s.carts[k] = append([]CartLine(nil), v...)
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.lines {
		s.lines[k] = append([]Line(nil), v...)
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.products, m.carts, m.orders, m.lines, m.nextID = s.products, s.carts, s.orders, s.lines, s.nextID
}

func (m *memStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := m.snapshot()
	m.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.mu.Lock()
			m.restore(snap)
			m.mu.Unlock()
			panic(r)
		}
		if err != nil {
			m.mu.Lock()
			m.restore(snap)
			m.mu.Unlock()
		}
	}()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

func (m *memStore) Buyer(_ context.Context, userID int64) (Buyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.users[userID]
	if !ok {
		return Buyer{}, ErrUserNotFound
	}
	return b, nil
}

func (m *memStore) CartLines(_ context.Context, userID int64) ([]CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CartLine(nil), m.carts[userID]...), nil
}

func (m *memStore) ClearCart(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *memStore) LockProduct(_ context.Context, productID int64) (ProductStock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return ProductStock{}, ErrProductNotFound
	}
	return p, nil
}

func (m *memStore) AdjustStock(_ context.Context, productID int64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	m.products[productID] = p
	return nil
}

func (m *memStore) InsertOrder(_ context.Context, buyerID int64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o := Order{ID: m.nextID, BuyerID: buyerID, Status: StatusPending, CreatedAt: time.Now()}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) InsertLine(_ context.Context, l Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.lines[l.OrderID] {
		if x.ProductID == l.ProductID {
			return errors.New("duplicate order line")
		}
	}
	m.lines[l.OrderID] = append(m.lines[l.OrderID], l)
	return nil
}

func (m *memStore) LockOrder(ctx context.Context, orderID int64) (Order, error) {
	return m.Order(ctx, orderID)
}

func (m *memStore) Order(_ context.Context, orderID int64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) Lines(_ context.Context, orderID int64) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, 0, len(m.lines[orderID]))
	for _, l := range m.lines[orderID] {
		l.VendorID = m.products[l.ProductID].VendorID
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *memStore) OrdersByBuyer(_ context.Context, buyerID int64) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetOrderStatus(_ context.Context, orderID int64, s Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetOrderStatus != nil {
		return m.failSetOrderStatus
	}
	o, ok := m.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = s
	m.orders[orderID] = o
	return nil
}

func (m *memStore) SetLineStatus(_ context.Context, orderID, productID int64, s Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.lines[orderID] {
		if l.ProductID == productID {
			m.lines[orderID][i].Status = s
			return nil
		}
	}
	return ErrProductNotInOrder
}

type recordedEvent struct {
	eventType string
	orderID   int64
	payload   any
}

type memEvents struct {
	mu  sync.Mutex
	got []recordedEvent
}

func (p *memEvents) Publish(_ context.Context, eventType string, orderID int64, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, recordedEvent{eventType, orderID, payload})
}

func (p *memEvents) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.got))
	for _, e := range p.got {
		out = append(out, e.eventType)
	}
	return out
}

type memRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (r *memRecorder) RecordOrderOp(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	res := "ok"
	if err != nil {
		res = "error"
	}
	r.ops[op+":"+res]++
}
