package orders_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/ariefcatur/go-marketplace/internal/postgres/pgtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type seed struct {
	t  *testing.T
	db *postgres.DB
}

func (s seed) user(name string, address *string) int64 {
	s.t.Helper()
	var id int64
	err := s.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users(username, email, password, name, address)
		VALUES ($1, $1 || '@example.com', 'x', $1, $2) RETURNING id`, name, address).Scan(&id)
	require.NoError(s.t, err)
	return id
}

func (s seed) product(vendorID int64, name string, stock int) int64 {
	s.t.Helper()
	var id int64
	err := s.db.Pool.QueryRow(context.Background(), `
		INSERT INTO products(user_id, name, price, stock) VALUES ($1, $2, 9.99, $3) RETURNING id`,
		vendorID, name, stock).Scan(&id)
	require.NoError(s.t, err)
	return id
}

func (s seed) cart(userID, productID int64, qty int) {
	s.t.Helper()
	_, err := s.db.Pool.Exec(context.Background(),
		`INSERT INTO cart_lines(user_id, product_id, quantity) VALUES ($1, $2, $3)`, userID, productID, qty)
	require.NoError(s.t, err)
}

func (s seed) stock(productID int64) int {
	s.t.Helper()
	var n int
	require.NoError(s.t, s.db.Pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id=$1`, productID).Scan(&n))
	return n
}

func (s seed) cartSize(userID int64) int {
	s.t.Helper()
	var n int
	require.NoError(s.t, s.db.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM cart_lines WHERE user_id=$1`, userID).Scan(&n))
	return n
}

func strptr(s string) *string { return &s }

func setup(t *testing.T) (*orders.Engine, seed) {
	db := pgtest.Open(t)
	return orders.NewEngine(orders.NewRepo(db), nil, nil, zerolog.Nop()), seed{t: t, db: db}
}

func TestRepo_CheckoutWithoutAddress(t *testing.T) {
	engine, s := setup(t)
	buyer := s.user("ada", nil)
	vendor := s.user("vera", strptr("v street"))
	p := s.product(vendor, "lamp", 4)
	s.cart(buyer, p, 1)

	_, err := engine.CreateFromCart(context.Background(), buyer)
	require.ErrorIs(t, err, orders.ErrAddressNotSet)
	assert.Equal(t, 4, s.stock(p))
	assert.Equal(t, 1, s.cartSize(buyer))
}

func TestRepo_CheckoutShortOfStock(t *testing.T) {
	engine, s := setup(t)
	buyer := s.user("ada", strptr("1 road"))
	vendor := s.user("vera", strptr("v street"))
	p := s.product(vendor, "lamp", 1)
	s.cart(buyer, p, 2)

	_, err := engine.CreateFromCart(context.Background(), buyer)
	require.ErrorIs(t, err, orders.ErrInsufficientStock)
	assert.Equal(t, 1, s.stock(p))
	assert.Equal(t, 1, s.cartSize(buyer))
}

func TestRepo_TwoVendorShipAndCancel(t *testing.T) {
	engine, s := setup(t)
	ctx := context.Background()
	buyer := s.user("ada", strptr("1 road"))
	va := s.user("vera", strptr("v street"))
	vb := s.user("wes", strptr("w street"))
	pa := s.product(va, "lamp", 5)
	pb := s.product(vb, "rug", 5)

	// two vendors ship in turn
	s.cart(buyer, pa, 2)
	s.cart(buyer, pb, 1)
	d, err := engine.CreateFromCart(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, 0, s.cartSize(buyer))
	assert.Equal(t, 3, s.stock(pa))
	assert.Equal(t, 4, s.stock(pb))

	v, err := engine.ShipOrderProduct(ctx, va, d.ID, pa)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, v.OrderStatus)
	assert.Equal(t, "1 road", v.Address)

	// cancellation refused once fulfilment started
	_, err = engine.CancelOrder(ctx, buyer, d.ID)
	require.ErrorIs(t, err, orders.ErrOrderBeingProcessed)

	v, err = engine.ShipOrderProduct(ctx, vb, d.ID, pb)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusShipped, v.OrderStatus)

	got, err := engine.GetOrder(ctx, buyer, d.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusShipped, got.Status)

	// cancel a fresh pending order
	s.cart(buyer, pa, 1)
	s.cart(buyer, pb, 2)
	d2, err := engine.CreateFromCart(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, 2, s.stock(pa))
	assert.Equal(t, 2, s.stock(pb))

	c, err := engine.CancelOrder(ctx, buyer, d2.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, c.Status)
	assert.Equal(t, 3, s.stock(pa))
	assert.Equal(t, 4, s.stock(pb))

	_, err = engine.CancelOrder(ctx, buyer, d2.ID)
	require.ErrorIs(t, err, orders.ErrOrderAlreadyCancelled)
	assert.Equal(t, 3, s.stock(pa))

	list, err := engine.ListOrders(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepo_LastUnitConcurrently(t *testing.T) {
	engine, s := setup(t)
	vendor := s.user("vera", strptr("v street"))
	p := s.product(vendor, "lamp", 1)

	const buyers = 10
	ids := make([]int64, buyers)
	for i := range ids {
		ids[i] = s.user("buyer"+string(rune('a'+i)), strptr("addr"))
	}

	var success, short atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := engine.CreateFromProduct(context.Background(), id, p, 1)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, orders.ErrInsufficientStock):
				short.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(buyers-1), short.Load())
	assert.Equal(t, 0, s.stock(p))
}

func TestRepo_DeletedBuyerKeepsOrder(t *testing.T) {
	engine, s := setup(t)
	ctx := context.Background()
	buyer := s.user("ada", strptr("1 road"))
	vendor := s.user("vera", strptr("v street"))
	p := s.product(vendor, "lamp", 2)

	d, err := engine.CreateFromProduct(ctx, buyer, p, 1)
	require.NoError(t, err)
	_, err = s.db.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, buyer)
	require.NoError(t, err)

	_, err = engine.ShipOrder(ctx, vendor, d.ID)
	assert.ErrorIs(t, err, orders.ErrUserNotFound)
}

func TestRepo_DoubleCheckoutOfOneCart(t *testing.T) {
	engine, s := setup(t)
	buyer := s.user("ada", strptr("1 road"))
	vendor := s.user("vera", strptr("v street"))
	pa := s.product(vendor, "lamp", 10)
	pb := s.product(vendor, "rug", 10)
	s.cart(buyer, pa, 2)
	s.cart(buyer, pb, 3)

	var placed, empty atomic.Int32
	var g errgroup.Group
	for range 4 {
		g.Go(func() error {
			_, err := engine.CreateFromCart(context.Background(), buyer)
			switch {
			case err == nil:
				placed.Add(1)
			case errors.Is(err, orders.ErrCartEmpty):
				empty.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), placed.Load())
	assert.Equal(t, int32(3), empty.Load())
	assert.Equal(t, 8, s.stock(pa))
	assert.Equal(t, 7, s.stock(pb))

	list, err := engine.ListOrders(context.Background(), buyer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
