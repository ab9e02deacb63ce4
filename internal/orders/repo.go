package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Repo is the Postgres Store.
type Repo struct{ DB *postgres.DB }

func NewRepo(db *postgres.DB) *Repo { return &Repo{DB: db} }

func (r *Repo) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.DB.RunAtomic(ctx, fn)
}

func (r *Repo) Buyer(ctx context.Context, userID int64) (Buyer, error) {
	var b Buyer
	err := r.DB.Executor(ctx).QueryRow(ctx,
		`SELECT id, name, COALESCE(address, '') FROM users WHERE id=$1`, userID,
	).Scan(&b.ID, &b.Name, &b.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Buyer{}, ErrUserNotFound
	}
	if err != nil {
		return Buyer{}, fmt.Errorf("get buyer %d: %w", userID, err)
	}
	return b, nil
}

// CartLines reads the cart under row locks. A concurrent checkout of the
// same cart waits here and then sees the rows already deleted.
func (r *Repo) CartLines(ctx context.Context, userID int64) ([]CartLine, error) {
	rows, err := r.DB.Executor(ctx).Query(ctx,
		`SELECT product_id, quantity FROM cart_lines WHERE user_id=$1 ORDER BY id FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	defer rows.Close()

	var out []CartLine
	for rows.Next() {
		var c CartLine
		if err := rows.Scan(&c.ProductID, &c.Quantity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.DB.Executor(ctx).Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *Repo) LockProduct(ctx context.Context, productID int64) (ProductStock, error) {
	var p ProductStock
	err := r.DB.Executor(ctx).QueryRow(ctx,
		`SELECT id, user_id, stock FROM products WHERE id=$1 FOR UPDATE`, productID,
	).Scan(&p.ID, &p.VendorID, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductStock{}, ErrProductNotFound
	}
	if err != nil {
		return ProductStock{}, fmt.Errorf("lock product %d: %w", productID, err)
	}
	return p, nil
}

func (r *Repo) AdjustStock(ctx context.Context, productID int64, delta int) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id=$1`, productID, delta)
	if _, ok := postgres.CheckViolation(err); ok {
		return ErrInsufficientStock
	}
	if err != nil {
		return fmt.Errorf("adjust stock %d: %w", productID, err)
	}
	if ct.RowsAffected() != 1 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) InsertOrder(ctx context.Context, buyerID int64) (Order, error) {
	row := r.DB.Executor(ctx).QueryRow(ctx, `
		INSERT INTO orders(user_id, status) VALUES ($1, $2)
		RETURNING id, user_id, status, created_at`, buyerID, string(StatusPending))
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *Repo) InsertLine(ctx context.Context, l Line) error {
	_, err := r.DB.Executor(ctx).Exec(ctx, `
		INSERT INTO order_lines(order_id, product_id, quantity, status)
		VALUES ($1, $2, $3, $4)`, l.OrderID, l.ProductID, l.Quantity, string(l.Status))
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

const orderColumns = `SELECT id, user_id, status, created_at FROM orders`

func (r *Repo) LockOrder(ctx context.Context, orderID int64) (Order, error) {
	return r.getOrder(ctx, orderColumns+` WHERE id=$1 FOR UPDATE`, orderID)
}

func (r *Repo) Order(ctx context.Context, orderID int64) (Order, error) {
	return r.getOrder(ctx, orderColumns+` WHERE id=$1`, orderID)
}

func (r *Repo) getOrder(ctx context.Context, q string, orderID int64) (Order, error) {
	o, err := scanOrder(r.DB.Executor(ctx).QueryRow(ctx, q, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return o, nil
}

func (r *Repo) OrdersByBuyer(ctx context.Context, buyerID int64) ([]Order, error) {
	rows, err := r.DB.Executor(ctx).Query(ctx, orderColumns+` WHERE user_id=$1 ORDER BY id`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Lines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.DB.Executor(ctx).Query(ctx, `
		SELECT ol.order_id, ol.product_id, p.user_id, ol.quantity, ol.status
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id=$1
		ORDER BY ol.product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("read order lines: %w", err)
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var (
			l      Line
			status string
		)
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.VendorID, &l.Quantity, &status); err != nil {
			return nil, err
		}
		if l.Status, err = ParseStatus(status); err != nil {
			return nil, fmt.Errorf("order %d line %d: unknown status %q", l.OrderID, l.ProductID, status)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) SetOrderStatus(ctx context.Context, orderID int64, s Status) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, string(s))
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repo) SetLineStatus(ctx context.Context, orderID, productID int64, s Status) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx,
		`UPDATE order_lines SET status=$3 WHERE order_id=$1 AND product_id=$2`, orderID, productID, string(s))
	if err != nil {
		return fmt.Errorf("set line status: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrProductNotInOrder
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		buyer  *int64
		status string
	)
	if err := row.Scan(&o.ID, &buyer, &status, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	if buyer != nil {
		o.BuyerID = *buyer
	}
	st, err := ParseStatus(status)
	if err != nil {
		return Order{}, fmt.Errorf("order %d: unknown status %q", o.ID, status)
	}
	o.Status = st
	return o, nil
}
