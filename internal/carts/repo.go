package carts

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *postgres.DB }

func NewRepo(db *postgres.DB) *Repo { return &Repo{DB: db} }

func (r *Repo) Items(ctx context.Context, userID int64) ([]Item, error) {
	rows, err := r.DB.Executor(ctx).Query(ctx, `
		SELECT c.product_id, p.name, p.price::text, p.currency, c.quantity
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id=$1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Name, &price, &it.Currency, &it.Quantity); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, userID, productID int64, qty int) error {
	_, err := r.DB.Executor(ctx).Exec(ctx,
		`INSERT INTO cart_lines(user_id, product_id, quantity) VALUES ($1, $2, $3)`, userID, productID, qty)
	if _, dup := postgres.UniqueViolation(err); dup {
		return ErrAlreadyInCart
	}
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

func (r *Repo) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx,
		`UPDATE cart_lines SET quantity=$3 WHERE user_id=$1 AND product_id=$2`, userID, productID, qty)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotInCart
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, productID int64) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx,
		`DELETE FROM cart_lines WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotInCart
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, userID int64) error {
	if _, err := r.DB.Executor(ctx).Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
