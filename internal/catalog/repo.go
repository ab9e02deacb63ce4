package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *postgres.DB }

func NewRepo(db *postgres.DB) *Repo { return &Repo{DB: db} }

const productColumns = `SELECT id, user_id, name, description, price::text, currency, stock, listed_at FROM products`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &price, &p.Currency, &p.Stock, &p.ListedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("product %d price %q: %w", p.ID, price, err)
	}
	return p, nil
}

func (r *Repo) Insert(ctx context.Context, ownerID int64, np NewProduct) (Product, error) {
	row := r.DB.Executor(ctx).QueryRow(ctx, `
		INSERT INTO products(user_id, name, description, price, currency, stock)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING id, user_id, name, description, price::text, currency, stock, listed_at`,
		ownerID, np.Name, np.Description, np.Price.String(), np.Currency, np.Stock)
	return scanProduct(row)
}

func (r *Repo) ByID(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.DB.Executor(ctx).QueryRow(ctx, productColumns+` WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Product, error) {
	order, err := orderBy(q)
	if err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.OwnerID > 0 {
		args = append(args, q.OwnerID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	sql := productColumns
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY " + order

	rows, err := r.DB.Executor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id int64, c Changes) (Product, error) {
	var price *string
	if c.Price != nil {
		v := c.Price.String()
		price = &v
	}
	row := r.DB.Executor(ctx).QueryRow(ctx, `
		UPDATE products SET
			name        = COALESCE($2::text, name),
			description = COALESCE($3::text, description),
			price       = COALESCE($4::numeric, price),
			currency    = COALESCE($5::text, currency),
			stock       = COALESCE($6::int, stock)
		WHERE id=$1
		RETURNING id, user_id, name, description, price::text, currency, stock, listed_at`,
		id, c.Name, c.Description, price, c.Currency, c.Stock)
	out, err := scanProduct(row)
	if _, ok := postgres.CheckViolation(err); ok {
		return Product{}, ErrInvalidStock
	}
	return out, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if postgres.ForeignKeyViolation(err) {
		return ErrHasOrders
	}
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
