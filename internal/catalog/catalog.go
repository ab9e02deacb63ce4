// Package catalog manages product listings.
package catalog

import (
	"time"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "gbp"

type Product struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	ListedAt    time.Time       `json:"listed_at"`
}

type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
}

// Changes is a partial product update; nil fields are left alone.
type Changes struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency"`
	Stock       *int             `json:"stock"`
}

type ListQuery struct {
	Keyword string
	Column  string
	Sort    string
	OwnerID int64
}

var (
	ErrInvalidID     = apperr.New(apperr.KindValidation, "Invalid product id")
	ErrNotFound      = apperr.New(apperr.KindNotFound, "Product not found")
	ErrNotOwner      = apperr.New(apperr.KindOwnership, "User cannot alter this product")
	ErrHasOrders     = apperr.New(apperr.KindConflict, "Product has existing orders")
	ErrMissingName   = apperr.New(apperr.KindValidation, "Product name is required")
	ErrInvalidPrice  = apperr.New(apperr.KindValidation, "Invalid price")
	ErrInvalidStock  = apperr.New(apperr.KindValidation, "Invalid stock")
	ErrInvalidColumn = apperr.New(apperr.KindValidation, "Invalid sort column")
	ErrInvalidSort   = apperr.New(apperr.KindValidation, "Invalid sort direction")
	ErrNoChanges     = apperr.New(apperr.KindValidation, "No changes given")
)

// sortColumns whitelists the columns a listing may be ordered by. The values
// are spliced into SQL, so nothing outside this map may reach the query.
var sortColumns = map[string]string{
	"price":     "price",
	"name":      "name",
	"stock":     "stock",
	"listed_at": "listed_at",
}

// orderBy validates q and returns the ORDER BY clause body.
func orderBy(q ListQuery) (string, error) {
	col := q.Column
	if col == "" {
		col = "price"
	}
	c, ok := sortColumns[col]
	if !ok {
		return "", ErrInvalidColumn
	}
	dir := "ASC"
	switch q.Sort {
	case "", "asc", "ASC":
	case "desc", "DESC":
		dir = "DESC"
	default:
		return "", ErrInvalidSort
	}
	return c + " " + dir + ", id ASC", nil
}
