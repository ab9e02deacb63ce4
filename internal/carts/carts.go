// Package carts keeps each user's product -> quantity lines.
package carts

import (
	"context"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
}

var (
	ErrInvalidQuantity = apperr.New(apperr.KindValidation, "Invalid quantity")
	ErrNotEnoughStock  = apperr.New(apperr.KindInsufficientStock, "Not enough stock")
	ErrAlreadyInCart   = apperr.New(apperr.KindConflict, "Product already in cart")
	ErrNotInCart       = apperr.New(apperr.KindNotFound, "Product not in cart")
)

type Store interface {
	Items(ctx context.Context, userID int64) ([]Item, error)
	Insert(ctx context.Context, userID, productID int64, qty int) error
	SetQuantity(ctx context.Context, userID, productID int64, qty int) error
	Delete(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

// Products resolves products for stock checks.
type Products interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

type Service struct {
	Store    Store
	Products Products
}

func NewService(store Store, products Products) *Service {
	return &Service{Store: store, Products: products}
}

func (s *Service) Get(ctx context.Context, userID int64) ([]Item, error) {
	return s.Store.Items(ctx, userID)
}

// checkStock validates qty against the product's current stock. The order
// engine re-checks under lock at checkout.
func (s *Service) checkStock(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock-qty < 0 {
		return ErrNotEnoughStock
	}
	return nil
}

func (s *Service) Add(ctx context.Context, userID, productID int64, qty int) ([]Item, error) {
	if err := s.checkStock(ctx, productID, qty); err != nil {
		return nil, err
	}
	if err := s.Store.Insert(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return s.Store.Items(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, productID int64, qty int) ([]Item, error) {
	if err := s.checkStock(ctx, productID, qty); err != nil {
		return nil, err
	}
	if err := s.Store.SetQuantity(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return s.Store.Items(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) ([]Item, error) {
	if err := s.Store.Delete(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Store.Items(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.Store.Clear(ctx, userID)
}
