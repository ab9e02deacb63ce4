package carts

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProducts map[int64]catalog.Product

func (m memProducts) Get(_ context.Context, id int64) (catalog.Product, error) {
	if id <= 0 {
		return catalog.Product{}, catalog.ErrInvalidID
	}
	p, ok := m[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type memStore struct{ lines map[int64][]Item }

func (m *memStore) Items(_ context.Context, userID int64) ([]Item, error) {
	return append([]Item{}, m.lines[userID]...), nil
}

func (m *memStore) Insert(_ context.Context, userID, productID int64, qty int) error {
	for _, it := range m.lines[userID] {
		if it.ProductID == productID {
			return ErrAlreadyInCart
		}
	}
	m.lines[userID] = append(m.lines[userID], Item{ProductID: productID, Quantity: qty})
	return nil
}

func (m *memStore) SetQuantity(_ context.Context, userID, productID int64, qty int) error {
	for i, it := range m.lines[userID] {
		if it.ProductID == productID {
			m.lines[userID][i].Quantity = qty
			return nil
		}
	}
	return ErrNotInCart
}

func (m *memStore) Delete(_ context.Context, userID, productID int64) error {
	for i, it := range m.lines[userID] {
		if it.ProductID == productID {
			m.lines[userID] = append(m.lines[userID][:i], m.lines[userID][i+1:]...)
			return nil
		}
	}
	return ErrNotInCart
}

func (m *memStore) Clear(_ context.Context, userID int64) error {
	delete(m.lines, userID)
	return nil
}

func TestCartLifecycle(t *testing.T) {
	st := &memStore{lines: map[int64][]Item{}}
	svc := NewService(st, memProducts{1: {ID: 1, Stock: 3}, 2: {ID: 2, Stock: 0}})
	ctx := context.Background()

	items, err := svc.Add(ctx, 9, 1, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.Add(ctx, 9, 1, 1)
	assert.ErrorIs(t, err, ErrAlreadyInCart)
	_, err = svc.Add(ctx, 9, 2, 1)
	assert.ErrorIs(t, err, ErrNotEnoughStock)
	_, err = svc.Add(ctx, 9, 3, 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = svc.Add(ctx, 9, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	items, err = svc.Update(ctx, 9, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)
	_, err = svc.Update(ctx, 9, 1, 4)
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	_, err = svc.Remove(ctx, 9, 2)
	assert.ErrorIs(t, err, ErrNotInCart)
	items, err = svc.Remove(ctx, 9, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Add(ctx, 9, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 9))
	items, err = svc.Get(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, items)
}
