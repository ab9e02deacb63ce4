package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		q       ListQuery
		want    string
		wantErr error
	}{
		{ListQuery{}, "price ASC, id ASC", nil},
		{ListQuery{Column: "name", Sort: "desc"}, "name DESC, id ASC", nil},
		{ListQuery{Column: "listed_at", Sort: "ASC"}, "listed_at ASC, id ASC", nil},
		{ListQuery{Column: "stock; DROP TABLE users"}, "", ErrInvalidColumn},
		{ListQuery{Column: "price", Sort: "sideways"}, "", ErrInvalidSort},
	}
	for _, tt := range tests {
		got, err := orderBy(tt.q)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

type memStore struct {
	products map[int64]Product
	nextID   int64
	refs     map[int64]bool

	// afterRead runs after ByID returns, standing in for a concurrent writer
	afterRead func(id int64)
}

func (m *memStore) Insert(_ context.Context, ownerID int64, np NewProduct) (Product, error) {
	m.nextID++
	p := Product{ID: m.nextID, OwnerID: ownerID, Name: np.Name, Description: np.Description,
		Price: np.Price, Currency: np.Currency, Stock: np.Stock}
	m.products[p.ID] = p
	return p, nil
}

func (m *memStore) ByID(_ context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if m.afterRead != nil {
		m.afterRead(id)
	}
	return p, nil
}

func (m *memStore) List(_ context.Context, _ ListQuery) ([]Product, error) {
	out := []Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id int64, c Changes) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Currency != nil {
		p.Currency = *c.Currency
	}
	if c.Stock != nil {
		p.Stock = *c.Stock
	}
	m.products[id] = p
	return p, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if m.refs[id] {
		return ErrHasOrders
	}
	delete(m.products, id)
	return nil
}

func newService() (*Service, *memStore) {
	st := &memStore{products: map[int64]Product{}, refs: map[int64]bool{}}
	return NewService(st), st
}

func TestCreate(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	p, err := s.Create(ctx, 7, NewProduct{Name: " Lamp ", Price: decimal.RequireFromString("12.50"), Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, DefaultCurrency, p.Currency)
	assert.Equal(t, int64(7), p.OwnerID)

	_, err = s.Create(ctx, 7, NewProduct{Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrMissingName)
	_, err = s.Create(ctx, 7, NewProduct{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = s.Create(ctx, 7, NewProduct{Name: "x", Stock: -1})
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestGet_InvalidID(t *testing.T) {
	s, _ := newService()
	_, err := s.Get(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = s.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	s, st := newService()
	ctx := context.Background()
	p, err := s.Create(ctx, 7, NewProduct{Name: "Lamp", Price: decimal.NewFromInt(10), Stock: 3})
	require.NoError(t, err)

	stock := 9
	_, err = s.Update(ctx, 8, p.ID, Changes{Stock: &stock})
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := s.Update(ctx, 7, p.ID, Changes{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)

	neg := -2
	_, err = s.Update(ctx, 7, p.ID, Changes{Stock: &neg})
	assert.ErrorIs(t, err, ErrInvalidStock)

	_, err = s.Update(ctx, 7, p.ID, Changes{})
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = s.Delete(ctx, 8, p.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	st.refs[p.ID] = true
	_, err = s.Delete(ctx, 7, p.ID)
	assert.ErrorIs(t, err, ErrHasOrders)

	st.refs[p.ID] = false
	_, err = s.Delete(ctx, 7, p.ID)
	require.NoError(t, err)
	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_KeepsConcurrentStockChange(t *testing.T) {
	s, st := newService()
	ctx := context.Background()
	p, err := s.Create(ctx, 7, NewProduct{Name: "Lamp", Price: decimal.NewFromInt(10), Stock: 5})
	require.NoError(t, err)

	// a checkout takes 2 units between the ownership read and the write
	st.afterRead = func(id int64) {
		q := st.products[id]
		q.Stock -= 2
		st.products[id] = q
		st.afterRead = nil
	}
	name := "  Desk lamp "
	got, err := s.Update(ctx, 7, p.ID, Changes{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", got.Name)
	assert.Equal(t, 3, got.Stock)
}

func TestUpdate_ValidatesGivenFields(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	p, err := s.Create(ctx, 7, NewProduct{Name: "Lamp", Price: decimal.NewFromInt(10), Stock: 5})
	require.NoError(t, err)

	blank := "   "
	_, err = s.Update(ctx, 7, p.ID, Changes{Name: &blank})
	assert.ErrorIs(t, err, ErrMissingName)

	neg := decimal.NewFromInt(-1)
	_, err = s.Update(ctx, 7, p.ID, Changes{Price: &neg})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	cur := " EUR "
	got, err := s.Update(ctx, 7, p.ID, Changes{Currency: &cur})
	require.NoError(t, err)
	assert.Equal(t, "eur", got.Currency)
	assert.Equal(t, 5, got.Stock)
}

func TestList_RejectsBadSort(t *testing.T) {
	s, _ := newService()
	_, err := s.List(context.Background(), ListQuery{Column: "password"})
	assert.ErrorIs(t, err, ErrInvalidColumn)
}
