package catalog

import (
	"context"
	"strings"
)

type Store interface {
	Insert(ctx context.Context, ownerID int64, np NewProduct) (Product, error)
	ByID(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, q ListQuery) ([]Product, error)
	// Update writes only the non-nil fields of c.
	Update(ctx context.Context, id int64, c Changes) (Product, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct{ Store Store }

func NewService(store Store) *Service { return &Service{Store: store} }

func (s *Service) Create(ctx context.Context, ownerID int64, np NewProduct) (Product, error) {
	np.Name = strings.TrimSpace(np.Name)
	np.Currency = normalizeCurrency(np.Currency)
	if err := validate(np); err != nil {
		return Product{}, err
	}
	return s.Store.Insert(ctx, ownerID, np)
}

func validate(np NewProduct) error {
	switch {
	case np.Name == "":
		return ErrMissingName
	case np.Price.IsNegative():
		return ErrInvalidPrice
	case np.Stock < 0:
		return ErrInvalidStock
	}
	return nil
}

func normalizeCurrency(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrInvalidID
	}
	return s.Store.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Product, error) {
	if _, err := orderBy(q); err != nil {
		return nil, err
	}
	return s.Store.List(ctx, q)
}

// owned loads the product and checks that ownerID listed it.
func (s *Service) owned(ctx context.Context, ownerID, id int64) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.OwnerID != ownerID {
		return Product{}, ErrNotOwner
	}
	return p, nil
}

// Update applies a partial edit. Fields left nil keep their stored value,
// so a name edit never rewrites stock taken by a concurrent checkout.
func (s *Service) Update(ctx context.Context, ownerID, id int64, c Changes) (Product, error) {
	if c == (Changes{}) {
		return Product{}, ErrNoChanges
	}
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return Product{}, err
	}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return Product{}, ErrMissingName
		}
		c.Name = &name
	}
	if c.Currency != nil {
		cur := normalizeCurrency(*c.Currency)
		c.Currency = &cur
	}
	if c.Price != nil && c.Price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	if c.Stock != nil && *c.Stock < 0 {
		return Product{}, ErrInvalidStock
	}
	return s.Store.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) (Product, error) {
	p, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return Product{}, err
	}
	return p, nil
}
