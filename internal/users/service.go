package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	Taken(ctx context.Context, username, email string, exceptID int64) (bool, bool, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	DestroyAll(ctx context.Context, userID int64) error
}

type Service struct {
	Store    Store
	Sessions SessionRevoker
	Cost     int
}

func NewService(store Store, sessions SessionRevoker) *Service {
	return &Service{Store: store, Sessions: sessions, Cost: bcrypt.DefaultCost}
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	return string(b), err
}

func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	switch {
	case reg.Username == "":
		return User{}, ErrMissingUsername
	case reg.Email == "":
		return User{}, ErrMissingEmail
	case reg.Password == "":
		return User{}, ErrMissingPassword
	}
	if err := s.checkTaken(ctx, reg.Username, reg.Email, 0); err != nil {
		return User{}, err
	}
	h, err := s.hash(reg.Password)
	if err != nil {
		return User{}, err
	}
	u := User{Username: reg.Username, Email: reg.Email, Name: reg.Name, PasswordHash: h}
	if a := strings.TrimSpace(reg.Address); a != "" {
		u.Address = &a
	}
	return s.Store.Insert(ctx, u)
}

func (s *Service) checkTaken(ctx context.Context, username, email string, exceptID int64) error {
	userTaken, emailTaken, err := s.Store.Taken(ctx, username, email, exceptID)
	switch {
	case err != nil:
		return err
	case userTaken:
		return ErrUsernameTaken
	case emailTaken:
		return ErrEmailTaken
	}
	return nil
}

// Authenticate checks the password with a constant-time bcrypt comparison.
// Unknown users and wrong passwords are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.Store.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrBadCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.Store.ByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, c Changes) (User, error) {
	if c.empty() {
		return User{}, ErrNoChanges
	}
	u, err := s.Store.ByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if c.Username != nil {
		if u.Username = strings.TrimSpace(*c.Username); u.Username == "" {
			return User{}, ErrMissingUsername
		}
	}
	if c.Email != nil {
		if u.Email = strings.TrimSpace(*c.Email); u.Email == "" {
			return User{}, ErrMissingEmail
		}
	}
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Address != nil {
		if a := strings.TrimSpace(*c.Address); a != "" {
			u.Address = &a
		} else {
			u.Address = nil
		}
	}
	if c.Password != nil {
		if *c.Password == "" {
			return User{}, ErrMissingPassword
		}
		if u.PasswordHash, err = s.hash(*c.Password); err != nil {
			return User{}, err
		}
	}
	if err := s.checkTaken(ctx, u.Username, u.Email, id); err != nil {
		return User{}, err
	}
	return s.Store.Update(ctx, u)
}

// Delete removes the account and every session it holds.
func (s *Service) Delete(ctx context.Context, id int64) (User, error) {
	u, err := s.Store.ByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return User{}, err
	}
	if s.Sessions != nil {
		if err := s.Sessions.DestroyAll(ctx, id); err != nil {
			return User{}, err
		}
	}
	return u, nil
}
