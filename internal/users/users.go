package users

import (
	"time"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`

	PasswordHash string `json:"-"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

// Changes is a partial profile update; nil fields are left alone.
type Changes struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Address  *string `json:"address"`
}

func (c Changes) empty() bool {
	return c.Username == nil && c.Email == nil && c.Password == nil && c.Name == nil && c.Address == nil
}

var (
	ErrNotFound           = apperr.New(apperr.KindNotFound, "User not found")
	ErrUsernameTaken      = apperr.New(apperr.KindConflict, "Username already exists")
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "Email already in use")
	ErrBadCredentials     = apperr.New(apperr.KindUnauthorized, "Incorrect username or password")
	ErrHasOrderedProducts = apperr.New(apperr.KindConflict, "User has products in existing orders")
	ErrNoChanges          = apperr.New(apperr.KindValidation, "No changes given")
	ErrMissingUsername    = apperr.New(apperr.KindValidation, "Username is required")
	ErrMissingEmail       = apperr.New(apperr.KindValidation, "Email is required")
	ErrMissingPassword    = apperr.New(apperr.KindValidation, "Password is required")
)
