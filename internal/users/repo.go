package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ DB *postgres.DB }

func NewRepo(db *postgres.DB) *Repo { return &Repo{DB: db} }

const userColumns = `SELECT id, username, email, name, address, created_at, password FROM users`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Address, &u.CreatedAt, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// uniqueErr maps the users table unique constraints to domain errors.
func uniqueErr(err error) error {
	switch c, ok := postgres.UniqueViolation(err); {
	case !ok:
		return err
	case c == "users_email_key":
		return ErrEmailTaken
	default:
		return ErrUsernameTaken
	}
}

func (r *Repo) Insert(ctx context.Context, u User) (User, error) {
	row := r.DB.Executor(ctx).QueryRow(ctx, `
		INSERT INTO users(username, email, password, name, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, name, address, created_at, password`,
		u.Username, u.Email, u.PasswordHash, u.Name, u.Address)
	out, err := scanUser(row)
	if err != nil {
		return User{}, uniqueErr(err)
	}
	return out, nil
}

func (r *Repo) ByID(ctx context.Context, id int64) (User, error) {
	return scanUser(r.DB.Executor(ctx).QueryRow(ctx, userColumns+` WHERE id=$1`, id))
}

func (r *Repo) ByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.DB.Executor(ctx).QueryRow(ctx, userColumns+` WHERE username=$1`, username))
}

// Taken reports which of username and email already belong to another user.
func (r *Repo) Taken(ctx context.Context, username, email string, exceptID int64) (usernameTaken, emailTaken bool, err error) {
	err = r.DB.Executor(ctx).QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE username=$1 AND id<>$3),
			EXISTS (SELECT 1 FROM users WHERE email=$2 AND id<>$3)`,
		username, email, exceptID).Scan(&usernameTaken, &emailTaken)
	return
}

func (r *Repo) Update(ctx context.Context, u User) (User, error) {
	row := r.DB.Executor(ctx).QueryRow(ctx, `
		UPDATE users SET username=$2, email=$3, password=$4, name=$5, address=$6
		WHERE id=$1
		RETURNING id, username, email, name, address, created_at, password`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.Address)
	out, err := scanUser(row)
	if err != nil {
		return User{}, uniqueErr(err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Executor(ctx).Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if postgres.ForeignKeyViolation(err) {
		return ErrHasOrderedProducts
	}
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
