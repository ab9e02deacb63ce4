package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/rs/zerolog"
)

const CookieName = "sid"

var (
	ErrNotLoggedIn     = apperr.New(apperr.KindUnauthorized, "Not logged in")
	ErrAlreadyLoggedIn = apperr.New(apperr.KindUnauthorized, "Already logged in")
)

// SessionStore is what the HTTP layer needs from Sessions.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, bool, error)
	Destroy(ctx context.Context, token string) error
	DestroyAll(ctx context.Context, userID int64) error
	TTL() time.Duration
}

type identityKey struct{}

type identity struct {
	userID int64
	token  string
}

// UserID returns the logged in user, if any.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	return id.userID, ok
}

// Token returns the session token of the current request.
func Token(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id.token
}

func WithUser(ctx context.Context, userID int64, token string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, token: token})
}

// Middleware resolves the session cookie into a request identity. Requests
// without a valid session pass through anonymously.
func Middleware(store SessionStore, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok, err := store.Lookup(r.Context(), c.Value)
			if err != nil {
				log.Warn().Err(err).Msg("session lookup failed")
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			SetCookie(w, c.Value, store.TTL())
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, c.Value)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			deny(w, ErrNotLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); ok {
			deny(w, ErrAlreadyLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, err error) {
	code, msg := apperr.Describe(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
