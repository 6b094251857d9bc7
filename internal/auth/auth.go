package auth

import (
	"context"
	"errors"

	"github.com/example/projecthub/internal/domain/user"
	"github.com/example/projecthub/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Rejection reasons surfaced to the login and registration forms. The forms
// show these verbatim; anything else that goes wrong collapses into
// ErrInternal so raw failures never reach the user.
var (
	ErrUnknownUser      = errors.New("no such user")
	ErrWrongPassword    = errors.New("wrong password")
	ErrTermsNotAccepted = errors.New("terms not accepted")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUsernameTaken    = store.ErrUsernameTaken
	ErrInternal         = errors.New("internal error")
)

type Service struct {
	Users *store.Store
}

// Authenticate checks a submitted username/password pair against the store.
// Read-only; it never mutates the store or any session state.
func (s Service) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	u, ok := s.Users.FindByUsername(ctx, username)
	if !ok {
		return user.User{}, ErrUnknownUser
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return user.User{}, ErrWrongPassword
	default:
		return user.User{}, ErrInternal
	}
}

// Registration carries the raw registration form fields.
type Registration struct {
	Username        string
	Email           string
	Gender          string
	Password        string
	PasswordConfirm string
	TermsAccepted   bool
}

// Register validates in form order (terms, password confirmation, username
// availability) and stops at the first failing check. The availability
// pre-check gives the friendly error; the store's atomic append enforces
// uniqueness even when two registrations race past the pre-check.
func (s Service) Register(ctx context.Context, r Registration) (user.User, error) {
	if !r.TermsAccepted {
		return user.User{}, ErrTermsNotAccepted
	}
	if r.Password != r.PasswordConfirm {
		return user.User{}, ErrPasswordMismatch
	}
	if _, exists := s.Users.FindByUsername(ctx, r.Username); exists {
		return user.User{}, ErrUsernameTaken
	}
	hash, err := HashPassword(r.Password)
	if err != nil {
		return user.User{}, ErrInternal
	}
	u := user.User{
		Email:        r.Email,
		Gender:       r.Gender,
		Username:     r.Username,
		PasswordHash: hash,
		ID:           s.Users.NextID(),
	}
	if err := s.Users.Append(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
