package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no account exists for the given ID.
var ErrNotFound = errors.New("user not found")

// Repo defines persistence for account records. Upsert refreshes the
// profile fields on every sign-in; CreatedAt survives updates.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
