package storage

import (
	"context"

	"github.com/louisbranch/corp-idp/internal/platform/errors"
	"github.com/louisbranch/corp-idp/internal/services/idp/user"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// UserStore persists subject identity records.
//
// The OAuth core is read-only against users; PutUser exists for provisioning
// and test seeding, which happen outside the protocol endpoints.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
}
