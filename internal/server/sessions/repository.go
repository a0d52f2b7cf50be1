// Package sessions persists durable session records so a client holding an
// opaque token can be re-authenticated after a server restart.
package sessions

import (
	"context"
	"time"

	"github.com/lumina-social/lumina/internal/server/users"
)

type Repository interface {
	// Create stores a new session token for the user.
	Create(ctx context.Context, userID int64, token string) error

	// GetUserByToken resolves a session token straight to its owning user.
	// Returns common.ErrorNotFound when no such session exists.
	GetUserByToken(ctx context.Context, token string) (*users.User, error)

	// DeleteByToken removes a session record. Deleting an absent token is
	// not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes sessions created before the cutoff and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
