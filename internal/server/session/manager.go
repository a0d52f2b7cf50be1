package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/server/sessions"
	"github.com/lumina-social/lumina/internal/server/users"
)

// Manager owns the two session representations: the epoch-scoped claim
// cookie checked on every request, and the durable token records that let a
// client resume after a restart invalidates its claim.
type Manager struct {
	epoch  Epoch
	codec  *Codec
	repo   sessions.Repository
	logger logging.Logger
}

func NewManager(epoch Epoch, codec *Codec, repo sessions.Repository, logger logging.Logger) *Manager {
	return &Manager{
		epoch:  epoch,
		codec:  codec,
		repo:   repo,
		logger: logger.With("module", "session"),
	}
}

// Epoch returns the validity marker drawn at startup.
func (m *Manager) Epoch() Epoch { return m.epoch }

// ClaimFrom reads the request's claim cookie. Undecodable cookies come back
// as the anonymous claim.
func (m *Manager) ClaimFrom(r *http.Request) Claim {
	return m.codec.Read(r)
}

// Validate reports whether a claim belongs to this process generation: it
// names a real user and carries the current epoch.
func (m *Manager) Validate(claim Claim) bool {
	return claim.UserID != common.UnknownUserID && claim.Validity == int64(m.epoch)
}

// Admit writes the claim cookie for an authenticated user without creating
// a durable record. Browser logins use this; their session simply ends when
// the process epoch changes.
func (m *Manager) Admit(ctx context.Context, w http.ResponseWriter, user *users.User) error {
	claim := Claim{UserID: user.ID, Username: user.Username, Validity: int64(m.epoch)}
	if err := m.codec.Write(w, claim); err != nil {
		return fmt.Errorf("error writing session cookie: %w", err)
	}
	m.logger.Info(ctx, "session admitted", "user_id", user.ID)
	return nil
}

// Grant creates a durable session record for an authenticated user and
// returns the opaque token the client must present to revive the session
// later, typically over the websocket channel after a restart.
func (m *Manager) Grant(ctx context.Context, user *users.User) (string, error) {
	token := uuid.NewString()
	if err := m.repo.Create(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("error storing session: %w", err)
	}
	m.logger.Info(ctx, "session granted", "user_id", user.ID)
	return token, nil
}

// Revive exchanges a durable session token for its user. A token nobody
// holds is a soft miss (common.ErrorSessionTokenNotFound, the client should
// re-authenticate); storage trouble is logged here and surfaces as an
// internal error.
func (m *Manager) Revive(ctx context.Context, token string) (*users.User, error) {
	user, err := m.repo.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorSessionTokenNotFound
		}
		m.logger.Error(ctx, "session revival lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// Purge discards the client's claim cookie.
func (m *Manager) Purge(w http.ResponseWriter) {
	m.codec.Purge(w)
}

// InvalidateToken removes a durable session record.
func (m *Manager) InvalidateToken(ctx context.Context, token string) error {
	if err := m.repo.DeleteByToken(ctx, token); err != nil {
		m.logger.Error(ctx, "session invalidation failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// PruneExpired deletes durable sessions older than maxAge and returns how
// many were removed. Run periodically from the app's maintenance loop.
func (m *Manager) PruneExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, time.Now().Add(-maxAge))
	if err != nil {
		m.logger.Error(ctx, "session pruning failed", "error", err)
		return 0, common.ErrorInternal
	}
	if n > 0 {
		m.logger.Info(ctx, "expired sessions pruned", "count", n)
	}
	return n, nil
}
