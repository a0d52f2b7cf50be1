package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/server/users"
)

// UserSource resolves a claimed user id to the full user record.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// NegativeOutcome is what the fence does with a request whose claim failed
// validation. The cookie purge has already happened when it runs.
type NegativeOutcome func(w http.ResponseWriter, r *http.Request)

// RedirectOutcome sends browsers to the login page with a temporary
// redirect, preserving the request method.
func RedirectOutcome(loginPath string) NegativeOutcome {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
	}
}

// JSONOutcome replies with a fixed JSON body, for API callers that expect a
// machine-readable rejection instead of a redirect.
func JSONOutcome(status int, body any) NegativeOutcome {
	encoded, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(encoded)
	}
}

// Handler is a request handler that runs behind the fence with an already
// resolved user.
type Handler func(w http.ResponseWriter, r *http.Request, user *users.User)

// Fence validates the session claim before a protected handler runs. An
// invalid claim costs the client its cookie and gets the caller-selected
// negative outcome. A valid claim resolves to a full user record under a
// deadline; a resolution failure is a hard internal error, the request is
// never handed to the handler half-authenticated.
type Fence struct {
	manager *Manager
	source  UserSource
	timeout time.Duration
	logger  logging.Logger
}

func NewFence(manager *Manager, source UserSource, timeout time.Duration, logger logging.Logger) *Fence {
	return &Fence{
		manager: manager,
		source:  source,
		timeout: timeout,
		logger:  logger.With("module", "fence"),
	}
}

// Guard wraps next so it only runs for requests carrying a valid claim.
func (f *Fence) Guard(negative NegativeOutcome, next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claim := f.manager.ClaimFrom(r)
		if !f.manager.Validate(claim) {
			f.manager.Purge(w)
			negative(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), f.timeout)
		defer cancel()

		user, err := f.source.GetByID(ctx, claim.UserID)
		if err != nil {
			f.logger.Error(ctx, "fenced user fetch failed", "user_id", claim.UserID, "error", err)
			http.Error(w, "unknown database error", http.StatusInternalServerError)
			return
		}

		next(w, r, user)
	}
}
