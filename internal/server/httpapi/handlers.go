// Package httpapi exposes the gateway over HTTP: the front-end JSON API,
// the fenced pages and the session endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/ratelimit"
	"github.com/lumina-social/lumina/internal/server/config"
	"github.com/lumina-social/lumina/internal/server/session"
	"github.com/lumina-social/lumina/internal/server/users"
)

type Handlers struct {
	users   *users.Service
	manager *session.Manager
	fence   *session.Fence
	cfg     *config.Config
	logger  logging.Logger
}

func NewHandlers(usersSvc *users.Service, manager *session.Manager, fence *session.Fence, cfg *config.Config, logger logging.Logger) *Handlers {
	return &Handlers{
		users:   usersSvc,
		manager: manager,
		fence:   fence,
		cfg:     cfg,
		logger:  logger.With("module", "httpapi"),
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Auth handles a login attempt. A success sets the claim cookie; every
// failure mode collapses into the same 401 so callers cannot probe which
// accounts exist.
func (h *Handlers) Auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Ok: false})
		return
	}

	result := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if result.Outcome != users.AuthSuccess {
		writeJSON(w, http.StatusUnauthorized, statusResponse{Ok: false})
		return
	}

	user, err := h.users.GetByID(r.Context(), result.UserID)
	if err != nil {
		h.logger.Error(r.Context(), "post-auth user fetch failed", "user_id", result.UserID, "error", err)
		http.Error(w, "unknown database error", http.StatusInternalServerError)
		return
	}
	if err := h.manager.Admit(r.Context(), w, user); err != nil {
		h.logger.Error(r.Context(), "session admission failed", "user_id", user.ID, "error", err)
		http.Error(w, "unknown database error", http.StatusInternalServerError)
		return
	}

	h.logger.Info(r.Context(), "user logged in", "username", user.Username, "ip", ratelimit.ClientKey(r))
	writeJSON(w, http.StatusOK, withErrorvalue(true, ""))
}

type newAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewAccount registers an account and logs the fresh user straight in.
// Rejections answer 417 with the machine-readable reason in Errorvalue.
func (h *Handlers) NewAccount(w http.ResponseWriter, r *http.Request) {
	var req newAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Ok: false})
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.Info(r.Context(), "user creation denied", "username", req.Username, "reason", err)
		writeJSON(w, http.StatusExpectationFailed, withErrorvalue(false, err.Error()))
		return
	}

	if err := h.manager.Admit(r.Context(), w, user); err != nil {
		h.logger.Error(r.Context(), "session admission failed", "user_id", user.ID, "error", err)
		http.Error(w, "unknown database error", http.StatusInternalServerError)
		return
	}

	h.logger.Info(r.Context(), "user creation approved", "user_id", user.ID, "ip", ratelimit.ClientKey(r))
	writeJSON(w, http.StatusOK, statusResponse{Ok: true})
}

type usernameCheckRequest struct {
	U string `json:"u"`
}

// CheckUsername is the live availability probe the signup form polls while
// the user types. Always 200; the verdict travels in the body.
func (h *Handlers) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req usernameCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Ok: false})
		return
	}

	err := h.users.UsernameStatus(r.Context(), req.U)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, statusResponse{Ok: true})
	case errors.Is(err, common.ErrorInternal):
		http.Error(w, "unknown database error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, statusResponse{Ok: false, Why: err.Error()})
	}
}

// Update feeds the front-end its periodic state poll: instance info plus
// the caller's user record, or placeholder values for anonymous callers.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	resp := updateResponse{
		Instance: instanceInfo{IID: h.cfg.InstanceID, LastSync: -1},
		User:     safeUser{Username: "unset", ID: -1, Email: "unset"},
	}

	claim := h.manager.ClaimFrom(r)
	if h.manager.Validate(claim) {
		ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StorageFetchTimeout)
		defer cancel()
		if user, err := h.users.GetByID(ctx, claim.UserID); err == nil {
			resp.User = safeUser{Username: user.Username, ID: user.ID, Email: user.Email}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type pageRequest struct {
	Location string `json:"location"`
}

// expiredPage is the negative outcome of the page fence: still a 200 so the
// front-end renders the message instead of treating it as transport failure.
func expiredPage() session.NegativeOutcome {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pageResponse{
			Main:    "It seems your session has expired.",
			Side:    "",
			Message: []int64{1},
		})
	}
}

// FetchPage serves page content to authenticated front-ends.
func (h *Handlers) FetchPage() http.HandlerFunc {
	return h.fence.Guard(expiredPage(), func(w http.ResponseWriter, r *http.Request, user *users.User) {
		var req pageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Ok: false})
			return
		}

		var resp pageResponse
		switch req.Location {
		case "home":
			main, err := json.Marshal(homePageData{Username: user.Username, InstanceName: h.cfg.InstanceID})
			if err != nil {
				http.Error(w, "unknown database error", http.StatusInternalServerError)
				return
			}
			resp = pageResponse{Main: string(main), Side: "", Message: []int64{899, 901}}
		case "notifications-centre":
			resp = pageResponse{Main: "Notifications should show up here!", Side: "", Message: []int64{33}}
		default:
			resp = pageResponse{
				Main:    "This page does not exist according to the instance server.",
				Side:    "",
				Message: []int64{2},
			}
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// Home is the fenced application page; anonymous visitors bounce to login.
func (h *Handlers) Home() http.HandlerFunc {
	return h.fence.Guard(session.RedirectOutcome(h.cfg.LoginPath), func(w http.ResponseWriter, r *http.Request, user *users.User) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><body><h1>Welcome back, %s.</h1></body></html>", user.Username)
	})
}

// Logout discards the caller's claim and bounces to the login page, whether
// or not there was a session to discard.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	claim := h.manager.ClaimFrom(r)
	if claim.UserID != common.UnknownUserID {
		h.logger.Info(r.Context(), "user logged out", "username", claim.Username, "ip", ratelimit.ClientKey(r))
	}
	h.manager.Purge(w)
	http.Redirect(w, r, h.cfg.LoginPath, http.StatusTemporaryRedirect)
}
