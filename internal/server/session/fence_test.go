package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/server/users"
)

type fakeUserSource struct {
	user *users.User
	err  error
}

func (f *fakeUserSource) GetByID(ctx context.Context, id int64) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newTestFence(t *testing.T, m *Manager, source *fakeUserSource) *Fence {
	t.Helper()
	return NewFence(m, source, time.Second, testLogger())
}

func TestGuard_ValidClaimDispatchesWithUser(t *testing.T) {
	m := newTestManager(t, 42, &fakeSessionsRepo{})
	f := newTestFence(t, m, &fakeUserSource{user: &users.User{ID: 7, Username: "alice"}})

	var seen *users.User
	h := f.Guard(RedirectOutcome("/login"), func(w http.ResponseWriter, r *http.Request, user *users.User) {
		seen = user
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithClaim(t, testCodec(), Claim{UserID: 7, Username: "alice", Validity: 42})
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != 7 {
		t.Fatalf("handler must receive the resolved user, got %+v", seen)
	}
}

func TestGuard_InvalidClaimPurgesAndRedirects(t *testing.T) {
	m := newTestManager(t, 42, &fakeSessionsRepo{})
	f := newTestFence(t, m, &fakeUserSource{user: &users.User{ID: 7}})

	called := false
	h := f.Guard(RedirectOutcome("/login"), func(w http.ResponseWriter, r *http.Request, user *users.User) {
		called = true
	})

	// claim from a previous process generation
	req := requestWithClaim(t, testCodec(), Claim{UserID: 7, Validity: 41})
	rec := httptest.NewRecorder()
	h(rec, req)

	if called {
		t.Fatal("handler must not run for an invalid claim")
	}
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q, want /login", loc)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != common.SessionCookieName || cookies[0].MaxAge != -1 {
		t.Fatalf("expected purged session cookie, got %+v", cookies)
	}
}

func TestGuard_MissingCookieGetsNegativeOutcome(t *testing.T) {
	m := newTestManager(t, 42, &fakeSessionsRepo{})
	f := newTestFence(t, m, &fakeUserSource{user: &users.User{ID: 7}})

	h := f.Guard(JSONOutcome(http.StatusUnauthorized, map[string]bool{"Ok": false}), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"Ok":false}` {
		t.Fatalf("body = %q", body)
	}
}

func TestGuard_FetchFailureIsHardError(t *testing.T) {
	m := newTestManager(t, 42, &fakeSessionsRepo{})
	f := newTestFence(t, m, &fakeUserSource{err: errBoom{}})

	called := false
	h := f.Guard(RedirectOutcome("/login"), func(w http.ResponseWriter, r *http.Request, user *users.User) {
		called = true
	})

	req := requestWithClaim(t, testCodec(), Claim{UserID: 7, Validity: 42})
	rec := httptest.NewRecorder()
	h(rec, req)

	if called {
		t.Fatal("handler must not run when the user cannot be resolved")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown database error") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
