package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/ratelimit"
)

// NewRouter assembles the public surface. Every route sits behind the
// general limiter; the credential endpoints additionally pass the stricter
// auth limiter, so a burst of login attempts runs dry long before the
// general budget does.
func NewRouter(h *Handlers, ws http.Handler, general *ratelimit.GeneralLimiter, auth *ratelimit.AuthLimiter, logger logging.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.Middleware(general, logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/home", http.StatusTemporaryRedirect)
	})
	r.Get("/home", h.Home())
	r.Get("/login", servePage("Log in"))
	r.Get("/signup", servePage("Sign up"))
	r.Get("/session/logout", h.Logout)

	r.Get("/api/fe/update", h.Update)
	r.Post("/api/fe/fetch-page", h.FetchPage())

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(auth, logger))
		r.Post("/api/fe/auth", h.Auth)
		r.Post("/api/fe/auth-create", h.NewAccount)
		r.Post("/api/fe/auth-create/check-username", h.CheckUsername)
	})

	if ws != nil {
		r.Handle("/ws", ws)
	}

	return r
}

func servePage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<!DOCTYPE html><html><head><title>" + title + "</title></head><body><h1>" + title + "</h1></body></html>"))
	}
}
