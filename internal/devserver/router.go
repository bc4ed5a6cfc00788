package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Router builds the full route table, middleware included. The gatherer
// backs the /metrics endpoint and is normally the same registry the
// Collector was registered on.
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", s.handleLogin)
			r.Post("/registration/", s.handleRegistration)
			r.Post("/token/refresh/", s.handleTokenRefresh)
			r.Post("/logout/", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/user/", s.handleUser)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Patch("/profile/update/", s.handleProfileUpdate)
			r.Post("/change-password/", s.handleChangePassword)
			r.Delete("/delete-account/", s.handleDeleteAccount)
		})
	})

	r.Handle("/metrics", MetricsHandler(gatherer))
	return r
}
