package handler

import (
	"log/slog"
	"net/http"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Appointments *AppointmentHandler
	Admin        *AdminHandler
	Logger       *slog.Logger
	Metrics      http.Handler // served at /metrics when set
	WebDir       string       // static pages; empty disables them
}

// NewRouter builds the chi router with the global middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(cfg.Logger))      // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Post("/admin-login", cfg.Admin.Login)

	r.Route("/api", func(r chi.Router) {
		r.Post("/book", cfg.Appointments.Book)
		r.Get("/appointments", cfg.Appointments.ListAppointments)
		r.Post("/confirm", cfg.Appointments.Confirm)
		r.Post("/reject", cfg.Appointments.Reject)
		r.Get("/appointment-counts", cfg.Appointments.Counts)
		r.Get("/appointment-count", cfg.Appointments.Total)
	})

	// index.html, admin.html and their assets live in WebDir.
	if cfg.WebDir != "" {
		r.Handle("/*", staticWithFallback(cfg.WebDir))
	}
	return r
}

// staticWithFallback serves files from dir and answers any path without a
// matching file with index.html.
func staticWithFallback(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := root.Open(path.Clean("/" + r.URL.Path))
		if err == nil {
			f.Close()
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
