package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/metrics"
)

const (
	APIWelcome   = "Welcome to the media links API"
	HelloWelcome = "Hello from the media links server!"
)

func newBaseRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(CORSMiddleware())

	return r
}

func NewRouter(fileHandler *FileHandler) *chi.Mux {
	r := newBaseRouter()

	r.Get("/", Welcome(APIWelcome))
	r.Get("/api/files", fileHandler.ListFiles)
	r.Get("/api/files/{folder}/{fileName}", fileHandler.GetFileLink)
	r.Handle("/metrics", metrics.Handler())

	return r
}

// NewHelloRouter serves only the static hello route.
func NewHelloRouter() *chi.Mux {
	r := newBaseRouter()

	r.Get("/", Welcome(HelloWelcome))

	return r
}
