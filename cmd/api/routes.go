package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bookstore/internal/auth"
	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
	"bookstore/internal/storage"
	"bookstore/internal/user"
)

type welcomeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// newRouter wires services and handlers on top of store and returns the
// complete HTTP handler.
func newRouter(cfg *config.Config, store *storage.Store, log zerolog.Logger) http.Handler {
	userService := user.NewService(store.Users)
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTTTL, userService)
	bookService := book.NewService(store.Books)

	authHandler := auth.NewHTTPHandler(authService)
	bookHandler := book.NewHTTPHandler(bookService, cfg.MaxPageSize)
	requireAuth := httpx.AuthMiddleware(cfg.JWTSecret, authService)

	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(log))
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

	r.NotFound(httpx.NotFound)
	r.MethodNotAllowed(httpx.NotFound)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, welcomeResponse{Success: true, Message: "Welcome to Bookstore API"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("store not ready")
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		authHandler.Routes(r)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	// Attached per route so unknown paths and methods still answer 404.
	r.Route("/api/books", func(r chi.Router) {
		bookHandler.Routes(r.With(requireAuth))
	})

	return r
}
