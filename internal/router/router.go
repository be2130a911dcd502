package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"minichat-backend/internal/handlers"
	"minichat-backend/internal/middleware"
	"minichat-backend/internal/web"
)

func New(chatHandler *handlers.ChatHandler, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(allowedOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Chat page
	r.Get("/", web.Index)

	r.Route("/api/v1", func(r chi.Router) {
		// Every API route is POST-only
		r.MethodNotAllowed(handlers.MethodNotAllowed)
		r.Post("/chat", chatHandler.Chat)
	})

	return r
}
