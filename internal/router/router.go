package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"examino-backend/internal/handlers"
	"examino-backend/internal/middleware"
)

func New(
	ingestHandler *handlers.IngestHandler,
	questionHandler *handlers.QuestionHandler,
	attemptHandler *handlers.AttemptHandler,
	bankHandler *handlers.BankHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Ingestion is expensive (extraction + generation), keep it throttled
	ingestLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Group(func(r chi.Router) {
			r.Use(ingestLimiter.Middleware)
			r.Post("/ingest", ingestHandler.Upload)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.List)
			r.Get("/next", questionHandler.Next)
			r.Get("/{id}", questionHandler.Get)
		})

		r.Route("/attempts", func(r chi.Router) {
			r.Post("/", attemptHandler.Submit)
			r.Get("/recent", attemptHandler.Recent)
		})

		r.Get("/topics", questionHandler.Topics)
		r.Get("/stats", attemptHandler.Stats)
		r.Get("/stats/topics", attemptHandler.TopicStats)
		r.Get("/bank/stats", bankHandler.Stats)
	})

	return r
}
