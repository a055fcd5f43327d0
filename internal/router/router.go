package router

import (
	"net/http"
	"strings"

	"mealsnap/internal/handler"
	"mealsnap/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware
// configured. uploadsDir is served statically under the uploads URL
// prefix when non-empty (local image storage); with S3 storage the
// image URLs are absolute and nothing is served locally.
func New(
	mealHandler *handler.MealHandler,
	uploadsDir string,
	uploadsPrefix string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Meal ingestion and retrieval
	mux.HandleFunc("/api/analyze", mealHandler.Analyze)
	mux.HandleFunc("/api/meals", mealHandler.List)

	// Stored meal images
	if uploadsDir != "" {
		prefix := "/" + strings.Trim(uploadsPrefix, "/") + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(uploadsDir))))
	}

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
