package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"mealsnap/internal/model"
	"mealsnap/internal/service"

	"github.com/rs/zerolog"
)

// maxUploadBytes caps the multipart form size for /api/analyze.
const maxUploadBytes = 10 << 20 // 10 MiB

// MealHandler handles meal-related HTTP requests.
type MealHandler struct {
	service service.MealService
	logger  zerolog.Logger
}

// NewMealHandler creates a new meal handler.
func NewMealHandler(service service.MealService, logger zerolog.Logger) *MealHandler {
	return &MealHandler{
		service: service,
		logger:  logger.With().Str("handler", "meal").Logger(),
	}
}

// Analyze handles POST /api/analyze requests. The body is a multipart
// form with an "image" file field and a "mealType" text field.
func (h *MealHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Warn().Err(err).Msg("failed to parse multipart form")
		writeError(w, http.StatusBadRequest, model.ErrNoImage.Message, h.logger)
		return
	}

	var image []byte
	var filename string

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		filename = header.Filename
		image, err = io.ReadAll(file)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read uploaded image")
			writeError(w, http.StatusInternalServerError, "Failed to analyze image", h.logger)
			return
		}
	}

	meal, err := h.service.Ingest(r.Context(), service.IngestRequest{
		Image:    image,
		Filename: filename,
		MealType: r.FormValue("mealType"),
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to analyze image"

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			switch domainErr.Code {
			case model.ErrCodeNoImage, model.ErrCodeInvalidMealType:
				status = http.StatusBadRequest
				message = domainErr.Message
			}
		}

		writeError(w, status, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

// List handles GET /api/meals requests with optional startDate and
// endDate query parameters.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	start, err := parseDateParam(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate parameter", h.logger)
		return
	}

	end, err := parseDateParam(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate parameter", h.logger)
		return
	}

	summary, err := h.service.ListMeals(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get meals", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// parseDateParam parses an optional ISO date query parameter. A
// date-only value ("2026-08-28") resolves to midnight UTC; a full
// RFC 3339 timestamp is accepted as-is. An absent value yields nil.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
