package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fittrack/apiserver/internal/services"
	"github.com/fittrack/apiserver/internal/store"
	"github.com/fittrack/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// FitnessHandler records activity for the authenticated user.
type FitnessHandler struct {
	fitnessService *services.FitnessService
	logger         *slog.Logger
}

func NewFitnessHandler(fitnessService *services.FitnessService, logger *slog.Logger) *FitnessHandler {
	return &FitnessHandler{fitnessService: fitnessService, logger: logger}
}

// FitnessRouter registers fitness routes behind requireToken.
func FitnessRouter(
	r chi.Router,
	fitnessService *services.FitnessService,
	requireToken func(http.Handler) http.Handler,
	logger *slog.Logger,
) {
	handler := NewFitnessHandler(fitnessService, logger)

	r.With(requireToken).Post("/", handler.Record)
}

// Record stores one fitness sample owned by the token's user.
func (h *FitnessHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req FitnessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if req.Date == nil || req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if req.Steps < 0 || req.Calories < 0 {
		writeError(w, http.StatusBadRequest, "steps and calories must not be negative")
		return
	}

	created, err := h.fitnessService.Record(r.Context(), types.FitnessData{
		UserID:   userID,
		Steps:    req.Steps,
		Calories: req.Calories,
		Date:     req.Date.UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			writeError(w, http.StatusBadRequest, "unknown user")
			return
		}
		h.logger.ErrorContext(r.Context(), "record fitness failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// FitnessRequest is the body of POST /fitness.
type FitnessRequest struct {
	Steps    int        `json:"steps"`
	Calories int        `json:"calories"`
	Date     *time.Time `json:"date"`
}
