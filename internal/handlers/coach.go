package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dsacoach-gateway/internal/coach"
	"dsacoach-gateway/internal/leetcode"
	"dsacoach-gateway/internal/llm"
	"dsacoach-gateway/pkg/logging/logging"
)

// Coach is satisfied by *coach.Service.
type Coach interface {
	Analyze(ctx context.Context, req coach.AnalyzeRequest) (map[string]any, error)
	Predict(ctx context.Context, req coach.PredictRequest) (map[string]any, error)
	Profile(ctx context.Context, username string) (coach.ProfileResult, error)
}

// CoachHandler serves the model-backed and profile endpoints.
type CoachHandler struct {
	Coach Coach
}

func NewCoachHandler(c Coach) *CoachHandler {
	return &CoachHandler{Coach: c}
}

// Analyze handles POST /api/analyze.
func (h *CoachHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())
	start := time.Now()

	var req coach.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Code is required", nil)
		return
	}

	out, err := h.Coach.Analyze(r.Context(), req)
	if err != nil {
		logger.Error("analyze failed", zap.Error(err))
		writeError(w, modelErrorStatus(err), "Analysis failed", err)
		return
	}

	logger.Info("analyze completed",
		zap.String("language", req.Language),
		zap.String("problem", req.ProblemName),
		zap.Bool("cached", out["cached"] == true),
		zap.Duration("total_latency_ms", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, out)
}

// Predict handles POST /api/predict.
func (h *CoachHandler) Predict(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())

	var req coach.PredictRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "Username is required", nil)
		return
	}

	out, err := h.Coach.Predict(r.Context(), req)
	if err != nil {
		logger.Error("predict failed", zap.String("username", req.Username), zap.Error(err))
		writeError(w, modelErrorStatus(err), "Prediction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Profile handles GET /api/profile/{username}.
func (h *CoachHandler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())

	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required", nil)
		return
	}

	out, err := h.Coach.Profile(r.Context(), username)
	switch {
	case errors.Is(err, leetcode.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case err != nil:
		logger.Error("profile failed", zap.String("username", username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile", err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// modelErrorStatus reports provider failures as 502 and anything else as 500.
func modelErrorStatus(err error) int {
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
