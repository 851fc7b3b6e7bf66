package handlers

import (
	"net/http"
	"time"

	"dsacoach-gateway/internal/cache"
)

// SystemHandler serves health and cache introspection.
type SystemHandler struct {
	Version    string
	AIProvider string
	Domains    *cache.Domains
	Now        func() time.Time
}

func NewSystemHandler(version, provider string, domains *cache.Domains) *SystemHandler {
	return &SystemHandler{Version: version, AIProvider: provider, Domains: domains, Now: time.Now}
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	AIProvider string `json:"ai_provider"`
	Timestamp  string `json:"timestamp"`
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    h.Version,
		AIProvider: h.AIProvider,
		Timestamp:  h.Now().UTC().Format(time.RFC3339Nano),
	})
}

// CacheStats handles GET /api/cache/stats.
func (h *SystemHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Domains.Stats())
}
