package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dsacoach-gateway/internal/dataset"
	"dsacoach-gateway/pkg/logging/logging"
)

const datasetGapMessage = "Problem not found in dataset. For full cross-platform recommendations, the dataset needs to be expanded."

// Catalog is satisfied by *dataset.Engine.
type Catalog interface {
	FindRelated(slug string) dataset.RelatedResult
	Summarize(solved []string) dataset.TopicSummary
}

type DatasetHandler struct {
	Catalog Catalog
}

func NewDatasetHandler(c Catalog) *DatasetHandler {
	return &DatasetHandler{Catalog: c}
}

type topicsRequest struct {
	SolvedProblems []string `json:"solvedProblems"`
}

// Topics handles POST /api/topics.
func (h *DatasetHandler) Topics(w http.ResponseWriter, r *http.Request) {
	var req topicsRequest
	if err := decodeBody(r, &req); err != nil {
		logging.L(r.Context()).Warn("invalid request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog.Summarize(req.SolvedProblems))
}

type relatedResponse struct {
	dataset.RelatedResult
	Message string `json:"message,omitempty"`
}

// Related handles GET /api/related/{problemSlug}.
func (h *DatasetHandler) Related(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "problemSlug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Problem slug is required", nil)
		return
	}

	res := relatedResponse{RelatedResult: h.Catalog.FindRelated(slug)}
	if res.IsFallback && len(res.TopicRelated) == 0 {
		res.Message = datasetGapMessage
	}

	logging.L(r.Context()).Debug("related lookup",
		zap.String("slug", slug),
		zap.Bool("fallback", res.IsFallback),
		zap.Int("results", len(res.TopicRelated)),
	)
	writeJSON(w, http.StatusOK, res)
}
