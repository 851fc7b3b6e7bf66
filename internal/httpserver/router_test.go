package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/coach"
	"dsacoach-gateway/internal/dataset"
	"dsacoach-gateway/internal/handlers"
	"dsacoach-gateway/internal/leetcode"
)

type stubCoach struct{}

func (stubCoach) Analyze(context.Context, coach.AnalyzeRequest) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func (stubCoach) Predict(context.Context, coach.PredictRequest) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func (stubCoach) Profile(_ context.Context, username string) (coach.ProfileResult, error) {
	return coach.ProfileResult{Profile: leetcode.Profile{Username: username}}, nil
}

func newTestRouter(t *testing.T, opts Options) *chi.Mux {
	t.Helper()
	domains := cache.NewDomains(cache.DefaultAIDomain, cache.DefaultProfileDomain, cache.DefaultDatasetDomain)
	engine := dataset.NewEngine(dataset.FileSource("../dataset/testdata/problems.json"), domains.Dataset, zaptest.NewLogger(t))

	r := chi.NewRouter()
	SetupRouter(r, zaptest.NewLogger(t), Handlers{
		Coach:   handlers.NewCoachHandler(stubCoach{}),
		Dataset: handlers.NewDatasetHandler(engine),
		System:  handlers.NewSystemHandler("test", "groq", domains),
	}, opts)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, Options{})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/cache/stats", "", http.StatusOK},
		{http.MethodPost, "/api/analyze", `{"code":"x"}`, http.StatusOK},
		{http.MethodPost, "/api/analyze", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/predict", `{"username":"alice"}`, http.StatusOK},
		{http.MethodGet, "/api/profile/alice", "", http.StatusOK},
		{http.MethodPost, "/api/topics", `{"solvedProblems":["two-sum"]}`, http.StatusOK},
		{http.MethodGet, "/api/related/two-sum", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/analyze", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := do(r, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://leetcode.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := do(r, req)
	assert.Equal(t, "https://leetcode.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_SimpleRequest(t *testing.T) {
	r := newTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")

	rec := do(r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chrome-extension://abcdef", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodySize(t *testing.T) {
	r := newTestRouter(t, Options{MaxBodyBytes: 64})

	body := `{"code":"` + strings.Repeat("a", 256) + `"}`
	rec := do(r, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
