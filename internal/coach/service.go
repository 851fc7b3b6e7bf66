// Package coach composes the model, profile and catalog services behind the
// gateway's analyze, predict and profile endpoints.
package coach

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/leetcode"
	"dsacoach-gateway/internal/llm"
	"dsacoach-gateway/pkg/logging/logging"
)

type AnalyzeRequest struct {
	Code        string `json:"code"`
	Language    string `json:"language"`
	ProblemName string `json:"problemName"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type PredictTopic struct {
	Topic  string `json:"topic,omitempty"`
	Name   string `json:"name,omitempty"`
	Solved int    `json:"solved"`
}

type PredictContestCurrent struct {
	Rating                float64  `json:"rating"`
	AttendedContestsCount int      `json:"attendedContestsCount"`
	TopPercentage         *float64 `json:"topPercentage"`
}

type PredictRequest struct {
	Username    string `json:"username"`
	ProfileData struct {
		Solved *leetcode.Solved `json:"solved"`
	} `json:"profileData"`
	TopicStats  []PredictTopic `json:"topicStats"`
	ContestData struct {
		Current *PredictContestCurrent `json:"current"`
	} `json:"contestData"`
}

// ProfileResult is the profile endpoint payload: the flattened profile plus
// contest data and an approximate acceptance rate.
type ProfileResult struct {
	leetcode.Profile
	Contest        leetcode.ContestHistory `json:"contest"`
	AcceptanceRate int                     `json:"acceptanceRate"`
}

// ProfileSource is satisfied by *leetcode.Client.
type ProfileSource interface {
	GetUserProfile(ctx context.Context, username string) (leetcode.Profile, error)
	GetContestHistory(ctx context.Context, username string) (leetcode.ContestHistory, error)
}

type Service struct {
	gen      *llm.CachedGenerator
	profiles ProfileSource
}

func NewService(gen *llm.CachedGenerator, profiles ProfileSource) *Service {
	return &Service{gen: gen, profiles: profiles}
}

// Provider names the model backend in use.
func (s *Service) Provider() string {
	return s.gen.Provider()
}

// Analyze asks the model for brute-force and optimal solutions plus the
// complexity of the submitted code. A cached answer is flagged "cached".
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (map[string]any, error) {
	key := cache.MakeKey("analyze_v2", struct {
		Code        string `json:"code"`
		Language    string `json:"language"`
		ProblemName string `json:"problemName"`
	}{req.Code, req.Language, req.ProblemName})

	return s.generate(ctx, key, buildAnalyzePrompt(req))
}

// Predict asks the model for a personalized roadmap and rating forecast.
func (s *Service) Predict(ctx context.Context, req PredictRequest) (map[string]any, error) {
	solved := 0
	if req.ProfileData.Solved != nil {
		solved = req.ProfileData.Solved.All
	}
	rating := 0.0
	if req.ContestData.Current != nil {
		rating = req.ContestData.Current.Rating
	}
	key := cache.MakeKey("predict", struct {
		Username string  `json:"username"`
		Solved   int     `json:"solved"`
		Rating   float64 `json:"rating"`
	}{req.Username, solved, rating})

	return s.generate(ctx, key, buildPredictPrompt(req))
}

func (s *Service) generate(ctx context.Context, key, prompt string) (map[string]any, error) {
	text, cached, err := s.gen.Generate(ctx, key, prompt)
	if err != nil {
		return nil, err
	}
	out := llm.ParseJSON(text)
	if cached {
		out["cached"] = true
	}
	return out, nil
}

// Profile fetches the profile and contest history concurrently. A failed
// contest fetch degrades to DefaultContestHistory; a failed profile fetch
// fails the call.
func (s *Service) Profile(ctx context.Context, username string) (ProfileResult, error) {
	var (
		profile leetcode.Profile
		contest leetcode.ContestHistory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetUserProfile(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		contest, err = s.profiles.GetContestHistory(gctx, username)
		if err != nil {
			logging.L(ctx).Warn("contest history unavailable, using defaults",
				zap.String("username", username),
				zap.Error(err),
			)
			contest = leetcode.DefaultContestHistory()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProfileResult{}, err
	}

	return ProfileResult{
		Profile:        profile,
		Contest:        contest,
		AcceptanceRate: acceptanceRate(profile.Solved.All),
	}, nil
}

func acceptanceRate(solved int) int {
	if solved <= 0 {
		return 0
	}
	return int(math.Round(float64(solved) / (float64(solved) * 1.8) * 100))
}
