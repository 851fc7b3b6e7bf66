package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/leetcode"
	"dsacoach-gateway/internal/llm"
)

type recordingGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *recordingGenerator) Provider() string { return "fake" }

func (g *recordingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

type fakeProfiles struct {
	profile    leetcode.Profile
	profileErr error
	contest    leetcode.ContestHistory
	contestErr error
}

func (f *fakeProfiles) GetUserProfile(context.Context, string) (leetcode.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeProfiles) GetContestHistory(context.Context, string) (leetcode.ContestHistory, error) {
	return f.contest, f.contestErr
}

func newService(gen llm.Generator, profiles ProfileSource) *Service {
	rc := cache.NewMemoryResponseCache(cache.NewExpiringCache(cache.DomainAI, 50, 10*time.Minute))
	return NewService(llm.NewCachedGenerator(gen, rc, 0), profiles)
}

func TestAnalyze_ParsesAndCaches(t *testing.T) {
	gen := &recordingGenerator{reply: "```json\n{\"complexity\":{\"time\":\"O(n^2)\",\"space\":\"O(1)\"}}\n```"}
	svc := newService(gen, &fakeProfiles{})
	req := AnalyzeRequest{Code: "for i in a:\n  for j in a: pass", Language: "python", ProblemName: "Two Sum"}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"complexity": map[string]any{"time": "O(n^2)", "space": "O(1)"}}, first)

	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, first["complexity"], second["complexity"])

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "- Problem: Two Sum")
	assert.Contains(t, p, "- Language: python")
	assert.Contains(t, p, "for j in a: pass")
	assert.Contains(t, p, `"bruteForce"`)
}

func TestAnalyze_DifficultyDoesNotAffectKey(t *testing.T) {
	gen := &recordingGenerator{reply: `{"ok":true}`}
	svc := newService(gen, &fakeProfiles{})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Code: "x", Language: "go", ProblemName: "p", Difficulty: "Easy"})
	require.NoError(t, err)
	out, err := svc.Analyze(context.Background(), AnalyzeRequest{Code: "x", Language: "go", ProblemName: "p", Difficulty: "Hard"})
	require.NoError(t, err)

	assert.Equal(t, true, out["cached"])
	assert.Len(t, gen.prompts, 1)
}

func TestAnalyze_UnparsableReply(t *testing.T) {
	gen := &recordingGenerator{reply: "sorry, no JSON today"}
	svc := newService(gen, &fakeProfiles{})

	out, err := svc.Analyze(context.Background(), AnalyzeRequest{Code: "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"raw": "sorry, no JSON today"}, out)
}

func TestAnalyze_GeneratorError(t *testing.T) {
	gen := &recordingGenerator{err: llm.ErrInvalidAPIKey}
	svc := newService(gen, &fakeProfiles{})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Code: "x"})
	assert.ErrorIs(t, err, llm.ErrInvalidAPIKey)
}

func TestPredict_Prompt(t *testing.T) {
	gen := &recordingGenerator{reply: `{"strengths":["Array"]}`}
	svc := newService(gen, &fakeProfiles{})

	top := 22.5
	var req PredictRequest
	req.Username = "alice"
	req.ProfileData.Solved = &leetcode.Solved{All: 180, Easy: 90, Medium: 70, Hard: 20}
	req.ContestData.Current = &PredictContestCurrent{Rating: 1620.42, AttendedContestsCount: 3, TopPercentage: &top}
	req.TopicStats = []PredictTopic{{Topic: "Array", Solved: 95}, {Name: "Hash Table", Solved: 40}}

	out, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []any{"Array"}, out["strengths"])

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "User: alice")
	assert.Contains(t, p, `Problems Solved: {"all":180,"easy":90,"medium":70,"hard":20}`)
	assert.Contains(t, p, "Contest Rating: 1620.42")
	assert.Contains(t, p, "Contests Attended: 3")
	assert.Contains(t, p, "Top Percentage: 22.5%")
	assert.Contains(t, p, "- Array: 95 solved\n- Hash Table: 40 solved")
}

func TestPredict_MissingData(t *testing.T) {
	gen := &recordingGenerator{reply: `{}`}
	svc := newService(gen, &fakeProfiles{})

	_, err := svc.Predict(context.Background(), PredictRequest{Username: "bob"})
	require.NoError(t, err)

	p := gen.prompts[0]
	assert.Contains(t, p, "Problems Solved: {}")
	assert.Contains(t, p, "Contest Rating: N/A")
	assert.Contains(t, p, "Contests Attended: 0")
	assert.Contains(t, p, "Top Percentage: N/A%")
	assert.False(t, strings.Contains(p, "%!"), "prompt has a formatting error")
}

func TestPredict_KeyIgnoresTopicStats(t *testing.T) {
	gen := &recordingGenerator{reply: `{"a":1}`}
	svc := newService(gen, &fakeProfiles{})

	req := PredictRequest{Username: "alice", TopicStats: []PredictTopic{{Topic: "Array", Solved: 1}}}
	_, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)

	req.TopicStats = nil
	out, err := svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, true, out["cached"])

	req.Username = "carol"
	out, err = svc.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, out["cached"])
}

func TestProfile(t *testing.T) {
	profiles := &fakeProfiles{
		profile: leetcode.Profile{Username: "alice", Solved: leetcode.Solved{All: 180}},
		contest: leetcode.ContestHistory{Current: leetcode.ContestRanking{Rating: 1600, TopPercentage: 20}},
	}
	svc := newService(&recordingGenerator{}, profiles)

	res, err := svc.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, 1600.0, res.Contest.Current.Rating)
	assert.Equal(t, 56, res.AcceptanceRate)
}

func TestProfile_ContestFailureDegrades(t *testing.T) {
	profiles := &fakeProfiles{
		profile:    leetcode.Profile{Username: "alice"},
		contestErr: errors.New("leetcode: API returned 500"),
	}
	svc := newService(&recordingGenerator{}, profiles)

	res, err := svc.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, leetcode.DefaultContestHistory(), res.Contest)
	assert.Equal(t, 0, res.AcceptanceRate)
}

func TestProfile_ProfileFailure(t *testing.T) {
	profiles := &fakeProfiles{profileErr: leetcode.ErrUserNotFound}
	svc := newService(&recordingGenerator{}, profiles)

	_, err := svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, leetcode.ErrUserNotFound)
}

func TestAcceptanceRate(t *testing.T) {
	assert.Equal(t, 0, acceptanceRate(0))
	assert.Equal(t, 56, acceptanceRate(1))
	assert.Equal(t, 56, acceptanceRate(500))
}
