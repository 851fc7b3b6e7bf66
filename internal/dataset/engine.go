package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/metrics"
)

// Engine answers read-only queries over a problem catalog that is loaded
// once and never modified afterwards.
type Engine struct {
	source Source
	cache  *cache.ExpiringCache
	logger *zap.Logger

	once        sync.Once
	problems    []Problem
	topicTotals map[string]int
	allTopics   []string
}

// NewEngine wires an engine to its catalog source and the dataset cache domain.
// The catalog is not read until Load or the first query.
func NewEngine(source Source, store *cache.ExpiringCache, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source: source,
		cache:  store,
		logger: logger.Named("dataset"),
	}
}

// Load parses the catalog on first call and returns it. A missing or
// malformed catalog leaves the engine with an empty one; it never fails.
func (e *Engine) Load() []Problem {
	e.once.Do(func() {
		problems, err := e.read()
		if err != nil {
			e.logger.Warn("dataset load failed, continuing with empty catalog", zap.Error(err))
			problems = []Problem{}
		} else {
			e.logger.Info("dataset loaded", zap.Int("problems", len(problems)))
		}
		e.index(problems)
		metrics.DatasetProblems.Set(float64(len(problems)))
	})
	return e.problems
}

func (e *Engine) read() ([]Problem, error) {
	if e.source == nil {
		return nil, fmt.Errorf("no catalog source configured")
	}
	raw, err := e.source()
	if err != nil {
		return nil, err
	}
	var problems []Problem
	if err := json.Unmarshal(raw, &problems); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if problems == nil {
		problems = []Problem{}
	}
	return problems, nil
}

// index precomputes catalog-wide topic totals and the sorted topic list.
func (e *Engine) index(problems []Problem) {
	totals := make(map[string]int)
	for _, p := range problems {
		for _, t := range p.Topics {
			totals[t]++
		}
	}
	topics := make([]string, 0, len(totals))
	for t := range totals {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	e.problems = problems
	e.topicTotals = totals
	e.allTopics = topics
}

// Normalize lower-cases text and drops every character outside [a-z0-9], so
// "Two-Sum!!", "two sum" and "twosum" compare equal.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindBySlug returns a copy of the first record whose normalized slug or name
// matches the normalized input. Hits are memoized under "slug:<slug>"; misses
// are not.
func (e *Engine) FindBySlug(slug string) (Problem, bool) {
	p := e.find(slug)
	if p == nil {
		return Problem{}, false
	}
	return p.clone(), true
}

// find returns a pointer into the catalog so callers can compare identity.
func (e *Engine) find(slug string) *Problem {
	key := "slug:" + slug
	if cached, ok := cache.Lookup[*Problem](e.cache, key); ok {
		return cached
	}

	problems := e.Load()
	want := Normalize(slug)
	if want == "" {
		return nil
	}

	for i := range problems {
		p := &problems[i]
		if Normalize(p.Slug) == want || Normalize(p.Name) == want {
			e.cache.Set(key, p)
			return p
		}
	}
	return nil
}

// AllTopics returns every topic in the catalog, deduplicated and sorted.
func (e *Engine) AllTopics() []string {
	e.Load()
	out := make([]string, len(e.allTopics))
	copy(out, e.allTopics)
	return out
}
