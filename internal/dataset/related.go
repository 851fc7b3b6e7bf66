package dataset

import (
	"sort"
	"strings"
	"unicode"

	"dsacoach-gateway/internal/cache"
)

const maxRelated = 10

// LinkBase is prefixed to a slug when a record carries no link of its own.
const LinkBase = "https://leetcode.com/problems/"

type scored struct {
	problem *Problem
	score   int
}

// FindRelated ranks catalog problems related to slug.
//
// When slug resolves to a record, the result carries that record's curated
// similar problems plus up to ten other records ordered by how many topics
// they share with it. Otherwise the slug is tokenized and every record is
// scored by token containment in its topics (+2 each) and name (+1), and the
// result is flagged IsFallback. Ties keep catalog order. The whole result is
// memoized under "related:<slug>"; callers always get their own copy.
func (e *Engine) FindRelated(slug string) RelatedResult {
	key := "related:" + slug
	if cached, ok := cache.Lookup[RelatedResult](e.cache, key); ok {
		return cached.clone()
	}

	problems := e.Load()

	var result RelatedResult
	if match := e.find(slug); match != nil {
		result = RelatedResult{
			Problem: ProblemInfo{
				Name:       match.Name,
				Slug:       match.Slug,
				Difficulty: match.Difficulty,
				Topics:     match.Topics,
			},
			SimilarProblems: match.SimilarProblems,
			TopicRelated:    project(rankBySharedTopics(problems, match)),
		}
	} else {
		result = RelatedResult{
			Problem: ProblemInfo{
				Name:       titleFromSlug(slug),
				Slug:       slug,
				Difficulty: DifficultyUnknown,
				Topics:     []string{AutoMatchedTopic},
			},
			TopicRelated: project(rankByTokens(problems, tokenize(slug))),
			IsFallback:   true,
		}
	}
	if result.SimilarProblems == nil {
		result.SimilarProblems = map[string][]ProblemRef{}
	}

	e.cache.Set(key, result)
	return result.clone()
}

// rankBySharedTopics counts, for every record with a different slug, how many
// of its topics also appear on match.
func rankBySharedTopics(problems []Problem, match *Problem) []scored {
	want := make(map[string]struct{}, len(match.Topics))
	for _, t := range match.Topics {
		want[t] = struct{}{}
	}

	var candidates []scored
	for i := range problems {
		p := &problems[i]
		if p.Slug == match.Slug {
			continue
		}
		shared := 0
		for _, t := range p.Topics {
			if _, ok := want[t]; ok {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{problem: p, score: shared})
		}
	}
	return top(candidates)
}

// rankByTokens scores +2 for every topic containing any token and +1 when the
// name contains any token.
func rankByTokens(problems []Problem, tokens []string) []scored {
	if len(tokens) == 0 {
		return nil
	}

	var candidates []scored
	for i := range problems {
		p := &problems[i]
		score := 0
		for _, t := range p.Topics {
			if containsAny(strings.ToLower(t), tokens) {
				score += 2
			}
		}
		if containsAny(strings.ToLower(p.Name), tokens) {
			score++
		}
		if score > 0 {
			candidates = append(candidates, scored{problem: p, score: score})
		}
	}
	return top(candidates)
}

// top sorts by descending score, keeping catalog order among ties, and
// truncates to maxRelated.
func top(candidates []scored) []scored {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxRelated {
		candidates = candidates[:maxRelated]
	}
	return candidates
}

func project(ranked []scored) []RelatedProblem {
	out := make([]RelatedProblem, 0, len(ranked))
	for _, s := range ranked {
		p := s.problem
		link := p.Link
		if link == "" {
			link = LinkBase + p.Slug + "/"
		}
		out = append(out, RelatedProblem{
			Name:       p.Name,
			Slug:       p.Slug,
			Platform:   p.Platform,
			Difficulty: p.Difficulty,
			Topics:     p.Topics,
			Link:       link,
		})
	}
	return out
}

// tokenize lower-cases slug, turns every run of non-alphanumerics into a
// separator and keeps tokens longer than two characters.
func tokenize(slug string) []string {
	fields := strings.FieldsFunc(strings.ToLower(slug), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// titleFromSlug turns "longest-common-prefix" into "Longest Common Prefix".
func titleFromSlug(slug string) string {
	runes := []rune(strings.ReplaceAll(slug, "-", " "))
	prevWord := false
	for i, r := range runes {
		isWord := r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
		if isWord && !prevWord {
			runes[i] = unicode.ToUpper(r)
		}
		prevWord = isWord
	}
	return string(runes)
}
