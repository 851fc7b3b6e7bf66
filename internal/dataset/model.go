package dataset

import "slices"

// Difficulty labels used by the catalog.
const (
	DifficultyEasy    = "Easy"
	DifficultyMedium  = "Medium"
	DifficultyHard    = "Hard"
	DifficultyUnknown = "Unknown"
)

// AutoMatchedTopic marks a synthesized problem built by the fallback matcher.
const AutoMatchedTopic = "Auto-Matched"

// ProblemRef points at a problem on another platform.
type ProblemRef struct {
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
	Link       string `json:"link,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Problem is one catalog record. Records are read-only once loaded.
type Problem struct {
	Name            string                  `json:"name"`
	Slug            string                  `json:"slug"`
	Difficulty      string                  `json:"difficulty"`
	Topics          []string                `json:"topics"`
	Platform        string                  `json:"platform"`
	Link            string                  `json:"link,omitempty"`
	SimilarProblems map[string][]ProblemRef `json:"similar_problems,omitempty"`
}

// ProblemInfo describes the problem a related-problems query was made for.
type ProblemInfo struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Difficulty string   `json:"difficulty"`
	Topics     []string `json:"topics"`
}

// RelatedProblem is the fixed projection returned for every ranked match.
type RelatedProblem struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Platform   string   `json:"platform"`
	Difficulty string   `json:"difficulty"`
	Topics     []string `json:"topics"`
	Link       string   `json:"link"`
}

// RelatedResult answers FindRelated. IsFallback is set when the slug had no
// catalog record and TopicRelated came from token matching.
type RelatedResult struct {
	Problem         ProblemInfo             `json:"problem"`
	SimilarProblems map[string][]ProblemRef `json:"similar_problems"`
	TopicRelated    []RelatedProblem        `json:"topic_related"`
	IsFallback      bool                    `json:"isFallback"`
}

// Breakdown counts solved problems per difficulty within one topic.
type Breakdown struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// TopicStat is the mastery of a single topic.
type TopicStat struct {
	Topic     string    `json:"topic"`
	Solved    int       `json:"solved"`
	Total     int       `json:"total"`
	Mastery   int       `json:"mastery"`
	Breakdown Breakdown `json:"breakdown"`
}

// TopicSummary is TopicStats plus the strong/weak classification.
type TopicSummary struct {
	TopicStats   []TopicStat `json:"topicStats"`
	StrongTopics []TopicStat `json:"strongTopics"`
	WeakTopics   []TopicStat `json:"weakTopics"`
	TotalTopics  int         `json:"totalTopics"`
}

// clone copies p so callers cannot write through to the catalog.
func (p Problem) clone() Problem {
	p.Topics = slices.Clone(p.Topics)
	p.SimilarProblems = cloneSimilar(p.SimilarProblems)
	return p
}

func (r RelatedResult) clone() RelatedResult {
	r.Problem.Topics = slices.Clone(r.Problem.Topics)
	r.SimilarProblems = cloneSimilar(r.SimilarProblems)
	r.TopicRelated = slices.Clone(r.TopicRelated)
	for i := range r.TopicRelated {
		r.TopicRelated[i].Topics = slices.Clone(r.TopicRelated[i].Topics)
	}
	return r
}

func cloneSimilar(m map[string][]ProblemRef) map[string][]ProblemRef {
	if m == nil {
		return nil
	}
	out := make(map[string][]ProblemRef, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
