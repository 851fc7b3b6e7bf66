package dataset

import (
	"math"
	"sort"
	"strings"
)

const (
	strongMastery = 60
	weakMastery   = 40
	maxClassified = 5
)

// TopicStats computes per-topic mastery for the given solved identifiers.
//
// Each identifier is resolved with FindBySlug; unknown ones are skipped, and
// a record reached through several identifiers counts once. Mastery is
// round(100*solved/total) where total is the topic's catalog-wide count, or
// solved itself for a topic the catalog does not know. Results are ordered by
// solved count, descending.
func (e *Engine) TopicStats(solved []string) []TopicStat {
	e.Load()

	seen := make(map[*Problem]struct{}, len(solved))
	index := make(map[string]int)
	var stats []TopicStat

	for _, slug := range solved {
		p := e.find(slug)
		if p == nil {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		for _, topic := range p.Topics {
			i, ok := index[topic]
			if !ok {
				i = len(stats)
				index[topic] = i
				stats = append(stats, TopicStat{Topic: topic})
			}
			stats[i].Solved++
			switch strings.ToLower(p.Difficulty) {
			case "easy":
				stats[i].Breakdown.Easy++
			case "medium":
				stats[i].Breakdown.Medium++
			case "hard":
				stats[i].Breakdown.Hard++
			}
		}
	}

	for i := range stats {
		total, ok := e.topicTotals[stats[i].Topic]
		if !ok || total == 0 {
			total = stats[i].Solved
		}
		stats[i].Total = total
		stats[i].Mastery = mastery(stats[i].Solved, total)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Solved > stats[j].Solved
	})
	if stats == nil {
		stats = []TopicStat{}
	}
	return stats
}

func mastery(solved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(solved) / float64(total) * 100))
}

// Summarize wraps TopicStats with the strong/weak split.
//
// Strong topics have mastery >= 60. Weak topics have mastery < 40, plus every
// catalog topic the user has not touched (solved 0, total 1, mastery 0),
// ordered by ascending mastery. Both lists hold at most five entries.
func (e *Engine) Summarize(solved []string) TopicSummary {
	stats := e.TopicStats(solved)
	all := e.AllTopics()

	strong := make([]TopicStat, 0, maxClassified)
	for _, s := range stats {
		if len(strong) == maxClassified {
			break
		}
		if s.Mastery >= strongMastery {
			strong = append(strong, s)
		}
	}

	touched := make(map[string]struct{}, len(stats))
	var weak []TopicStat
	for _, s := range stats {
		touched[s.Topic] = struct{}{}
		if s.Mastery < weakMastery {
			weak = append(weak, s)
		}
	}
	for _, topic := range all {
		if _, ok := touched[topic]; ok {
			continue
		}
		weak = append(weak, TopicStat{Topic: topic, Solved: 0, Total: 1, Mastery: 0})
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].Mastery < weak[j].Mastery
	})
	if len(weak) > maxClassified {
		weak = weak[:maxClassified]
	}
	if weak == nil {
		weak = []TopicStat{}
	}

	return TopicSummary{
		TopicStats:   stats,
		StrongTopics: strong,
		WeakTopics:   weak,
		TotalTopics:  len(all),
	}
}
