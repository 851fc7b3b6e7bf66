package leetcode

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

const profileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { realName ranking reputation starRating }
    submitStatsGlobal { acSubmissionNum { difficulty count } }
    userCalendar { streak totalActiveDays submissionCalendar }
    tagProblemCounts {
      advanced { tagName tagSlug problemsSolved }
      intermediate { tagName tagSlug problemsSolved }
      fundamental { tagName tagSlug problemsSolved }
    }
  }
}`

const contestQuery = `
query userContestRankingInfo($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount rating globalRanking topPercentage
  }
  userContestRankingHistory(username: $username) {
    contest { title startTime }
    rating
    ranking
  }
}`

// GetUserProfile returns the user's public profile. Results are memoized
// under "profile:<username>".
func (c *Client) GetUserProfile(ctx context.Context, username string) (Profile, error) {
	return cached(ctx, c, "profile:"+username, func(ctx context.Context) (Profile, error) {
		data, err := query[profileData](ctx, c, profileQuery, map[string]any{"username": username})
		if err != nil {
			return Profile{}, err
		}
		if data.MatchedUser == nil {
			return Profile{}, fmt.Errorf("leetcode: user %q: %w", username, ErrUserNotFound)
		}
		return flattenProfile(data), nil
	})
}

func flattenProfile(data *profileData) Profile {
	u := data.MatchedUser
	p := Profile{
		Username:   u.Username,
		TopicStats: []TopicCount{},
		Calendar:   Calendar{SubmissionCalendar: "{}"},
	}
	if u.Profile != nil {
		p.RealName = u.Profile.RealName
		p.Ranking = u.Profile.Ranking
		p.Reputation = u.Profile.Reputation
		p.StarRating = u.Profile.StarRating
	}
	for _, s := range u.SubmitStatsGlobal.AcSubmissionNum {
		switch s.Difficulty {
		case "All":
			p.Solved.All = s.Count
		case "Easy":
			p.Solved.Easy = s.Count
		case "Medium":
			p.Solved.Medium = s.Count
		case "Hard":
			p.Solved.Hard = s.Count
		}
	}
	if u.UserCalendar != nil {
		p.Calendar = *u.UserCalendar
	}

	if tags := u.TagProblemCounts; tags != nil {
		for _, level := range [][]tagCount{tags.Fundamental, tags.Intermediate, tags.Advanced} {
			for _, t := range level {
				p.TopicStats = append(p.TopicStats, TopicCount{Name: t.TagName, Slug: t.TagSlug, Solved: t.ProblemsSolved})
			}
		}
	}
	sort.SliceStable(p.TopicStats, func(i, j int) bool {
		return p.TopicStats[i].Solved > p.TopicStats[j].Solved
	})
	return p
}

// GetContestHistory returns the user's contest ranking and rating history.
// Users who never competed get DefaultContestHistory. Results are memoized
// under "contest:<username>".
func (c *Client) GetContestHistory(ctx context.Context, username string) (ContestHistory, error) {
	return cached(ctx, c, "contest:"+username, func(ctx context.Context) (ContestHistory, error) {
		data, err := query[contestData](ctx, c, contestQuery, map[string]any{"username": username})
		if err != nil {
			return ContestHistory{}, err
		}

		out := DefaultContestHistory()
		if r := data.UserContestRanking; r != nil {
			out.Current = ContestRanking{
				AttendedContestsCount: r.AttendedContestsCount,
				Rating:                r.Rating,
				GlobalRanking:         r.GlobalRanking,
				TopPercentage:         100,
			}
			if r.TopPercentage != nil {
				out.Current.TopPercentage = *r.TopPercentage
			}
		}
		for _, e := range data.UserContestRankingHistory {
			out.History = append(out.History, ContestEntry{
				Contest: e.Contest.Title,
				Date:    time.Unix(e.Contest.StartTime, 0).UTC().Format(time.DateOnly),
				Rating:  int(math.Round(e.Rating)),
				Ranking: e.Ranking,
			})
		}
		return out, nil
	})
}
