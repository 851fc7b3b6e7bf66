package leetcode

// Solved counts accepted problems by difficulty.
type Solved struct {
	All    int `json:"all"`
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// TopicCount is LeetCode's own per-tag solved count.
type TopicCount struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Solved int    `json:"solved"`
}

type Calendar struct {
	Streak             int    `json:"streak"`
	TotalActiveDays    int    `json:"totalActiveDays"`
	SubmissionCalendar string `json:"submissionCalendar"`
}

// Profile is the flattened public profile of a user.
type Profile struct {
	Username   string       `json:"username"`
	RealName   string       `json:"realName"`
	Ranking    int          `json:"ranking"`
	Reputation int          `json:"reputation"`
	StarRating float64      `json:"starRating"`
	Solved     Solved       `json:"solved"`
	TopicStats []TopicCount `json:"topicStats"`
	Calendar   Calendar     `json:"calendar"`
}

type ContestRanking struct {
	AttendedContestsCount int     `json:"attendedContestsCount"`
	Rating                float64 `json:"rating"`
	GlobalRanking         int     `json:"globalRanking"`
	TopPercentage         float64 `json:"topPercentage"`
}

type ContestEntry struct {
	Contest string `json:"contest"`
	Date    string `json:"date"`
	Rating  int    `json:"rating"`
	Ranking int    `json:"ranking"`
}

type ContestHistory struct {
	Current ContestRanking `json:"current"`
	History []ContestEntry `json:"history"`
}

// DefaultContestHistory is reported for users who never entered a contest
// or whose contest data could not be fetched.
func DefaultContestHistory() ContestHistory {
	return ContestHistory{
		Current: ContestRanking{TopPercentage: 100},
		History: []ContestEntry{},
	}
}

// wire shapes

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse[T any] struct {
	Data   *T `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type tagCount struct {
	TagName        string `json:"tagName"`
	TagSlug        string `json:"tagSlug"`
	ProblemsSolved int    `json:"problemsSolved"`
}

type profileData struct {
	MatchedUser *struct {
		Username string `json:"username"`
		Profile  *struct {
			RealName   string  `json:"realName"`
			Ranking    int     `json:"ranking"`
			Reputation int     `json:"reputation"`
			StarRating float64 `json:"starRating"`
		} `json:"profile"`
		SubmitStatsGlobal struct {
			AcSubmissionNum []struct {
				Difficulty string `json:"difficulty"`
				Count      int    `json:"count"`
			} `json:"acSubmissionNum"`
		} `json:"submitStatsGlobal"`
		UserCalendar     *Calendar `json:"userCalendar"`
		TagProblemCounts *struct {
			Advanced     []tagCount `json:"advanced"`
			Intermediate []tagCount `json:"intermediate"`
			Fundamental  []tagCount `json:"fundamental"`
		} `json:"tagProblemCounts"`
	} `json:"matchedUser"`
}

type contestData struct {
	UserContestRanking *struct {
		AttendedContestsCount int      `json:"attendedContestsCount"`
		Rating                float64  `json:"rating"`
		GlobalRanking         int      `json:"globalRanking"`
		TopPercentage         *float64 `json:"topPercentage"`
	} `json:"userContestRanking"`
	UserContestRankingHistory []struct {
		Contest struct {
			Title     string `json:"title"`
			StartTime int64  `json:"startTime"`
		} `json:"contest"`
		Rating  float64 `json:"rating"`
		Ranking int     `json:"ranking"`
	} `json:"userContestRankingHistory"`
}
