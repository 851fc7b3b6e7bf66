package coach

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const analyzePrompt = `You are a DSA engine that returns data ONLY in the required JSON format.
STRICT RULES:
- Do NOT return explanations
- Do NOT return intuition
- Do NOT return approach text
- Do NOT return optimality reasoning
- Output must be pure JSON ONLY
- Do NOT wrap JSON in markdown block like ` + "```json" + `
- Code must be in the same language as the user's code
- Code must be clean and copy-paste ready

INPUT:
- Problem: %s
- Language: %s
- User code: %s

GOAL:
Generate only:
1) Brute force solution code
2) Optimal solution code
3) Time & Space complexity of the USER'S code

OUTPUT FORMAT (REQUIRED):
{
  "bruteForce": {
    "code": "FULL CODE HERE"
  },
  "optimal": {
    "code": "FULL CODE HERE"
  },
  "complexity": {
    "time": "TIME COMPLEXITY OF USER CODE",
    "space": "SPACE COMPLEXITY OF USER CODE"
  }
}
`

const predictPrompt = `You are an expert competitive programming coach. Based on this user's LeetCode profile, generate a personalized improvement plan.

User: %s
Problems Solved: %s
Contest Rating: %s
Contests Attended: %d
Top Percentage: %s%%

Topic Mastery (topic: solved count):
%s

Respond in JSON format:
{
  "strengths": ["<topic 1>", "<topic 2>"],
  "weaknesses": ["<topic 1>", "<topic 2>"],
  "insight": "<2-3 sentence personalized insight like: You are strong in Arrays and Binary Search. Your weakest area is Dynamic Programming. Solving 25 DP problems can increase your contest rating by ~150.>",
  "roadmap": [
    {
      "week": 1,
      "focus": "<topic>",
      "problems": <number>,
      "goal": "<specific goal>"
    }
  ],
  "ratingPrediction": {
    "current": <current_rating_or_0>,
    "predicted30Days": <predicted_rating>,
    "predicted90Days": <predicted_rating>,
    "confidence": "<low/medium/high>"
  },
  "dailyPlan": {
    "problemsPerDay": <number>,
    "contestsPerWeek": <number>,
    "focusHoursPerDay": <number>
  }
}`

func buildAnalyzePrompt(req AnalyzeRequest) string {
	return fmt.Sprintf(analyzePrompt, req.ProblemName, req.Language, req.Code)
}

func buildPredictPrompt(req PredictRequest) string {
	solved := "{}"
	if req.ProfileData.Solved != nil {
		if b, err := json.Marshal(req.ProfileData.Solved); err == nil {
			solved = string(b)
		}
	}

	rating, attended, top := "N/A", 0, "N/A"
	if c := req.ContestData.Current; c != nil {
		if c.Rating != 0 {
			rating = formatNumber(c.Rating)
		}
		attended = c.AttendedContestsCount
		if c.TopPercentage != nil && *c.TopPercentage != 0 {
			top = formatNumber(*c.TopPercentage)
		}
	}

	lines := make([]string, 0, len(req.TopicStats))
	for _, t := range req.TopicStats {
		name := t.Topic
		if name == "" {
			name = t.Name
		}
		lines = append(lines, fmt.Sprintf("- %s: %d solved", name, t.Solved))
	}

	return fmt.Sprintf(predictPrompt, req.Username, solved, rating, attended, top, strings.Join(lines, "\n"))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
