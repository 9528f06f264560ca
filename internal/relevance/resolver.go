// Package relevance holds the single rule that turns a notice's heuristic and
// AI scores into the score used for ranking, bucketing and display.
package relevance

import "github.com/fadilmartias/notice-radar/internal/model"

const (
	MinScore = 0
	MaxScore = 10
)

// SQLExpr is Effective rendered for the notice store. Queries that filter,
// group or order by score must use it instead of a raw column.
const SQLExpr = "COALESCE(llm_score, relevance)"

// Effective returns the AI score when one exists, otherwise the heuristic score.
func Effective(n model.Notice) int {
	if n.LLMScore != nil {
		return Clamp(*n.LLMScore)
	}
	return Clamp(n.Relevance)
}

// IsAI reports whether Effective is backed by an AI evaluation.
func IsAI(n model.Notice) bool {
	return n.LLMScore != nil
}

func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
