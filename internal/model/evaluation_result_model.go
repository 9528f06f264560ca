package model

// EvaluationResult is the parsed output of one oracle call.
// Score is always within 0..10 and Reason is never longer than 200 characters.
type EvaluationResult struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}
