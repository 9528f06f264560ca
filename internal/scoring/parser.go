package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/relevance"
	"github.com/fadilmartias/notice-radar/internal/util"
	"github.com/tidwall/gjson"
)

// MaxReasonLength bounds the justification kept for display.
const MaxReasonLength = 200

var (
	fencePattern  = regexp.MustCompile("```(?:json|JSON)?\\s*")
	scorePattern  = regexp.MustCompile(`"score"\s*:\s*(\d+)`)
	reasonPattern = regexp.MustCompile(`"reason"\s*:\s*"([^"]+)"`)
)

// ParseScoreResponse turns raw oracle output into an EvaluationResult. The
// oracle is asked for {"score": n, "reason": "..."} but may wrap it in a code
// fence or surround it with prose, so parsing degrades in three steps:
// strict JSON, field-by-field pattern match, then score 0 with the raw text
// as reason. It never fails.
func ParseScoreResponse(raw string) model.EvaluationResult {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if result, ok := parseStrict(cleaned); ok {
		return result
	}
	return parseLoose(raw)
}

func parseStrict(s string) (model.EvaluationResult, bool) {
	if s == "" || !gjson.Valid(s) {
		return model.EvaluationResult{}, false
	}
	doc := gjson.Parse(s)
	if !doc.IsObject() {
		return model.EvaluationResult{}, false
	}
	score := doc.Get("score")
	if score.Type != gjson.Number {
		return model.EvaluationResult{}, false
	}
	reason := doc.Get("reason")
	text := ""
	if reason.Type == gjson.String {
		text = reason.String()
	}
	return newResult(int(score.Int()), text), true
}

func parseLoose(raw string) model.EvaluationResult {
	m := scorePattern.FindStringSubmatch(raw)
	if m == nil {
		return newResult(0, raw)
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		// digits overflowing int are still "a very large score"
		score = relevance.MaxScore
	}
	reason := ""
	if r := reasonPattern.FindStringSubmatch(raw); r != nil {
		reason = r[1]
	}
	return newResult(score, reason)
}

func newResult(score int, reason string) model.EvaluationResult {
	return model.EvaluationResult{
		Score:  relevance.Clamp(score),
		Reason: util.Truncate(reason, MaxReasonLength),
	}
}
