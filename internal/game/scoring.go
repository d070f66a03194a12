package game

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"live-practice-service/internal/domain"
)

const (
	basePoints            = 100
	speedBonusCeiling     = 50
	latencyBucketMS       = 400
	streakBonusMultiplier = 10
)

// ScoreResult is the outcome of scoring one submission.
type ScoreResult struct {
	IsCorrect bool
	Delta     int
	NewStreak int
	LatencyMS int
}

// ScoreFunc computes the score delta from correctness, latency, and the
// participant's streak before this answer.
type ScoreFunc func(isCorrect bool, latencyMS, streak int) ScoreResult

// scorers keeps the formula pluggable per mode without changing call sites.
// FAST and STREAKY currently alias the standard formula.
var scorers = map[domain.ScoringMode]ScoreFunc{
	domain.ScoringStandard: standardScore,
	domain.ScoringFast:     standardScore,
	domain.ScoringStreaky:  standardScore,
}

// ScorerFor returns the scoring function for a mode, falling back to STANDARD.
func ScorerFor(mode domain.ScoringMode) ScoreFunc {
	if fn, ok := scorers[mode]; ok {
		return fn
	}
	return standardScore
}

func standardScore(isCorrect bool, latencyMS, streak int) ScoreResult {
	if !isCorrect {
		return ScoreResult{IsCorrect: false, Delta: 0, NewStreak: 0, LatencyMS: latencyMS}
	}
	speedBonus := speedBonusCeiling - latencyMS/latencyBucketMS
	if speedBonus < 0 {
		speedBonus = 0
	}
	newStreak := streak + 1
	return ScoreResult{
		IsCorrect: true,
		Delta:     basePoints + speedBonus + streakBonusMultiplier*newStreak,
		NewStreak: newStreak,
		LatencyMS: latencyMS,
	}
}

// CheckAnswer compares a submitted answer against the question's expected
// answer under type-specific rules: boolean cast for true_false, raw string
// equality for multiple_choice, and normalized string equality otherwise.
func CheckAnswer(payload domain.QuestionPayload, submitted any) bool {
	switch payload.Type {
	case domain.QuestionTrueFalse:
		actual, ok := toBool(submitted)
		return ok && actual == payload.BoolAnswer
	case domain.QuestionMultipleChoice:
		actual, ok := submitted.(string)
		return ok && actual == payload.Answer
	default:
		actual, ok := submitted.(string)
		return ok && normalizeText(actual) == normalizeText(payload.Answer)
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	default:
		return false, false
	}
}

// normalizeText applies Unicode NFKD, casefolding, and trimming so that
// "Café " and "café" compare equal.
func normalizeText(s string) string {
	return strings.TrimSpace(cases.Fold().String(norm.NFKD.String(s)))
}
