package game_test

import (
	"testing"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
)

func TestStandardScoreFormula(t *testing.T) {
	score := game.ScorerFor(domain.ScoringStandard)

	cases := []struct {
		name      string
		isCorrect bool
		latencyMS int
		streak    int
		wantDelta int
		wantStrk  int
	}{
		{"instant first correct", true, 0, 0, 160, 1},
		{"two seconds in", true, 2000, 0, 155, 1},
		{"bucket boundary", true, 399, 0, 160, 1},
		{"next bucket", true, 400, 0, 159, 1},
		{"bonus floor", true, 20000, 0, 110, 1},
		{"past the floor", true, 60000, 0, 110, 1},
		{"third in a row", true, 2000, 2, 175, 3},
		{"wrong resets streak", false, 1000, 5, 0, 0},
	}
	for _, tc := range cases {
		got := score(tc.isCorrect, tc.latencyMS, tc.streak)
		if got.Delta != tc.wantDelta {
			t.Errorf("%s: delta = %d, want %d", tc.name, got.Delta, tc.wantDelta)
		}
		if got.NewStreak != tc.wantStrk {
			t.Errorf("%s: streak = %d, want %d", tc.name, got.NewStreak, tc.wantStrk)
		}
		if got.IsCorrect != tc.isCorrect {
			t.Errorf("%s: isCorrect = %v, want %v", tc.name, got.IsCorrect, tc.isCorrect)
		}
	}
}

func TestScorerForAliasesAndFallback(t *testing.T) {
	base := game.ScorerFor(domain.ScoringStandard)(true, 1000, 0)
	for _, mode := range []domain.ScoringMode{domain.ScoringFast, domain.ScoringStreaky, "BOGUS"} {
		got := game.ScorerFor(mode)(true, 1000, 0)
		if got != base {
			t.Errorf("mode %s: got %+v, want %+v", mode, got, base)
		}
	}
}

func TestCheckAnswerTyping(t *testing.T) {
	payload := domain.QuestionPayload{Type: domain.QuestionTyping, Answer: "Café"}

	for _, submitted := range []string{"Café", "café", "  CAFÉ  ", "Café"} {
		if !game.CheckAnswer(payload, submitted) {
			t.Errorf("expected %q to match %q", submitted, payload.Answer)
		}
	}
	if game.CheckAnswer(payload, "cafes") {
		t.Errorf("expected %q to be rejected", "cafes")
	}
	if game.CheckAnswer(payload, 42) {
		t.Errorf("expected non-string submission to be rejected")
	}
}

func TestCheckAnswerMultipleChoiceIsExact(t *testing.T) {
	payload := domain.QuestionPayload{Type: domain.QuestionMultipleChoice, Answer: "casa"}

	if !game.CheckAnswer(payload, "casa") {
		t.Fatalf("expected exact option to match")
	}
	// Options are echoed back verbatim, so comparison stays raw.
	if game.CheckAnswer(payload, "Casa") {
		t.Fatalf("expected case-mismatched option to be rejected")
	}
	if game.CheckAnswer(payload, " casa ") {
		t.Fatalf("expected padded option to be rejected")
	}
}

func TestCheckAnswerTrueFalse(t *testing.T) {
	payload := domain.QuestionPayload{Type: domain.QuestionTrueFalse, BoolAnswer: true}

	if !game.CheckAnswer(payload, true) {
		t.Fatalf("expected bool true to match")
	}
	if !game.CheckAnswer(payload, "true") {
		t.Fatalf("expected string cast to match")
	}
	if game.CheckAnswer(payload, false) {
		t.Fatalf("expected false to be rejected")
	}
	if game.CheckAnswer(payload, "yes") {
		t.Fatalf("expected unparseable string to be rejected")
	}
}
