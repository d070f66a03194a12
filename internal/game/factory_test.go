package game_test

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
)

func testWordPool() []domain.Word {
	return []domain.Word{
		{ID: "w1", SetID: "set-1", Word: "apple", Translation: "manzana"},
		{ID: "w2", SetID: "set-1", Word: "house", Translation: "casa"},
		{ID: "w3", SetID: "set-1", Word: "river", Translation: "río"},
		{ID: "w4", SetID: "set-1", Word: "window", Translation: "ventana"},
		{ID: "w5", SetID: "set-1", Word: "bread", Translation: "pan"},
	}
}

func TestBuildIsDeterministicPerSeed(t *testing.T) {
	first := game.NewQuestionFactory(rand.New(rand.NewSource(42)))
	second := game.NewQuestionFactory(rand.New(rand.NewSource(42)))

	a, err := first.Build(testWordPool(), 30)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	b, err := second.Build(testWordPool(), 30)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different sequences")
	}

	c, err := game.NewQuestionFactory(rand.New(rand.NewSource(43))).Build(testWordPool(), 30)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different seeds produced identical sequences")
	}
}

func TestBuildRequiresWords(t *testing.T) {
	factory := game.NewQuestionFactory(rand.New(rand.NewSource(1)))
	if _, err := factory.Build(nil, 10); err != domain.ErrNoWords {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestBuildPayloadShapes(t *testing.T) {
	factory := game.NewQuestionFactory(rand.New(rand.NewSource(7)))
	payloads, err := factory.Build(testWordPool(), 300)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	seen := map[domain.QuestionType]bool{}
	for _, p := range payloads {
		seen[p.Type] = true
		switch p.Type {
		case domain.QuestionMultipleChoice:
			if len(p.Options) < 2 || len(p.Options) > 4 {
				t.Fatalf("multiple_choice has %d options", len(p.Options))
			}
			found := false
			for _, opt := range p.Options {
				if opt == p.Answer {
					found = true
				}
			}
			if !found {
				t.Fatalf("options %v missing answer %q", p.Options, p.Answer)
			}
		case domain.QuestionFillGaps:
			if !strings.ContainsRune(p.Prompt, '_') {
				t.Fatalf("fill_gaps prompt %q masks nothing", p.Prompt)
			}
			if p.Prompt == p.Answer {
				t.Fatalf("fill_gaps prompt equals answer %q", p.Answer)
			}
			if p.Translation == "" {
				t.Fatalf("fill_gaps missing translation hint")
			}
		case domain.QuestionTrueFalse:
			if p.ShownTranslation == "" {
				t.Fatalf("true_false missing shown translation")
			}
		case domain.QuestionTyping:
			if p.AnswerLanguage != "source" && p.AnswerLanguage != "target" {
				t.Fatalf("typing answer_language = %q", p.AnswerLanguage)
			}
		case domain.QuestionShowWord, domain.QuestionFlashcard:
			if p.Prompt == "" || p.Answer == "" {
				t.Fatalf("%s missing prompt or answer", p.Type)
			}
		}
		if p.WordID == "" {
			t.Fatalf("payload missing word id")
		}
	}
	for _, qt := range domain.QuestionTypes {
		if !seen[qt] {
			t.Fatalf("activity %s never drawn in 300 questions", qt)
		}
	}
}

func TestMultipleChoiceWithSmallPool(t *testing.T) {
	pool := testWordPool()[:2]
	factory := game.NewQuestionFactory(rand.New(rand.NewSource(11)))
	payloads, err := factory.Build(pool, 100)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, p := range payloads {
		if p.Type != domain.QuestionMultipleChoice {
			continue
		}
		// One distractor available, so exactly two options including the answer.
		if len(p.Options) != 2 {
			t.Fatalf("expected 2 options, got %v", p.Options)
		}
	}
}

func TestFillGapsMasksSingleLetterWord(t *testing.T) {
	pool := []domain.Word{{ID: "w1", SetID: "set-1", Word: "a", Translation: "un"}}
	factory := game.NewQuestionFactory(rand.New(rand.NewSource(3)))
	payloads, err := factory.Build(pool, 50)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, p := range payloads {
		if p.Type != domain.QuestionFillGaps {
			continue
		}
		if !strings.ContainsRune(p.Prompt, '_') {
			t.Fatalf("single-letter word left unmasked: %q", p.Prompt)
		}
	}
}
