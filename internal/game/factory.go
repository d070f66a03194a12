package game

import (
	"math/rand"
	"unicode"

	"live-practice-service/internal/domain"
)

// QuestionFactory materializes a session's question sequence from a word
// pool. All randomness flows through the injected RNG so that a fixed seed
// reproduces the exact sequence. Draws are taken in a stable order per
// question: word, activity kind, direction flip, mask shuffle, distractor
// shuffle, option shuffle, substitution draws. The word slice order is part
// of the contract; loaders return words in a deterministic order.
type QuestionFactory struct {
	rng *rand.Rand
}

func NewQuestionFactory(rng *rand.Rand) *QuestionFactory {
	return &QuestionFactory{rng: rng}
}

// Build produces count payloads drawn uniformly from words and activity kinds.
func (f *QuestionFactory) Build(words []domain.Word, count int) ([]domain.QuestionPayload, error) {
	if len(words) == 0 {
		return nil, domain.ErrNoWords
	}
	payloads := make([]domain.QuestionPayload, 0, count)
	for i := 0; i < count; i++ {
		word := words[f.rng.Intn(len(words))]
		activity := domain.QuestionTypes[f.rng.Intn(len(domain.QuestionTypes))]
		payloads = append(payloads, f.buildPayload(word, activity, words))
	}
	return payloads, nil
}

func (f *QuestionFactory) buildPayload(word domain.Word, activity domain.QuestionType, pool []domain.Word) domain.QuestionPayload {
	payload := domain.QuestionPayload{
		Type:   activity,
		WordID: word.ID,
		Image:  word.Image,
	}

	switch activity {
	case domain.QuestionShowWord:
		payload.Prompt = word.Translation
		payload.Answer = word.Word

	case domain.QuestionFlashcard:
		payload.Prompt = word.Word
		payload.Answer = word.Translation

	case domain.QuestionTyping:
		if f.coin() {
			payload.Prompt, payload.Answer = word.Word, word.Translation
			payload.AnswerLanguage = "target"
		} else {
			payload.Prompt, payload.Answer = word.Translation, word.Word
			payload.AnswerLanguage = "source"
		}

	case domain.QuestionFillGaps:
		var source, target string
		if f.coin() {
			source, target = word.Translation, word.Word
			payload.AnswerLanguage = "source"
		} else {
			source, target = word.Word, word.Translation
			payload.AnswerLanguage = "target"
		}
		payload.Prompt = f.maskWord(target)
		payload.Translation = source
		payload.Answer = target

	case domain.QuestionMultipleChoice:
		var answer string
		var distractors []string
		if f.coin() {
			payload.Prompt = word.Word
			answer = word.Translation
			distractors = sameSetValues(pool, word, func(w domain.Word) string { return w.Translation })
		} else {
			payload.Prompt = word.Translation
			answer = word.Word
			distractors = sameSetValues(pool, word, func(w domain.Word) string { return w.Word })
		}
		f.shuffle(distractors)
		if len(distractors) > 3 {
			distractors = distractors[:3]
		}
		options := append(distractors, answer)
		f.shuffle(options)
		payload.Options = options
		payload.Answer = answer

	case domain.QuestionTrueFalse:
		var correct string
		var values []string
		if f.coin() {
			payload.Prompt, correct = word.Word, word.Translation
			values = sameSetValues(pool, word, func(w domain.Word) string { return w.Translation })
		} else {
			payload.Prompt, correct = word.Translation, word.Word
			values = sameSetValues(pool, word, func(w domain.Word) string { return w.Word })
		}
		shown := correct
		if len(values) > 0 && f.coin() {
			shown = values[f.rng.Intn(len(values))]
		}
		payload.ShownTranslation = shown
		payload.BoolAnswer = shown == correct
	}

	return payload
}

func (f *QuestionFactory) coin() bool {
	return f.rng.Intn(2) == 0
}

func (f *QuestionFactory) shuffle(values []string) {
	f.rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

// maskWord replaces letters at roughly half the positions with underscores,
// guaranteeing at least one alphabetic rune is masked when one exists.
func (f *QuestionFactory) maskWord(target string) string {
	masked := []rune(target)
	indices := make([]int, len(masked))
	for i := range indices {
		indices[i] = i
	}
	f.rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	take := len(masked) / 2
	if take == 0 {
		take = 1
	}
	maskedAny := false
	for _, i := range indices[:take] {
		if unicode.IsLetter(masked[i]) {
			masked[i] = '_'
			maskedAny = true
		}
	}
	if !maskedAny {
		for i, r := range masked {
			if unicode.IsLetter(r) {
				masked[i] = '_'
				break
			}
		}
	}
	return string(masked)
}

// sameSetValues collects the chosen side of every other word in the same
// vocabulary set, preserving pool order for deterministic shuffles.
func sameSetValues(pool []domain.Word, word domain.Word, side func(domain.Word) string) []string {
	var values []string
	for _, w := range pool {
		if w.SetID == word.SetID && w.ID != word.ID {
			values = append(values, side(w))
		}
	}
	return values
}
