package domain

import "encoding/json"

// QuestionType discriminates the question payload on the wire.
type QuestionType string

const (
	QuestionShowWord       QuestionType = "show_word"
	QuestionFlashcard      QuestionType = "flashcard"
	QuestionTyping         QuestionType = "typing"
	QuestionFillGaps       QuestionType = "fill_gaps"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
)

// QuestionTypes lists every activity kind in the order the factory draws them.
var QuestionTypes = []QuestionType{
	QuestionShowWord,
	QuestionFlashcard,
	QuestionTyping,
	QuestionFillGaps,
	QuestionMultipleChoice,
	QuestionTrueFalse,
}

// QuestionPayload is the materialized prompt delivered to clients. It is a
// tagged variant: which fields are meaningful depends on Type. The canonical
// answer is a string for every type except true_false, where it is a boolean;
// both share the "answer" key on the wire.
type QuestionPayload struct {
	Type   QuestionType `json:"type"`
	WordID string       `json:"word_id,omitempty"`
	Prompt string       `json:"prompt"`

	Answer     string `json:"-"`
	BoolAnswer bool   `json:"-"`

	// typing and fill_gaps: which language the answer is expected in.
	AnswerLanguage string `json:"answer_language,omitempty"`
	// fill_gaps: the unmasked source side.
	Translation string `json:"translation,omitempty"`
	// true_false: the translation shown next to the prompt.
	ShownTranslation string `json:"shown_translation,omitempty"`
	// multiple_choice: shuffled options, always containing the answer.
	Options []string `json:"options,omitempty"`

	Image *WordImage `json:"image,omitempty"`
}

type questionPayloadWire struct {
	Type             QuestionType    `json:"type"`
	WordID           string          `json:"word_id,omitempty"`
	Prompt           string          `json:"prompt"`
	Answer           json.RawMessage `json:"answer"`
	AnswerLanguage   string          `json:"answer_language,omitempty"`
	Translation      string          `json:"translation,omitempty"`
	ShownTranslation string          `json:"shown_translation,omitempty"`
	Options          []string        `json:"options,omitempty"`
	Image            *WordImage      `json:"image,omitempty"`
}

// MarshalJSON writes the answer as a boolean for true_false and a string
// otherwise, matching the frame format clients consume.
func (p QuestionPayload) MarshalJSON() ([]byte, error) {
	var answer json.RawMessage
	var err error
	if p.Type == QuestionTrueFalse {
		answer, err = json.Marshal(p.BoolAnswer)
	} else {
		answer, err = json.Marshal(p.Answer)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionPayloadWire{
		Type:             p.Type,
		WordID:           p.WordID,
		Prompt:           p.Prompt,
		Answer:           answer,
		AnswerLanguage:   p.AnswerLanguage,
		Translation:      p.Translation,
		ShownTranslation: p.ShownTranslation,
		Options:          p.Options,
		Image:            p.Image,
	})
}

func (p *QuestionPayload) UnmarshalJSON(data []byte) error {
	var w questionPayloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Type = w.Type
	p.WordID = w.WordID
	p.Prompt = w.Prompt
	p.AnswerLanguage = w.AnswerLanguage
	p.Translation = w.Translation
	p.ShownTranslation = w.ShownTranslation
	p.Options = w.Options
	p.Image = w.Image
	if len(w.Answer) == 0 {
		return nil
	}
	if w.Type == QuestionTrueFalse {
		return json.Unmarshal(w.Answer, &p.BoolAnswer)
	}
	return json.Unmarshal(w.Answer, &p.Answer)
}
