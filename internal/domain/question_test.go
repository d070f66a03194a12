package domain_test

import (
	"encoding/json"
	"testing"

	"live-practice-service/internal/domain"
)

func TestQuestionPayloadAnswerKey(t *testing.T) {
	tf := domain.QuestionPayload{Type: domain.QuestionTrueFalse, Prompt: "casa", ShownTranslation: "house", BoolAnswer: true}
	data, err := json.Marshal(tf)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v, ok := wire["answer"].(bool); !ok || !v {
		t.Fatalf("true_false answer should be a bool, got %v", wire["answer"])
	}

	typing := domain.QuestionPayload{Type: domain.QuestionTyping, Prompt: "house", Answer: "casa"}
	data, err = json.Marshal(typing)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v, ok := wire["answer"].(string); !ok || v != "casa" {
		t.Fatalf("typing answer should be a string, got %v", wire["answer"])
	}

	var back domain.QuestionPayload
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if back.Answer != "casa" || back.Type != domain.QuestionTyping {
		t.Fatalf("round trip lost fields: %+v", back)
	}
}
