package memory_test

import (
	"context"
	"testing"
	"time"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/infra/memory"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sess := domain.Session{ID: "s1", PIN: "123456", Status: domain.StatusLobby}
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	sess.Status = domain.StatusRunning
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("resave session failed: %v", err)
	}
	got, ok := store.Session("s1")
	if !ok || got.Status != domain.StatusRunning {
		t.Fatalf("unexpected session: %+v", got)
	}

	questions := []domain.Question{
		{SessionID: "s1", Index: 1, Payload: domain.QuestionPayload{Type: domain.QuestionTyping, Answer: "casa"}},
		{SessionID: "s1", Index: 2, Payload: domain.QuestionPayload{Type: domain.QuestionFlashcard, Answer: "manzana"}},
	}
	if err := store.SaveQuestions(ctx, "s1", questions); err != nil {
		t.Fatalf("save questions failed: %v", err)
	}
	if got := store.Questions("s1"); len(got) != 2 || got[1].Index != 2 {
		t.Fatalf("unexpected questions: %+v", got)
	}

	p := domain.Participant{ID: "p1", SessionID: "s1", DisplayName: "Sally S.", JoinedAt: time.Now()}
	if err := store.SaveParticipant(ctx, p); err != nil {
		t.Fatalf("save participant failed: %v", err)
	}
	p.Score = 160
	if err := store.SaveParticipant(ctx, p); err != nil {
		t.Fatalf("resave participant failed: %v", err)
	}
	gotP, ok := store.Participant("p1")
	if !ok || gotP.Score != 160 {
		t.Fatalf("unexpected participant: %+v", gotP)
	}
}

func TestSaveAnswerRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	answer := domain.Answer{ParticipantID: "p1", SessionID: "s1", QuestionIndex: 1, IsCorrect: true}
	if err := store.SaveAnswer(ctx, answer); err != nil {
		t.Fatalf("save answer failed: %v", err)
	}
	if err := store.SaveAnswer(ctx, answer); err != domain.ErrAlreadyAnswered {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	// A different question for the same participant is fine.
	answer.QuestionIndex = 2
	if err := store.SaveAnswer(ctx, answer); err != nil {
		t.Fatalf("save answer failed: %v", err)
	}
	if got := store.AnswerCount(); got != 2 {
		t.Fatalf("expected 2 answers, got %d", got)
	}
}

func TestPinReservation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	ok, err := store.TryReserve(ctx, "123456")
	if err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}
	ok, err = store.TryReserve(ctx, "123456")
	if err != nil || ok {
		t.Fatalf("second reserve should fail: ok=%v err=%v", ok, err)
	}
	if err := store.Release(ctx, "123456"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err = store.TryReserve(ctx, "123456")
	if err != nil || !ok {
		t.Fatalf("reserve after release: ok=%v err=%v", ok, err)
	}
}

func TestDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	dir := memory.NewDirectory(
		map[string][]string{"class-1": {"teacher-1"}},
		map[string][]string{"class-1": {"student-1"}},
	)

	owns, err := dir.OwnsClass(ctx, "teacher-1", "class-1")
	if err != nil || !owns {
		t.Fatalf("expected ownership, got owns=%v err=%v", owns, err)
	}
	owns, err = dir.OwnsClass(ctx, "teacher-2", "class-1")
	if err != nil || owns {
		t.Fatalf("expected no ownership, got owns=%v err=%v", owns, err)
	}
	if _, err := dir.OwnsClass(ctx, "teacher-1", "class-missing"); err != domain.ErrClassNotFound {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}

	enrolled, err := dir.IsEnrolled(ctx, "student-1", "class-1")
	if err != nil || !enrolled {
		t.Fatalf("expected enrollment, got enrolled=%v err=%v", enrolled, err)
	}
	enrolled, err = dir.IsEnrolled(ctx, "student-2", "class-1")
	if err != nil || enrolled {
		t.Fatalf("expected no enrollment, got enrolled=%v err=%v", enrolled, err)
	}
}

func TestStaticWordLoader(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewStaticWordLoader(map[string][]domain.Word{
		"set-1": {{ID: "w1", SetID: "set-1", Word: "apple", Translation: "manzana"}},
		"set-2": {{ID: "w2", SetID: "set-2", Word: "house", Translation: "casa"}},
	})

	if err := loader.ResolveSets(ctx, []string{"set-1", "set-2"}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := loader.ResolveSets(ctx, []string{"set-1", "set-9"}); err != domain.ErrVocabNotFound {
		t.Fatalf("expected ErrVocabNotFound, got %v", err)
	}

	words, err := loader.LoadWords(ctx, []string{"set-2", "set-1"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(words) != 2 || words[0].ID != "w2" || words[1].ID != "w1" {
		t.Fatalf("expected request-order concatenation, got %+v", words)
	}
}
