package game

import (
	"context"
	"fmt"
	"log"

	"live-practice-service/internal/domain"
)

// Loader reads persisted state back out of the store. The coordinator only
// writes; Loader exists for rebuilding runtime sessions after a restart.
type Loader interface {
	LoadActiveSessions(ctx context.Context) ([]domain.Session, error)
	LoadQuestions(ctx context.Context, sessionID string) ([]domain.Question, error)
	LoadParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
	LoadAnswers(ctx context.Context, sessionID string) ([]domain.Answer, error)
}

// RestoreSessions rebuilds a runtime session for every persisted non-ended
// session and registers it in sessions, so lobbies and in-flight games
// survive a restart. Each restored pin is re-reserved; a reservation that
// reports the pin as taken is fine, the store already knows about it.
func RestoreSessions(ctx context.Context, loader Loader, sessions SessionStore, pins PinStore) (int, error) {
	active, err := loader.LoadActiveSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active sessions: %w", err)
	}

	for _, data := range active {
		questions, err := loader.LoadQuestions(ctx, data.ID)
		if err != nil {
			return 0, fmt.Errorf("load questions for %s: %w", data.ID, err)
		}
		participants, err := loader.LoadParticipants(ctx, data.ID)
		if err != nil {
			return 0, fmt.Errorf("load participants for %s: %w", data.ID, err)
		}
		answers, err := loader.LoadAnswers(ctx, data.ID)
		if err != nil {
			return 0, fmt.Errorf("load answers for %s: %w", data.ID, err)
		}

		sess := NewSession(data)
		sess.Restore(questions, participants, answers)
		sessions.Put(sess)

		if _, err := pins.TryReserve(ctx, data.PIN); err != nil {
			log.Printf("re-reserve pin %s for session %s: %v", data.PIN, data.ID, err)
		}
	}
	return len(active), nil
}
