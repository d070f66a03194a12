package game

import (
	"sync"

	"live-practice-service/internal/domain"
)

// Session is the in-memory runtime for one live game. Its mutex is the
// per-session critical section: every mutating operation serializes through
// it, so different sessions proceed in parallel while each has a single
// logical writer.
type Session struct {
	mu sync.Mutex

	data      domain.Session
	questions []domain.Question
	reg       *registry
	answered  map[answerKey]struct{}
}

type answerKey struct {
	participantID string
	index         int
}

// NewSession wraps persisted session data into a runtime session.
func NewSession(data domain.Session) *Session {
	return &Session{
		data:     data,
		reg:      newRegistry(),
		answered: make(map[answerKey]struct{}),
	}
}

// ID returns the session's identifier without taking the lock; the field is
// immutable after construction.
func (s *Session) ID() string {
	return s.data.ID
}

// Restore reattaches participants and answers, used when rebuilding runtime
// state from the store.
func (s *Session) Restore(questions []domain.Question, participants []domain.Participant, answers []domain.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = questions
	for i := range participants {
		p := participants[i]
		s.reg.insert(&p)
	}
	for _, a := range answers {
		s.answered[answerKey{a.ParticipantID, a.QuestionIndex}] = struct{}{}
	}
}

// questionAt returns the question with the given 1-based index.
func (s *Session) questionAt(index int) (domain.Question, bool) {
	if index < 1 || index > len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[index-1], true
}

// snapshotLocked builds the read view returned by join and state. The caller
// holds the lock.
func (s *Session) snapshotLocked(you *domain.Participant, topK int) domain.StateSnapshot {
	snapshot := domain.StateSnapshot{
		SessionID:          s.data.ID,
		Status:             s.data.Status,
		CurrentQuestionIdx: s.data.CurrentQuestionIdx,
		TotalQuestions:     s.data.TotalQuestions,
		QuestionTimeSec:    s.data.QuestionTimeSec,
		StartedAt:          s.data.CurrentStartedAt,
		DeadlineAt:         s.data.CurrentDeadlineAt,
		Leaderboard:        s.reg.top(topK),
	}
	if you != nil {
		snapshot.You = &domain.YouSnapshot{
			Rank:   s.reg.rank(you),
			Score:  you.Score,
			Streak: you.Streak,
		}
	}
	return snapshot
}
