package memory

import (
	"context"
	"sync"

	"live-practice-service/internal/domain"
)

// Store is an in-memory persistence adapter implementing game.Store and
// game.PinStore. It backs tests and the standalone dev mode; durable
// deployments use the postgres store.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]domain.Session
	questions    map[string][]domain.Question
	participants map[string]domain.Participant
	answers      map[answerKey]domain.Answer
	pins         map[string]struct{}
}

type answerKey struct {
	participantID string
	questionIndex int
}

func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]domain.Session),
		questions:    make(map[string][]domain.Question),
		participants: make(map[string]domain.Participant),
		answers:      make(map[answerKey]domain.Answer),
		pins:         make(map[string]struct{}),
	}
}

func (s *Store) SaveSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Store) SaveQuestions(_ context.Context, sessionID string, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[sessionID] = append([]domain.Question(nil), questions...)
	return nil
}

func (s *Store) SaveParticipant(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participant.ID] = participant
	return nil
}

func (s *Store) SaveAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := answerKey{answer.ParticipantID, answer.QuestionIndex}
	if _, exists := s.answers[key]; exists {
		return domain.ErrAlreadyAnswered
	}
	s.answers[key] = answer
	return nil
}

// Session returns the stored session row, for tests and state rebuilds.
func (s *Store) Session(id string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Questions returns a session's stored question rows.
func (s *Store) Questions(sessionID string) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Question(nil), s.questions[sessionID]...)
}

// Participant returns a stored participant row.
func (s *Store) Participant(id string) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[id]
	return participant, ok
}

// AnswerCount reports how many answers have been stored.
func (s *Store) AnswerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// LoadActiveSessions returns every stored session that has not ended,
// implementing game.Loader for runtime rebuilds.
func (s *Store) LoadActiveSessions(_ context.Context) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []domain.Session
	for _, session := range s.sessions {
		if session.Status != domain.StatusEnded {
			active = append(active, session)
		}
	}
	return active, nil
}

func (s *Store) LoadQuestions(_ context.Context, sessionID string) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Question(nil), s.questions[sessionID]...), nil
}

func (s *Store) LoadParticipants(_ context.Context, sessionID string) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Participant
	for _, p := range s.participants {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) LoadAnswers(_ context.Context, sessionID string) ([]domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Answer
	for _, a := range s.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// TryReserve implements game.PinStore with a local pin set.
func (s *Store) TryReserve(_ context.Context, pin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.pins[pin]; taken {
		return false, nil
	}
	s.pins[pin] = struct{}{}
	return true, nil
}

func (s *Store) Release(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pins, pin)
	return nil
}
