package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"live-practice-service/internal/domain"
)

// Store persists live game state with bun. Uniqueness of (participant,
// question), (session, index), (session, user), and (session, display_name)
// is enforced by constraints in the schema, so this instance-local engine has
// a durable backstop.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

type sessionRow struct {
	bun.BaseModel `bun:"table:live_game_sessions"`

	ID              string     `bun:"id,pk"`
	PIN             string     `bun:"pin"`
	HostID          string     `bun:"host_id"`
	HostName        string     `bun:"host_name"`
	ClassID         string     `bun:"class_id"`
	VocabSetIDs     []string   `bun:"vocab_set_ids,array"`
	Status          string     `bun:"status"`
	ScoringMode     string     `bun:"scoring_mode"`
	TotalQuestions  int        `bun:"total_questions"`
	QuestionTimeSec int        `bun:"question_time_sec"`
	CurrentIdx      int        `bun:"current_question_idx"`
	CurrentStarted  *time.Time `bun:"current_started_at"`
	CurrentDeadline *time.Time `bun:"current_deadline_at"`
	StartedAt       *time.Time `bun:"started_at"`
	EndedAt         *time.Time `bun:"ended_at"`
	CreatedAt       time.Time  `bun:"created_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:live_game_questions"`

	SessionID string `bun:"session_id"`
	Index     int    `bun:"index"`
	Payload   []byte `bun:"payload,type:jsonb"`
}

type participantRow struct {
	bun.BaseModel `bun:"table:live_game_participants"`

	ID             string    `bun:"id,pk"`
	SessionID      string    `bun:"session_id"`
	UserID         string    `bun:"user_id,nullzero"`
	DisplayName    string    `bun:"display_name"`
	JoinedAt       time.Time `bun:"joined_at"`
	IsConnected    bool      `bun:"is_connected"`
	Score          int       `bun:"score"`
	Streak         int       `bun:"streak"`
	TotalLatencyMS int       `bun:"total_latency_ms"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:live_game_answers"`

	ParticipantID string    `bun:"participant_id"`
	SessionID     string    `bun:"session_id"`
	QuestionIndex int       `bun:"question_index"`
	IsCorrect     bool      `bun:"is_correct"`
	LatencyMS     int       `bun:"latency_ms"`
	SubmittedAt   time.Time `bun:"submitted_at"`
}

func (s *Store) SaveSession(ctx context.Context, session domain.Session) error {
	row := &sessionRow{
		ID:              session.ID,
		PIN:             session.PIN,
		HostID:          session.HostID,
		HostName:        session.HostName,
		ClassID:         session.ClassID,
		VocabSetIDs:     session.VocabSetIDs,
		Status:          string(session.Status),
		ScoringMode:     string(session.ScoringMode),
		TotalQuestions:  session.TotalQuestions,
		QuestionTimeSec: session.QuestionTimeSec,
		CurrentIdx:      session.CurrentQuestionIdx,
		CurrentStarted:  session.CurrentStartedAt,
		CurrentDeadline: session.CurrentDeadlineAt,
		StartedAt:       session.StartedAt,
		EndedAt:         session.EndedAt,
		CreatedAt:       session.CreatedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("current_question_idx = EXCLUDED.current_question_idx").
		Set("current_started_at = EXCLUDED.current_started_at").
		Set("current_deadline_at = EXCLUDED.current_deadline_at").
		Set("started_at = EXCLUDED.started_at").
		Set("ended_at = EXCLUDED.ended_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) SaveQuestions(ctx context.Context, sessionID string, questions []domain.Question) error {
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		payload, err := json.Marshal(q.Payload)
		if err != nil {
			return fmt.Errorf("marshal question payload: %w", err)
		}
		rows = append(rows, questionRow{SessionID: sessionID, Index: q.Index, Payload: payload})
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*questionRow)(nil)).
			Where("session_id = ?", sessionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func (s *Store) SaveParticipant(ctx context.Context, participant domain.Participant) error {
	row := &participantRow{
		ID:             participant.ID,
		SessionID:      participant.SessionID,
		UserID:         participant.UserID,
		DisplayName:    participant.DisplayName,
		JoinedAt:       participant.JoinedAt,
		IsConnected:    participant.IsConnected,
		Score:          participant.Score,
		Streak:         participant.Streak,
		TotalLatencyMS: participant.TotalLatencyMS,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("is_connected = EXCLUDED.is_connected").
		Set("score = EXCLUDED.score").
		Set("streak = EXCLUDED.streak").
		Set("total_latency_ms = EXCLUDED.total_latency_ms").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save participant: %w", err)
	}
	return nil
}

// SaveAnswer inserts at most one row per (participant, question); a conflict
// maps to domain.ErrAlreadyAnswered without mutation.
func (s *Store) SaveAnswer(ctx context.Context, answer domain.Answer) error {
	row := &answerRow{
		ParticipantID: answer.ParticipantID,
		SessionID:     answer.SessionID,
		QuestionIndex: answer.QuestionIndex,
		IsCorrect:     answer.IsCorrect,
		LatencyMS:     answer.LatencyMS,
		SubmittedAt:   answer.SubmittedAt,
	}
	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (participant_id, question_index) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save answer result: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyAnswered
	}
	return nil
}

// LoadActiveSessions returns every persisted non-ended session, implementing
// game.Loader so runtimes can be rebuilt after a restart.
func (s *Store) LoadActiveSessions(ctx context.Context) ([]domain.Session, error) {
	var rows []sessionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("status != ?", string(domain.StatusEnded)).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active sessions: %w", err)
	}
	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, domain.Session{
			ID:                 row.ID,
			PIN:                row.PIN,
			HostID:             row.HostID,
			HostName:           row.HostName,
			ClassID:            row.ClassID,
			VocabSetIDs:        row.VocabSetIDs,
			Status:             domain.SessionStatus(row.Status),
			ScoringMode:        domain.ScoringMode(row.ScoringMode),
			TotalQuestions:     row.TotalQuestions,
			QuestionTimeSec:    row.QuestionTimeSec,
			CurrentQuestionIdx: row.CurrentIdx,
			CurrentStartedAt:   row.CurrentStarted,
			CurrentDeadlineAt:  row.CurrentDeadline,
			StartedAt:          row.StartedAt,
			EndedAt:            row.EndedAt,
			CreatedAt:          row.CreatedAt,
		})
	}
	return sessions, nil
}

func (s *Store) LoadQuestions(ctx context.Context, sessionID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Order("index").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		var payload domain.QuestionPayload
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal question payload: %w", err)
		}
		questions = append(questions, domain.Question{
			SessionID: row.SessionID,
			Index:     row.Index,
			Payload:   payload,
		})
	}
	return questions, nil
}

func (s *Store) LoadParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	var rows []participantRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Order("joined_at").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	participants := make([]domain.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, domain.Participant{
			ID:             row.ID,
			SessionID:      row.SessionID,
			UserID:         row.UserID,
			DisplayName:    row.DisplayName,
			JoinedAt:       row.JoinedAt,
			IsConnected:    row.IsConnected,
			Score:          row.Score,
			Streak:         row.Streak,
			TotalLatencyMS: row.TotalLatencyMS,
		})
	}
	return participants, nil
}

func (s *Store) LoadAnswers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	var rows []answerRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answers := make([]domain.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, domain.Answer{
			ParticipantID: row.ParticipantID,
			SessionID:     row.SessionID,
			QuestionIndex: row.QuestionIndex,
			IsCorrect:     row.IsCorrect,
			LatencyMS:     row.LatencyMS,
			SubmittedAt:   row.SubmittedAt,
		})
	}
	return answers, nil
}

// TryReserve implements game.PinStore against the partial unique index on
// non-ended sessions; the index is the real uniqueness authority when
// multiple instances share the database.
func (s *Store) TryReserve(ctx context.Context, pin string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*sessionRow)(nil)).
		Where("pin = ?", pin).
		Where("status != ?", string(domain.StatusEnded)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check pin: %w", err)
	}
	return !exists, nil
}

// Release is a no-op: ending the session frees its pin under the partial
// index.
func (s *Store) Release(context.Context, string) error {
	return nil
}
