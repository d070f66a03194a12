package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"live-practice-service/internal/domain"
)

// Store persists sessions, questions, participants, and answers. SaveAnswer
// must return domain.ErrAlreadyAnswered when an answer already exists for the
// (participant, question) pair.
type Store interface {
	SaveSession(ctx context.Context, session domain.Session) error
	SaveQuestions(ctx context.Context, sessionID string, questions []domain.Question) error
	SaveParticipant(ctx context.Context, participant domain.Participant) error
	SaveAnswer(ctx context.Context, answer domain.Answer) error
}

// WordRepository resolves vocabulary sets and loads their words. Words must
// come back in a deterministic order for the factory's seeding contract.
type WordRepository interface {
	ResolveSets(ctx context.Context, setIDs []string) error
	WordsForSets(ctx context.Context, setIDs []string) ([]domain.Word, error)
}

// Directory answers class ownership and enrollment questions.
type Directory interface {
	OwnsClass(ctx context.Context, teacherID, classID string) (bool, error)
	IsEnrolled(ctx context.Context, studentID, classID string) (bool, error)
}

// EventBus fans out events to a named group. Publish must not block.
type EventBus interface {
	Publish(group string, event any)
}

// SessionStore holds live runtime sessions.
type SessionStore interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
}

// Caller identifies an authenticated teacher or student.
type Caller struct {
	ID   string
	Name string
}

// Options tunes the coordinator. Zero values fall back to the defaults the
// platform ships with.
type Options struct {
	QuestionTimeDefault int
	MaxClassSize        int
	LeaderboardTopK     int
	FinalTopK           int
	StateTopK           int
	Clock               func() time.Time
	Seed                func() int64
}

func (o *Options) fill() {
	if o.QuestionTimeDefault <= 0 {
		o.QuestionTimeDefault = 20
	}
	if o.MaxClassSize <= 0 {
		o.MaxClassSize = 40
	}
	if o.LeaderboardTopK <= 0 {
		o.LeaderboardTopK = 20
	}
	if o.FinalTopK <= 0 {
		o.FinalTopK = 20
	}
	if o.StateTopK <= 0 {
		o.StateTopK = 5
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Seed == nil {
		o.Seed = func() int64 { return time.Now().UnixNano() }
	}
}

// Coordinator is the public API of the competition engine and the only
// writer to session state. Every mutating operation serializes through the
// target session's lock; state reads take a consistent snapshot under the
// same lock. Events are enqueued on the bus before the lock is released so
// per-session publish order matches operation order; the enqueue itself
// never blocks.
type Coordinator struct {
	sessions SessionStore
	store    Store
	words    WordRepository
	dir      Directory
	bus      EventBus
	pins     *PinAllocator
	opts     Options
}

func NewCoordinator(sessions SessionStore, store Store, words WordRepository, dir Directory, bus EventBus, pins *PinAllocator, opts Options) *Coordinator {
	opts.fill()
	return &Coordinator{
		sessions: sessions,
		store:    store,
		words:    words,
		dir:      dir,
		bus:      bus,
		pins:     pins,
		opts:     opts,
	}
}

// CreateParams carries the teacher's session settings.
type CreateParams struct {
	ClassID         string
	VocabSetIDs     []string
	TotalQuestions  int
	QuestionTimeSec int
	ScoringMode     domain.ScoringMode
}

// Create allocates a pin, persists a LOBBY session, and announces it on the
// class group.
func (c *Coordinator) Create(ctx context.Context, teacher Caller, params CreateParams) (domain.Session, error) {
	if params.TotalQuestions < 1 {
		return domain.Session{}, fmt.Errorf("%w: total_questions must be at least 1", domain.ErrValidation)
	}
	if len(params.VocabSetIDs) == 0 {
		return domain.Session{}, fmt.Errorf("%w: vocab_list_ids must not be empty", domain.ErrValidation)
	}
	if params.QuestionTimeSec == 0 {
		params.QuestionTimeSec = c.opts.QuestionTimeDefault
	}
	if params.QuestionTimeSec < 5 {
		return domain.Session{}, fmt.Errorf("%w: question_time_sec must be at least 5", domain.ErrValidation)
	}
	if params.ScoringMode == "" {
		params.ScoringMode = domain.ScoringStandard
	}
	switch params.ScoringMode {
	case domain.ScoringStandard, domain.ScoringFast, domain.ScoringStreaky:
	default:
		return domain.Session{}, fmt.Errorf("%w: unknown scoring mode %q", domain.ErrValidation, params.ScoringMode)
	}

	owns, err := c.dir.OwnsClass(ctx, teacher.ID, params.ClassID)
	if err != nil {
		return domain.Session{}, err
	}
	if !owns {
		return domain.Session{}, domain.ErrUnauthorized
	}
	if err := c.words.ResolveSets(ctx, params.VocabSetIDs); err != nil {
		return domain.Session{}, err
	}

	pin, err := c.pins.Allocate(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	data := domain.Session{
		ID:              uuid.NewString(),
		PIN:             pin,
		HostID:          teacher.ID,
		HostName:        teacher.Name,
		ClassID:         params.ClassID,
		VocabSetIDs:     params.VocabSetIDs,
		Status:          domain.StatusLobby,
		ScoringMode:     params.ScoringMode,
		TotalQuestions:  params.TotalQuestions,
		QuestionTimeSec: params.QuestionTimeSec,
		CreatedAt:       c.opts.Clock(),
	}
	if err := c.store.SaveSession(ctx, data); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	c.sessions.Put(NewSession(data))

	c.bus.Publish(domain.AnnounceGroup(data.ClassID), domain.GameAnnounced{
		Type:         domain.EventGameAnnounced,
		SessionID:    data.ID,
		PIN:          data.PIN,
		HostName:     data.HostName,
		ClassID:      data.ClassID,
		QuestionTime: data.QuestionTimeSec,
	})
	return data, nil
}

// Start materializes the question sequence and transitions LOBBY -> RUNNING.
func (c *Coordinator) Start(ctx context.Context, teacher Caller, sessionID string) (domain.Session, error) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.data.HostID != teacher.ID {
		return domain.Session{}, domain.ErrUnauthorized
	}
	if sess.data.Status != domain.StatusLobby {
		return domain.Session{}, fmt.Errorf("%w: session is not in the lobby", domain.ErrInvalidState)
	}

	words, err := c.words.WordsForSets(ctx, sess.data.VocabSetIDs)
	if err != nil {
		return domain.Session{}, err
	}
	factory := NewQuestionFactory(rand.New(rand.NewSource(c.opts.Seed())))
	payloads, err := factory.Build(words, sess.data.TotalQuestions)
	if err != nil {
		return domain.Session{}, err
	}
	questions := make([]domain.Question, len(payloads))
	for i, payload := range payloads {
		questions[i] = domain.Question{SessionID: sess.data.ID, Index: i + 1, Payload: payload}
	}

	updated := sess.data
	now := c.opts.Clock()
	updated.Status = domain.StatusRunning
	updated.StartedAt = &now
	updated.CurrentQuestionIdx = 0
	updated.CurrentStartedAt = nil
	updated.CurrentDeadlineAt = nil

	if err := c.store.SaveQuestions(ctx, updated.ID, questions); err != nil {
		return domain.Session{}, fmt.Errorf("save questions: %w", err)
	}
	if err := c.store.SaveSession(ctx, updated); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	sess.data = updated
	sess.questions = questions

	c.bus.Publish(domain.GameGroup(updated.ID), domain.GameStarted{
		Type:           domain.EventGameStarted,
		SessionID:      updated.ID,
		TotalQuestions: updated.TotalQuestions,
		QuestionTime:   updated.QuestionTimeSec,
	})
	return updated, nil
}

// Next advances to the following question and stamps its timing window.
func (c *Coordinator) Next(ctx context.Context, teacher Caller, sessionID string) (int, error) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.data.HostID != teacher.ID {
		return 0, domain.ErrUnauthorized
	}
	if sess.data.Status != domain.StatusRunning {
		return 0, fmt.Errorf("%w: session is not running", domain.ErrInvalidState)
	}
	if sess.data.CurrentQuestionIdx >= sess.data.TotalQuestions {
		return 0, domain.ErrNoMoreQuestions
	}

	nextIndex := sess.data.CurrentQuestionIdx + 1
	question, ok := sess.questionAt(nextIndex)
	if !ok {
		return 0, domain.ErrQuestionNotFound
	}

	updated := sess.data
	startedAt := c.opts.Clock()
	deadline := startedAt.Add(time.Duration(updated.QuestionTimeSec) * time.Second)
	updated.CurrentQuestionIdx = nextIndex
	updated.CurrentStartedAt = &startedAt
	updated.CurrentDeadlineAt = &deadline

	if err := c.store.SaveSession(ctx, updated); err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	sess.data = updated

	c.bus.Publish(domain.GameGroup(updated.ID), domain.QuestionEvent{
		Type:       domain.EventQuestion,
		Index:      nextIndex,
		Payload:    question.Payload,
		StartedAt:  startedAt.Format(time.RFC3339Nano),
		DeadlineAt: deadline.Format(time.RFC3339Nano),
	})
	return nextIndex, nil
}

// End terminates the session from LOBBY or RUNNING and publishes the final
// leaderboard. The pin is released for reuse.
func (c *Coordinator) End(ctx context.Context, teacher Caller, sessionID string) error {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.data.HostID != teacher.ID {
		return domain.ErrUnauthorized
	}
	if sess.data.Status == domain.StatusEnded {
		return fmt.Errorf("%w: session already ended", domain.ErrInvalidState)
	}

	updated := sess.data
	now := c.opts.Clock()
	updated.Status = domain.StatusEnded
	updated.EndedAt = &now

	if err := c.store.SaveSession(ctx, updated); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.data = updated
	// Question payloads are no longer needed; participants and answers stay
	// for post-game reads.
	sess.questions = nil

	c.bus.Publish(domain.GameGroup(updated.ID), domain.GameEnded{
		Type:     domain.EventGameEnded,
		FinalTop: sess.reg.top(c.opts.FinalTopK),
	})

	if err := c.pins.Release(ctx, updated.PIN); err != nil {
		log.Printf("release pin %s: %v", updated.PIN, err)
	}
	return nil
}

// Join registers a student as a participant. It is idempotent per
// (session, user): repeat joins return the existing participant with a fresh
// state snapshot and emit no lobby update.
func (c *Coordinator) Join(ctx context.Context, student Caller, sessionID string) (domain.StateSnapshot, error) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.StateSnapshot{}, domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	enrolled, err := c.dir.IsEnrolled(ctx, student.ID, sess.data.ClassID)
	if err != nil {
		return domain.StateSnapshot{}, err
	}
	if !enrolled {
		return domain.StateSnapshot{}, domain.ErrNotEnrolled
	}

	if existing, ok := sess.reg.byUserID(student.ID); ok {
		return sess.snapshotLocked(existing, c.opts.StateTopK), nil
	}

	if sess.reg.size() >= c.opts.MaxClassSize {
		return domain.StateSnapshot{}, domain.ErrSessionFull
	}

	participant := domain.Participant{
		ID:          uuid.NewString(),
		SessionID:   sess.data.ID,
		UserID:      student.ID,
		DisplayName: sess.reg.uniqueName(displayBase(student.Name)),
		JoinedAt:    c.opts.Clock(),
		IsConnected: true,
	}
	if err := c.store.SaveParticipant(ctx, participant); err != nil {
		return domain.StateSnapshot{}, fmt.Errorf("save participant: %w", err)
	}
	sess.reg.insert(&participant)

	c.bus.Publish(domain.GameGroup(sess.data.ID), domain.LobbyUpdate{
		Type:         domain.EventLobbyUpdate,
		Participants: sess.reg.names(),
		PIN:          sess.data.PIN,
	})
	return sess.snapshotLocked(&participant, c.opts.StateTopK), nil
}

// Answer scores one submission. The deadline comparison treats an answer
// exactly at the deadline as on time.
func (c *Coordinator) Answer(ctx context.Context, student Caller, sessionID string, questionIndex int, answerPayload any) (domain.AnswerResult, error) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	participant, ok := sess.reg.byUserID(student.ID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}
	if sess.data.Status != domain.StatusRunning {
		return domain.AnswerResult{}, fmt.Errorf("%w: session is not running", domain.ErrInvalidState)
	}
	if questionIndex != sess.data.CurrentQuestionIdx {
		return domain.AnswerResult{}, domain.ErrQuestionMismatch
	}
	question, ok := sess.questionAt(questionIndex)
	if !ok {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}

	now := c.opts.Clock()
	if sess.data.CurrentDeadlineAt != nil && now.After(*sess.data.CurrentDeadlineAt) {
		return domain.AnswerResult{}, domain.ErrTooLate
	}
	key := answerKey{participant.ID, questionIndex}
	if _, dup := sess.answered[key]; dup {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	latencyMS := 0
	if sess.data.CurrentStartedAt != nil {
		latencyMS = int(now.Sub(*sess.data.CurrentStartedAt).Milliseconds())
		if latencyMS < 0 {
			latencyMS = 0
		}
	}

	isCorrect := CheckAnswer(question.Payload, answerPayload)
	result := ScorerFor(sess.data.ScoringMode)(isCorrect, latencyMS, participant.Streak)

	answer := domain.Answer{
		ParticipantID: participant.ID,
		SessionID:     sess.data.ID,
		QuestionIndex: questionIndex,
		IsCorrect:     isCorrect,
		LatencyMS:     latencyMS,
		SubmittedAt:   now,
	}
	if err := c.store.SaveAnswer(ctx, answer); err != nil {
		return domain.AnswerResult{}, err
	}
	sess.answered[key] = struct{}{}

	participant.Score += result.Delta
	participant.Streak = result.NewStreak
	participant.TotalLatencyMS += latencyMS
	if err := c.store.SaveParticipant(ctx, *participant); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("save participant: %w", err)
	}

	c.bus.Publish(domain.GameGroup(sess.data.ID), domain.LeaderboardEvent{
		Type: domain.EventLeaderboard,
		Top:  sess.reg.top(c.opts.LeaderboardTopK),
		You: &domain.YouSnapshot{
			Rank:   sess.reg.rank(participant),
			Score:  participant.Score,
			Streak: participant.Streak,
		},
	})
	return domain.AnswerResult{Accepted: true, IsCorrect: isCorrect, ScoreDelta: result.Delta}, nil
}

// State returns a consistent snapshot. If the viewer is a participant the
// snapshot carries their rank, score, and streak. No side effects.
func (c *Coordinator) State(_ context.Context, viewer Caller, sessionID string) (domain.StateSnapshot, error) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.StateSnapshot{}, domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	you, _ := sess.reg.byUserID(viewer.ID)
	return sess.snapshotLocked(you, c.opts.StateTopK), nil
}

// SetConnected flips a participant's connection flag when their game socket
// attaches or detaches. Best effort: persistence failures are logged.
func (c *Coordinator) SetConnected(ctx context.Context, sessionID, userID string, connected bool) {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	participant, ok := sess.reg.byUserID(userID)
	if !ok || participant.IsConnected == connected {
		return
	}
	participant.IsConnected = connected
	if err := c.store.SaveParticipant(ctx, *participant); err != nil {
		log.Printf("save participant connection flag: %v", err)
	}
}

// displayBase builds the lobby name from a student's full name, e.g.
// "Sally Student" becomes "Sally S.".
func displayBase(fullName string) string {
	fields := strings.Fields(fullName)
	switch len(fields) {
	case 0:
		return "Student"
	case 1:
		return fields[0]
	default:
		last := []rune(fields[len(fields)-1])
		return fmt.Sprintf("%s %s.", fields[0], strings.ToUpper(string(last[0])))
	}
}
