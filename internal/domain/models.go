package domain

import "time"

// SessionStatus is the lifecycle state of a live game session.
type SessionStatus string

const (
	StatusLobby   SessionStatus = "LOBBY"
	StatusRunning SessionStatus = "RUNNING"
	StatusEnded   SessionStatus = "ENDED"
)

// ScoringMode tags how a session scores answers. Only STANDARD changes the
// formula today; FAST and STREAKY are carried for future tuning.
type ScoringMode string

const (
	ScoringStandard ScoringMode = "STANDARD"
	ScoringFast     ScoringMode = "FAST"
	ScoringStreaky  ScoringMode = "STREAKY"
)

// Session represents a single teacher-hosted live practice game.
type Session struct {
	ID          string        `json:"id"`
	PIN         string        `json:"pin"`
	HostID      string        `json:"hostId"`
	HostName    string        `json:"hostName"`
	ClassID     string        `json:"classId"`
	VocabSetIDs []string      `json:"vocabListIds"`
	Status      SessionStatus `json:"status"`
	ScoringMode ScoringMode   `json:"scoringMode"`

	TotalQuestions  int `json:"totalQuestions"`
	QuestionTimeSec int `json:"questionTimeSec"`

	// CurrentQuestionIdx is 0 in the lobby and 1..TotalQuestions while running.
	CurrentQuestionIdx int        `json:"currentQuestionIdx"`
	CurrentStartedAt   *time.Time `json:"currentStartedAt,omitempty"`
	CurrentDeadlineAt  *time.Time `json:"currentDeadlineAt,omitempty"`

	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Participant is a student who joined a session and holds a scoreable identity.
type Participant struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId,omitempty"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
	IsConnected bool      `json:"isConnected"`

	Score          int `json:"score"`
	Streak         int `json:"streak"`
	TotalLatencyMS int `json:"totalLatencyMs"`
}

// Question binds an immutable payload to a session at a 1-based index.
type Question struct {
	SessionID string          `json:"sessionId"`
	Index     int             `json:"index"`
	Payload   QuestionPayload `json:"payload"`
}

// Answer records a single submission. At most one exists per
// (participant, question) pair.
type Answer struct {
	ParticipantID string    `json:"participantId"`
	SessionID     string    `json:"sessionId"`
	QuestionIndex int       `json:"questionIndex"`
	IsCorrect     bool      `json:"isCorrect"`
	LatencyMS     int       `json:"latencyMs"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Word is a vocabulary entry supplied by the learning platform.
type Word struct {
	ID          string     `json:"id"`
	SetID       string     `json:"setId"`
	Word        string     `json:"word"`
	Translation string     `json:"translation"`
	Image       *WordImage `json:"image,omitempty"`
}

// WordImage is copied verbatim into question payloads when the word carries
// an approved image.
type WordImage struct {
	URL         string `json:"url"`
	Thumb       string `json:"thumb"`
	Source      string `json:"source"`
	Attribution string `json:"attribution"`
	License     string `json:"license"`
	Alt         string `json:"alt"`
}

// LeaderboardEntry is one row of the broadcast leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}

// YouSnapshot is the per-viewer slice of a leaderboard.
type YouSnapshot struct {
	Rank   int `json:"rank"`
	Score  int `json:"score"`
	Streak int `json:"streak"`
}

// StateSnapshot is the read-only session view returned by join and state.
type StateSnapshot struct {
	SessionID          string             `json:"sessionId"`
	Status             SessionStatus      `json:"status"`
	CurrentQuestionIdx int                `json:"currentQuestionIdx"`
	TotalQuestions     int                `json:"totalQuestions"`
	QuestionTimeSec    int                `json:"questionTimeSec"`
	StartedAt          *time.Time         `json:"startedAt"`
	DeadlineAt         *time.Time         `json:"deadlineAt"`
	Leaderboard        []LeaderboardEntry `json:"leaderboard"`
	You                *YouSnapshot       `json:"you"`
}

// AnswerResult summarizes the outcome of a submission for the caller.
type AnswerResult struct {
	Accepted   bool `json:"accepted"`
	IsCorrect  bool `json:"isCorrect"`
	ScoreDelta int  `json:"scoreDelta"`
}
