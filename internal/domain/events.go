package domain

// Broadcast events are ephemeral frames fanned out to subscribed sockets.
// Each marshals to a flat JSON object discriminated by "type".

// AnnounceGroup names the per-class discovery group.
func AnnounceGroup(classID string) string { return "announce:" + classID }

// GameGroup names the per-session game event group.
func GameGroup(sessionID string) string { return "game:" + sessionID }

type EventType string

const (
	EventGameAnnounced EventType = "GAME_ANNOUNCED"
	EventLobbyUpdate   EventType = "LOBBY_UPDATE"
	EventGameStarted   EventType = "GAME_STARTED"
	EventQuestion      EventType = "QUESTION"
	EventLeaderboard   EventType = "LEADERBOARD"
	EventGameEnded     EventType = "GAME_ENDED"
)

// GameAnnounced is published on the class announce group when a session is
// created, so pre-lobby clients can discover it.
type GameAnnounced struct {
	Type         EventType `json:"type"`
	SessionID    string    `json:"sessionId"`
	PIN          string    `json:"pin"`
	HostName     string    `json:"hostName"`
	ClassID      string    `json:"classId"`
	QuestionTime int       `json:"questionTime"`
}

// LobbyUpdate carries the current lobby roster after a join.
type LobbyUpdate struct {
	Type         EventType `json:"type"`
	Participants []string  `json:"participants"`
	PIN          string    `json:"pin"`
}

// GameStarted marks the LOBBY -> RUNNING transition.
type GameStarted struct {
	Type           EventType `json:"type"`
	SessionID      string    `json:"sessionId"`
	TotalQuestions int       `json:"totalQuestions"`
	QuestionTime   int       `json:"questionTime"`
}

// QuestionEvent delivers the current question and its timing window.
type QuestionEvent struct {
	Type       EventType       `json:"type"`
	Index      int             `json:"index"`
	Payload    QuestionPayload `json:"payload"`
	StartedAt  string          `json:"startedAt"`
	DeadlineAt string          `json:"deadlineAt"`
}

// LeaderboardEvent is published after every accepted answer.
type LeaderboardEvent struct {
	Type EventType          `json:"type"`
	Top  []LeaderboardEntry `json:"top"`
	You  *YouSnapshot       `json:"you,omitempty"`
}

// GameEnded closes the stream with the final top-K standing.
type GameEnded struct {
	Type     EventType          `json:"type"`
	FinalTop []LeaderboardEntry `json:"finalTop"`
}
