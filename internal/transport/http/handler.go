package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
)

// Handler exposes the coordinator's operations under /api/live-games.
type Handler struct {
	coordinator *game.Coordinator
	auth        *Authenticator
}

func NewHandler(coordinator *game.Coordinator, auth *Authenticator) *Handler {
	return &Handler{coordinator: coordinator, auth: auth}
}

// Register mounts the REST routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/live-games").Subrouter()
	api.Use(h.auth.Middleware)
	api.HandleFunc("", h.create).Methods(http.MethodPost)
	api.HandleFunc("/", h.create).Methods(http.MethodPost)
	api.HandleFunc("/{id}/start", h.start).Methods(http.MethodPost)
	api.HandleFunc("/{id}/next", h.next).Methods(http.MethodPost)
	api.HandleFunc("/{id}/end", h.end).Methods(http.MethodPost)
	api.HandleFunc("/{id}/join", h.join).Methods(http.MethodPost)
	api.HandleFunc("/{id}/answer", h.answer).Methods(http.MethodPost)
	api.HandleFunc("/{id}/state", h.state).Methods(http.MethodGet)
}

type createRequest struct {
	ClassID         string             `json:"class_id"`
	VocabListIDs    []string           `json:"vocab_list_ids"`
	TotalQuestions  int                `json:"total_questions"`
	QuestionTimeSec int                `json:"question_time_sec"`
	ScoringMode     domain.ScoringMode `json:"scoring_mode"`
}

type createResponse struct {
	ID              string               `json:"id"`
	PIN             string               `json:"pin"`
	Status          domain.SessionStatus `json:"status"`
	TotalQuestions  int                  `json:"total_questions"`
	QuestionTimeSec int                  `json:"question_time_sec"`
	ScoringMode     domain.ScoringMode   `json:"scoring_mode"`
	ClassID         string               `json:"class_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := teacherClaims(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.coordinator.Create(r.Context(), callerFrom(claims), game.CreateParams{
		ClassID:         req.ClassID,
		VocabSetIDs:     req.VocabListIDs,
		TotalQuestions:  req.TotalQuestions,
		QuestionTimeSec: req.QuestionTimeSec,
		ScoringMode:     req.ScoringMode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		ID:              session.ID,
		PIN:             session.PIN,
		Status:          session.Status,
		TotalQuestions:  session.TotalQuestions,
		QuestionTimeSec: session.QuestionTimeSec,
		ScoringMode:     session.ScoringMode,
		ClassID:         session.ClassID,
	})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	claims, ok := teacherClaims(w, r)
	if !ok {
		return
	}
	session, err := h.coordinator.Start(r.Context(), callerFrom(claims), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	claims, ok := teacherClaims(w, r)
	if !ok {
		return
	}
	index, err := h.coordinator.Next(r.Context(), callerFrom(claims), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"index": index})
}

func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	claims, ok := teacherClaims(w, r)
	if !ok {
		return
	}
	if err := h.coordinator.End(r.Context(), callerFrom(claims), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	claims, ok := studentClaims(w, r)
	if !ok {
		return
	}
	snapshot, err := h.coordinator.Join(r.Context(), callerFrom(claims), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type answerRequest struct {
	QuestionIndex int `json:"questionIndex"`
	AnswerPayload any `json:"answerPayload"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	claims, ok := studentClaims(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.coordinator.Answer(r.Context(), callerFrom(claims), mux.Vars(r)["id"], req.QuestionIndex, req.AnswerPayload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusForbidden, "authentication required")
		return
	}
	snapshot, err := h.coordinator.State(r.Context(), callerFrom(claims), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func teacherClaims(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	claims, ok := claimsFrom(r.Context())
	if !ok || claims.Role != RoleTeacher {
		writeDetail(w, http.StatusForbidden, "teacher authentication required")
		return nil, false
	}
	return claims, true
}

func studentClaims(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	claims, ok := claimsFrom(r.Context())
	if !ok || claims.Role != RoleStudent {
		writeDetail(w, http.StatusForbidden, "student authentication required")
		return nil, false
	}
	return claims, true
}

// writeError maps coordinator failures onto the HTTP status contract.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrClassNotFound),
		errors.Is(err, domain.ErrVocabNotFound),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNoMoreQuestions),
		errors.Is(err, domain.ErrNoWords),
		errors.Is(err, domain.ErrSessionFull),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrTooLate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotEnrolled):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrQuestionMismatch),
		errors.Is(err, domain.ErrAlreadyAnswered):
		status = http.StatusConflict
	default:
		log.Printf("internal error: %v", err)
	}
	writeDetail(w, status, err.Error())
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
