package domain

import "errors"

var (
	// ErrValidation is returned for malformed or out-of-range request fields.
	ErrValidation = errors.New("invalid request")
	// ErrUnauthorized is returned when the caller may not perform the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrClassNotFound indicates the referenced class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrVocabNotFound indicates one or more vocabulary sets do not resolve.
	ErrVocabNotFound = errors.New("vocab set not found")
	// ErrPinExhausted is returned when PIN allocation runs out of attempts.
	ErrPinExhausted = errors.New("pin space exhausted")
	// ErrNoWords indicates the chosen vocabulary sets contain no words.
	ErrNoWords = errors.New("no words in vocabulary sets")
	// ErrSessionNotFound indicates the session id does not resolve.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidState is returned when an operation is illegal for the
	// session's current status.
	ErrInvalidState = errors.New("invalid session state")
	// ErrNoMoreQuestions is returned by next once the sequence is exhausted.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrNotEnrolled indicates the student is not in the session's class.
	ErrNotEnrolled = errors.New("student not in this class")
	// ErrSessionFull is returned when the join cap has been reached.
	ErrSessionFull = errors.New("session is full")
	// ErrParticipantNotFound is returned when a student acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrQuestionMismatch indicates the submitted index is not current.
	ErrQuestionMismatch = errors.New("question mismatch")
	// ErrQuestionNotFound indicates no question exists at the given index.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAlreadyAnswered indicates a duplicate (participant, question) answer.
	ErrAlreadyAnswered = errors.New("answer already submitted")
	// ErrTooLate indicates the submission arrived after the deadline.
	ErrTooLate = errors.New("too late")
)
