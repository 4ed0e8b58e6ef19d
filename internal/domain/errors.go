package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these.
var (
	// ErrInvalidInput marks a missing or malformed field the caller can correct.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedRole is returned by progress queries for an unrecognized role.
	ErrUnsupportedRole = errors.New("unsupported role")
)

var (
	// ErrQuizNotFound indicates the quiz is not part of the loaded catalog.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates a submitted question ID is unknown.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrAttemptNotFound indicates the attempt was never started.
	ErrAttemptNotFound = fmt.Errorf("attempt %w", ErrNotFound)
	// ErrAttemptCompleted is returned for answers to a completed attempt when that is disallowed.
	ErrAttemptCompleted = fmt.Errorf("%w: attempt already completed", ErrInvalidInput)
	// ErrQuestionNotInQuiz is returned when strict ownership checks are enabled.
	ErrQuestionNotInQuiz = fmt.Errorf("%w: question does not belong to the attempt's quiz", ErrInvalidInput)
)

// Invalid builds an ErrInvalidInput carrying a client-facing message.
func Invalid(msg string) error {
	return &invalidError{msg: msg}
}

type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalidInput }
