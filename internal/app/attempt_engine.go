package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shield-quiz-service/internal/domain"
)

// Catalog is the read-only view of the loaded quizzes.
type Catalog interface {
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	GetQuestion(ctx context.Context, questionID int64) (domain.Question, error)
}

// AttemptRepository persists attempts and their responses (in-memory, Postgres, etc).
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	GetAttempt(ctx context.Context, attemptID int64) (domain.Attempt, error)
	// SaveResponse upserts the (attempt, question) response, recounts the attempt's
	// correct responses, stores that count as the score and returns it.
	SaveResponse(ctx context.Context, response domain.Response) (int, error)
	// CompleteAttempt marks the attempt completed, keeping an existing completion time.
	CompleteAttempt(ctx context.Context, attemptID int64, at time.Time) (domain.Attempt, error)
	ListAttempts(ctx context.Context, filter domain.AttemptFilter) ([]domain.Attempt, error)
	ListResponses(ctx context.Context, attemptID int64) ([]domain.Response, error)
}

// AttemptLocker serializes work on a single attempt. Different attempts never contend.
type AttemptLocker interface {
	Lock(ctx context.Context, attemptID int64) (unlock func(), err error)
}

// AttemptEngine implements the quiz attempt state machine:
// Started -> (AnswerSubmitted)* -> Completed.
type AttemptEngine struct {
	catalog  Catalog
	attempts AttemptRepository
	locker   AttemptLocker
	policy   Policy
	now      func() time.Time
}

type EngineOption func(*AttemptEngine)

// WithPolicy overrides the default relaxed policy.
func WithPolicy(p Policy) EngineOption {
	return func(e *AttemptEngine) { e.policy = p }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *AttemptEngine) { e.now = now }
}

func NewAttemptEngine(catalog Catalog, attempts AttemptRepository, locker AttemptLocker, opts ...EngineOption) *AttemptEngine {
	e := &AttemptEngine{
		catalog:  catalog,
		attempts: attempts,
		locker:   locker,
		policy:   DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartAttempt creates a fresh attempt. Calling it twice creates two attempts.
func (e *AttemptEngine) StartAttempt(ctx context.Context, childID string, quizID int64) (domain.Attempt, error) {
	childID = normalizeIdentifier(childID)
	if childID == "" || quizID <= 0 {
		return domain.Attempt{}, domain.Invalid("childEmail and quizId are required.")
	}

	quiz, err := e.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}

	return e.attempts.CreateAttempt(ctx, domain.Attempt{
		ChildID:        childID,
		QuizID:         quiz.ID,
		StartedAt:      e.now(),
		TotalQuestions: len(quiz.Questions),
	})
}

// SubmitAnswer records (or replaces) the answer to one question and rescores the attempt.
func (e *AttemptEngine) SubmitAnswer(ctx context.Context, attemptID, questionID int64, selected string) (domain.AnswerResult, error) {
	selected = strings.TrimSpace(selected)
	if attemptID <= 0 || questionID <= 0 || selected == "" {
		return domain.AnswerResult{}, domain.Invalid("attemptId, questionId, and selectedAnswer are required.")
	}

	unlock, err := e.locker.Lock(ctx, attemptID)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("lock attempt %d: %w", attemptID, err)
	}
	defer unlock()

	attempt, err := e.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	question, err := e.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if err := e.policy.checkSubmission(attempt, question); err != nil {
		return domain.AnswerResult{}, err
	}

	correct := selected == question.CorrectAnswer
	score, err := e.attempts.SaveResponse(ctx, domain.Response{
		AttemptID:      attempt.ID,
		QuestionID:     question.ID,
		SelectedAnswer: selected,
		Correct:        correct,
		AnsweredAt:     e.now(),
	})
	if err != nil {
		return domain.AnswerResult{}, err
	}

	return domain.AnswerResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Score:         score,
	}, nil
}

// CompleteAttempt marks the attempt completed. Repeated calls keep the first completion time.
func (e *AttemptEngine) CompleteAttempt(ctx context.Context, attemptID int64) (domain.Completion, error) {
	if attemptID <= 0 {
		return domain.Completion{}, domain.Invalid("attemptId is required.")
	}

	unlock, err := e.locker.Lock(ctx, attemptID)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("lock attempt %d: %w", attemptID, err)
	}
	defer unlock()

	attempt, err := e.attempts.CompleteAttempt(ctx, attemptID, e.now())
	if err != nil {
		return domain.Completion{}, err
	}

	completion := domain.Completion{
		AttemptID:      attempt.ID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     domain.Percentage(attempt.Score, attempt.TotalQuestions),
	}
	if attempt.CompletedAt != nil {
		completion.CompletedAt = *attempt.CompletedAt
	}
	return completion, nil
}

// Responses returns the recorded responses of an attempt.
func (e *AttemptEngine) Responses(ctx context.Context, attemptID int64) ([]domain.Response, error) {
	if _, err := e.attempts.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	return e.attempts.ListResponses(ctx, attemptID)
}

func normalizeIdentifier(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
