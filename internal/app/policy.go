package app

import (
	"fmt"
	"strings"

	"shield-quiz-service/internal/domain"
)

// QuestionOwnership decides whether a submitted question must belong to the attempt's quiz.
type QuestionOwnership int

const (
	// OwnershipRelaxed accepts and scores questions from any quiz.
	OwnershipRelaxed QuestionOwnership = iota
	// OwnershipStrict rejects questions from other quizzes with ErrQuestionNotInQuiz.
	OwnershipStrict
)

// AfterCompletion decides whether answers are accepted once an attempt is completed.
type AfterCompletion int

const (
	// AllowAfterCompletion keeps accepting answers and rescoring completed attempts.
	AllowAfterCompletion AfterCompletion = iota
	// RejectAfterCompletion refuses answers with ErrAttemptCompleted.
	RejectAfterCompletion
)

// Policy groups the engine's validation choices.
type Policy struct {
	Ownership       QuestionOwnership
	AfterCompletion AfterCompletion
}

func DefaultPolicy() Policy {
	return Policy{Ownership: OwnershipRelaxed, AfterCompletion: AllowAfterCompletion}
}

// ParsePolicy reads the config spelling of both choices; empty values keep the defaults.
func ParsePolicy(ownership, afterCompletion string) (Policy, error) {
	p := DefaultPolicy()
	switch strings.ToLower(strings.TrimSpace(ownership)) {
	case "", "relaxed":
	case "strict":
		p.Ownership = OwnershipStrict
	default:
		return p, fmt.Errorf("unknown question ownership policy %q", ownership)
	}
	switch strings.ToLower(strings.TrimSpace(afterCompletion)) {
	case "", "allow":
	case "reject":
		p.AfterCompletion = RejectAfterCompletion
	default:
		return p, fmt.Errorf("unknown after-completion policy %q", afterCompletion)
	}
	return p, nil
}

func (p Policy) checkSubmission(attempt domain.Attempt, question domain.Question) error {
	if p.AfterCompletion == RejectAfterCompletion && attempt.Completed {
		return domain.ErrAttemptCompleted
	}
	if p.Ownership == OwnershipStrict && question.QuizID != attempt.QuizID {
		return domain.ErrQuestionNotInQuiz
	}
	return nil
}
