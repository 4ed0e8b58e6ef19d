package app

import (
	"context"
	"strings"

	"shield-quiz-service/internal/domain"
)

// GetProgress lists attempts visible to the given role, newest first.
func (e *AttemptEngine) GetProgress(ctx context.Context, role, identifier string) ([]domain.ProgressEntry, error) {
	identifier = normalizeIdentifier(identifier)
	if strings.TrimSpace(role) == "" || identifier == "" {
		return nil, domain.Invalid("role and identifier are required.")
	}

	filter, err := progressScope(domain.ParseRole(role), identifier)
	if err != nil {
		return nil, err
	}

	attempts, err := e.attempts.ListAttempts(ctx, filter)
	if err != nil {
		return nil, err
	}
	quizzes, err := e.quizIndex(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ProgressEntry, 0, len(attempts))
	for _, attempt := range attempts {
		entries = append(entries, progressEntry(attempt, quizzes[attempt.QuizID]))
	}
	return entries, nil
}

// progressScope is the per-role aggregation strategy.
func progressScope(role domain.Role, identifier string) (domain.AttemptFilter, error) {
	switch {
	case role.Privileged():
		return domain.AttemptFilter{}, nil
	case role == domain.RoleChild:
		return domain.AttemptFilter{ChildID: identifier}, nil
	case role == domain.RoleParent:
		// No parent->child link exists; the identifier is trusted to be the child's.
		return domain.AttemptFilter{ChildID: identifier}, nil
	default:
		return domain.AttemptFilter{}, domain.ErrUnsupportedRole
	}
}

func (e *AttemptEngine) quizIndex(ctx context.Context) (map[int64]domain.QuizSummary, error) {
	summaries, err := e.catalog.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]domain.QuizSummary, len(summaries))
	for _, s := range summaries {
		index[s.ID] = s
	}
	return index, nil
}

func progressEntry(attempt domain.Attempt, quiz domain.QuizSummary) domain.ProgressEntry {
	return domain.ProgressEntry{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		ChildID:        attempt.ChildID,
		QuizTitle:      quiz.Title,
		Level:          quiz.Level,
		BadgeName:      quiz.BadgeName,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     domain.Percentage(attempt.Score, attempt.TotalQuestions),
		Completed:      attempt.Completed,
		StartedAt:      attempt.StartedAt,
		CompletedAt:    attempt.CompletedAt,
	}
}
