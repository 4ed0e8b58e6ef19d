package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"shield-quiz-service/internal/domain"
)

// AttemptStore persists attempts and responses with bun.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	row := attemptRow{
		ChildEmail:     attempt.ChildID,
		QuizID:         attempt.QuizID,
		StartedAt:      attempt.StartedAt,
		TotalQuestions: attempt.TotalQuestions,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID int64) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", attemptID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("select attempt %d: %w", attemptID, err)
	}
	return row.toDomain(), nil
}

// SaveResponse upserts the response and rescores the attempt in one transaction
// holding the attempt row lock.
func (s *AttemptStore) SaveResponse(ctx context.Context, response domain.Response) (int, error) {
	var score int
	err := s.db.RunInTx(ctx, readCommitted, func(ctx context.Context, tx bun.Tx) error {
		if _, err := lockAttempt(ctx, tx, response.AttemptID); err != nil {
			return err
		}

		row := responseRow{
			AttemptID:      response.AttemptID,
			QuestionID:     response.QuestionID,
			SelectedAnswer: response.SelectedAnswer,
			Correct:        response.Correct,
			AnsweredAt:     response.AnsweredAt,
		}
		_, err := tx.NewInsert().Model(&row).
			On("CONFLICT (attempt_id, question_id) DO UPDATE").
			Set("selected_answer = EXCLUDED.selected_answer").
			Set("is_correct = EXCLUDED.is_correct").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert response: %w", err)
		}

		score, err = tx.NewSelect().Model((*responseRow)(nil)).
			Where("attempt_id = ?", response.AttemptID).
			Where("is_correct").
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count correct responses: %w", err)
		}

		_, err = tx.NewUpdate().Model((*attemptRow)(nil)).
			Set("score = ?", score).
			Where("id = ?", response.AttemptID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update score: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (s *AttemptStore) CompleteAttempt(ctx context.Context, attemptID int64, at time.Time) (domain.Attempt, error) {
	var out domain.Attempt
	err := s.db.RunInTx(ctx, readCommitted, func(ctx context.Context, tx bun.Tx) error {
		row, err := lockAttempt(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		row.Completed = true
		if row.CompletedAt == nil {
			// timestamptz keeps microseconds.
			at = at.UTC().Truncate(time.Microsecond)
			row.CompletedAt = &at
		}
		_, err = tx.NewUpdate().Model(&row).
			Column("is_completed", "completed_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("complete attempt %d: %w", attemptID, err)
		}
		out = row.toDomain()
		return nil
	})
	return out, err
}

func (s *AttemptStore) ListAttempts(ctx context.Context, filter domain.AttemptFilter) ([]domain.Attempt, error) {
	var rows []attemptRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("started_at DESC, id DESC")
	if filter.ChildID != "" {
		q = q.Where("child_email = ?", filter.ChildID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	out := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *AttemptStore) ListResponses(ctx context.Context, attemptID int64) ([]domain.Response, error) {
	var rows []responseRow
	err := s.db.NewSelect().Model(&rows).
		Where("attempt_id = ?", attemptID).
		Order("question_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	out := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func lockAttempt(ctx context.Context, tx bun.Tx, attemptID int64) (attemptRow, error) {
	var row attemptRow
	err := tx.NewSelect().Model(&row).Where("id = ?", attemptID).For("UPDATE").Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return row, domain.ErrAttemptNotFound
	}
	if err != nil {
		return row, fmt.Errorf("lock attempt %d: %w", attemptID, err)
	}
	return row, nil
}
