package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"shield-quiz-service/internal/domain"
)

// CatalogLoader reads the whole quiz catalog from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, level, title, badge_name FROM quizzes ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	var quizzes []domain.Quiz
	index := make(map[int64]int)
	for rows.Next() {
		var quiz domain.Quiz
		if err := rows.Scan(&quiz.ID, &quiz.Level, &quiz.Title, &quiz.BadgeName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		index[quiz.ID] = len(quizzes)
		quizzes = append(quizzes, quiz)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}

	rows, err = l.pool.Query(ctx, `SELECT id, quiz_id, question_text, options, correct_answer, ord FROM questions ORDER BY quiz_id, ord`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			question domain.Question
			raw      []byte
		)
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Text, &raw, &question.CorrectAnswer, &question.Order); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &question.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", question.ID, err)
		}
		i, ok := index[question.QuizID]
		if !ok {
			continue
		}
		quizzes[i].Questions = append(quizzes[i].Questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return quizzes, nil
}
