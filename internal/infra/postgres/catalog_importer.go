package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"shield-quiz-service/internal/domain"
)

// ImportResult counts what a catalog import wrote.
type ImportResult struct {
	Quizzes   int
	Questions int
}

// CatalogImporter bulk-loads quiz documents into the catalog tables.
type CatalogImporter struct {
	db *bun.DB
}

func NewCatalogImporter(db *bun.DB) *CatalogImporter {
	return &CatalogImporter{db: db}
}

// Import upserts quizzes by level and rewrites their questions by position in one transaction.
// Question rows keep their IDs when the position is unchanged, so existing responses survive;
// questions beyond the new count are removed together with their responses and the affected
// scores are recounted. With purge, all attempt, audit, news and catalog data is deleted first.
func (i *CatalogImporter) Import(ctx context.Context, quizzes []domain.Quiz, purge bool) (ImportResult, error) {
	var result ImportResult
	err := i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if purge {
			if err := purgeAll(ctx, tx); err != nil {
				return err
			}
		}

		for _, quiz := range quizzes {
			row := quizRow{Level: quiz.Level, Title: quiz.Title, BadgeName: quiz.BadgeName}
			_, err := tx.NewInsert().Model(&row).
				On("CONFLICT (level) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("badge_name = EXCLUDED.badge_name").
				Returning("id").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("upsert quiz level %d: %w", quiz.Level, err)
			}

			for ord, q := range quiz.Questions {
				qrow := questionRow{
					QuizID:        row.ID,
					Text:          q.Text,
					Options:       q.Options,
					CorrectAnswer: q.CorrectAnswer,
					Order:         ord,
				}
				if qrow.Options == nil {
					qrow.Options = []string{}
				}
				_, err := tx.NewInsert().Model(&qrow).
					On("CONFLICT (quiz_id, ord) DO UPDATE").
					Set("question_text = EXCLUDED.question_text").
					Set("options = EXCLUDED.options").
					Set("correct_answer = EXCLUDED.correct_answer").
					Exec(ctx)
				if err != nil {
					return fmt.Errorf("upsert question %d of level %d: %w", ord, quiz.Level, err)
				}
			}

			_, err = tx.NewDelete().Model((*questionRow)(nil)).
				Where("quiz_id = ?", row.ID).
				Where("ord >= ?", len(quiz.Questions)).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("trim questions of level %d: %w", quiz.Level, err)
			}

			result.Quizzes++
			result.Questions += len(quiz.Questions)
		}

		_, err := tx.NewUpdate().Model((*attemptRow)(nil)).
			Set("score = (SELECT count(*) FROM question_responses r WHERE r.attempt_id = qa.id AND r.is_correct)").
			Where("TRUE").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("recount scores: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func purgeAll(ctx context.Context, tx bun.Tx) error {
	models := []interface{}{
		(*responseRow)(nil),
		(*attemptRow)(nil),
		(*loginAttemptRow)(nil),
		(*registrationRow)(nil),
		(*articleRow)(nil),
		(*questionRow)(nil),
		(*quizRow)(nil),
	}
	for _, model := range models {
		if _, err := tx.NewDelete().Model(model).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("purge: %w", err)
		}
	}
	return nil
}
