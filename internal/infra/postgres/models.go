package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"shield-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Level     int       `bun:"level,notnull"`
	Title     string    `bun:"title,notnull"`
	BadgeName string    `bun:"badge_name,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID            int64    `bun:"id,pk,autoincrement"`
	QuizID        int64    `bun:"quiz_id,notnull"`
	Text          string   `bun:"question_text,notnull"`
	Options       []string `bun:"options,type:jsonb,notnull"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
	Order         int      `bun:"ord,notnull"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID             int64      `bun:"id,pk,autoincrement"`
	ChildEmail     string     `bun:"child_email,notnull"`
	QuizID         int64      `bun:"quiz_id,notnull"`
	StartedAt      time.Time  `bun:"started_at,notnull"`
	CompletedAt    *time.Time `bun:"completed_at"`
	Score          int        `bun:"score,notnull"`
	TotalQuestions int        `bun:"total_questions,notnull"`
	Completed      bool       `bun:"is_completed,notnull"`
}

func (r attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:             r.ID,
		ChildID:        r.ChildEmail,
		QuizID:         r.QuizID,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Completed:      r.Completed,
	}
}

type responseRow struct {
	bun.BaseModel `bun:"table:question_responses,alias:qr"`

	ID             int64     `bun:"id,pk,autoincrement"`
	AttemptID      int64     `bun:"attempt_id,notnull"`
	QuestionID     int64     `bun:"question_id,notnull"`
	SelectedAnswer string    `bun:"selected_answer,notnull"`
	Correct        bool      `bun:"is_correct,notnull"`
	AnsweredAt     time.Time `bun:"answered_at,notnull"`
}

func (r responseRow) toDomain() domain.Response {
	return domain.Response{
		AttemptID:      r.AttemptID,
		QuestionID:     r.QuestionID,
		SelectedAnswer: r.SelectedAnswer,
		Correct:        r.Correct,
		AnsweredAt:     r.AnsweredAt,
	}
}

type registrationRow struct {
	bun.BaseModel `bun:"table:registration_requests,alias:rr"`

	ID           int64          `bun:"id,pk,autoincrement"`
	Role         string         `bun:"role,notnull"`
	FullName     string         `bun:"full_name,notnull"`
	Email        string         `bun:"email,notnull"`
	PasswordHash string         `bun:"password_hash,notnull"`
	Metadata     map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type loginAttemptRow struct {
	bun.BaseModel `bun:"table:login_attempts,alias:la"`

	ID         int64          `bun:"id,pk,autoincrement"`
	Role       string         `bun:"role,notnull"`
	Successful bool           `bun:"is_successful,notnull"`
	Payload    map[string]any `bun:"payload,type:jsonb,notnull"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type articleRow struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Slug        string    `bun:"slug,notnull"`
	Title       string    `bun:"title,notnull"`
	Summary     string    `bun:"summary,notnull"`
	Category    string    `bun:"category,notnull"`
	PublishedAt time.Time `bun:"published_at,type:date,notnull"`
	SourceURL   string    `bun:"source_url,notnull"`
}

func (r articleRow) toDomain() domain.Article {
	return domain.Article{
		Slug:        r.Slug,
		Title:       r.Title,
		Summary:     r.Summary,
		Category:    r.Category,
		PublishedAt: r.PublishedAt,
		SourceURL:   r.SourceURL,
	}
}
