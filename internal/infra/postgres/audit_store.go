package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"shield-quiz-service/internal/domain"
)

// AuditStore writes registration and login records and reads news articles.
type AuditStore struct {
	db *bun.DB
}

func NewAuditStore(db *bun.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) CreateRegistration(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	row := registrationRow{
		Role:         reg.Role,
		FullName:     reg.FullName,
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		Metadata:     nonNil(reg.Metadata),
		CreatedAt:    reg.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	reg.ID = row.ID
	reg.CreatedAt = row.CreatedAt
	return reg, nil
}

func (s *AuditStore) CreateLoginAttempt(ctx context.Context, attempt domain.LoginAttempt) (domain.LoginAttempt, error) {
	row := loginAttemptRow{
		Role:       attempt.Role,
		Successful: attempt.Successful,
		Payload:    nonNil(attempt.Payload),
		CreatedAt:  attempt.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.LoginAttempt{}, fmt.Errorf("insert login attempt: %w", err)
	}
	attempt.ID = row.ID
	attempt.CreatedAt = row.CreatedAt
	return attempt, nil
}

func (s *AuditStore) ListArticles(ctx context.Context) ([]domain.Article, error) {
	var rows []articleRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("published_at DESC, title ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	out := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// SaveArticles upserts articles by slug.
func (s *AuditStore) SaveArticles(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}
	rows := make([]articleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, articleRow{
			Slug:        a.Slug,
			Title:       a.Title,
			Summary:     a.Summary,
			Category:    a.Category,
			PublishedAt: a.PublishedAt,
			SourceURL:   a.SourceURL,
		})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (slug) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("summary = EXCLUDED.summary").
		Set("category = EXCLUDED.category").
		Set("published_at = EXCLUDED.published_at").
		Set("source_url = EXCLUDED.source_url").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert articles: %w", err)
	}
	return nil
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
