package app_test

import (
	"context"
	"testing"
	"time"

	"shield-quiz-service/internal/app"
	"shield-quiz-service/internal/domain"
	"shield-quiz-service/internal/infra/memory"
)

func TestNewsFallsBackToPlaceholders(t *testing.T) {
	svc := app.NewNewsService(memory.NewAuditStore())
	articles, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(articles) != 3 || articles[0].Slug != "pocso-brief" {
		t.Fatalf("unexpected placeholders: %+v", articles)
	}
}

func TestNewsOrdersNewestFirst(t *testing.T) {
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := app.NewNewsService(memory.NewAuditStore(
		domain.Article{Slug: "old", Title: "Old", PublishedAt: day.AddDate(0, -1, 0)},
		domain.Article{Slug: "b", Title: "Beta", PublishedAt: day},
		domain.Article{Slug: "a", Title: "Alpha", PublishedAt: day},
	))
	articles, _ := svc.List(context.Background())
	if articles[0].Slug != "a" || articles[1].Slug != "b" || articles[2].Slug != "old" {
		t.Fatalf("unexpected order: %+v", articles)
	}
}
