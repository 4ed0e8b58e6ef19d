package app

import (
	"context"

	"shield-quiz-service/internal/domain"
)

// CatalogService is the read-only accessor used by the transport layer.
type CatalogService struct {
	catalog Catalog
}

func NewCatalogService(catalog Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.catalog.ListQuizzes(ctx)
}

func (s *CatalogService) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quizID <= 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.catalog.GetQuiz(ctx, quizID)
}
