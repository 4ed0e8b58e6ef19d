package app

import (
	"context"
	"sort"
	"time"

	"shield-quiz-service/internal/domain"
)

// ArticleRepository lists published news articles.
type ArticleRepository interface {
	ListArticles(ctx context.Context) ([]domain.Article, error)
}

// NewsService serves the landing page news feed.
type NewsService struct {
	articles ArticleRepository
}

func NewNewsService(articles ArticleRepository) *NewsService {
	return &NewsService{articles: articles}
}

// List returns stored articles newest first, or the placeholder feed when none exist.
func (s *NewsService) List(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.articles.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return PlaceholderArticles(), nil
	}
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].Title < articles[j].Title
	})
	return articles, nil
}

func PlaceholderArticles() []domain.Article {
	return []domain.Article{
		{
			Slug:        "pocso-brief",
			Title:       "Understanding the POCSO Act in 2025",
			Summary:     "Updates to state-level guidelines and how Shield 360 aligns with the latest mandates.",
			Category:    "Legal Brief",
			PublishedAt: day(2025, time.February, 1),
		},
		{
			Slug:        "community-playbook",
			Title:       "Community Playbook for Safer Schools",
			Summary:     "Insights from recent workshops with NGOs and school administrators in Bengaluru.",
			Category:    "Community",
			PublishedAt: day(2025, time.January, 18),
		},
		{
			Slug:        "ai-chatbot",
			Title:       "AI-Assisted Crisis Detection: Early Findings",
			Summary:     "How our chatbot pilot is identifying early warning signals and routing help faster.",
			Category:    "Product",
			PublishedAt: day(2025, time.January, 5),
		},
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
