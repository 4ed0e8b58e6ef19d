package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"shield-quiz-service/internal/domain"
)

// AuditStore keeps registrations, login attempts and articles in memory.
type AuditStore struct {
	mu            sync.RWMutex
	registrations []domain.Registration
	logins        []domain.LoginAttempt
	articles      []domain.Article
}

func NewAuditStore(articles ...domain.Article) *AuditStore {
	return &AuditStore{articles: articles}
}

func (s *AuditStore) CreateRegistration(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg.ID = int64(len(s.registrations) + 1)
	reg.Metadata = maps.Clone(reg.Metadata)
	s.registrations = append(s.registrations, reg)
	return reg, nil
}

func (s *AuditStore) CreateLoginAttempt(_ context.Context, attempt domain.LoginAttempt) (domain.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = int64(len(s.logins) + 1)
	attempt.Payload = maps.Clone(attempt.Payload)
	s.logins = append(s.logins, attempt)
	return attempt, nil
}

func (s *AuditStore) ListArticles(_ context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.articles), nil
}

// Registrations returns a copy of the stored registrations.
func (s *AuditStore) Registrations() []domain.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.registrations)
}

// LoginAttempts returns a copy of the stored login attempts.
func (s *AuditStore) LoginAttempts() []domain.LoginAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logins)
}
