package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shield-quiz-service/internal/domain"
)

type responseKey struct {
	attemptID  int64
	questionID int64
}

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu        sync.RWMutex
	nextID    int64
	attempts  map[int64]domain.Attempt
	responses map[responseKey]domain.Response
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts:  make(map[int64]domain.Attempt),
		responses: make(map[responseKey]domain.Response),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	attempt.ID = s.nextID
	attempt.Score = 0
	attempt.Completed = false
	attempt.CompletedAt = nil
	s.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID int64) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return copyAttempt(attempt), nil
}

func (s *AttemptStore) SaveResponse(_ context.Context, response domain.Response) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[response.AttemptID]
	if !ok {
		return 0, domain.ErrAttemptNotFound
	}

	key := responseKey{attemptID: response.AttemptID, questionID: response.QuestionID}
	if existing, ok := s.responses[key]; ok {
		response.AnsweredAt = existing.AnsweredAt
	}
	s.responses[key] = response

	score := 0
	for k, r := range s.responses {
		if k.attemptID == attempt.ID && r.Correct {
			score++
		}
	}
	attempt.Score = score
	s.attempts[attempt.ID] = attempt
	return score, nil
}

func (s *AttemptStore) CompleteAttempt(_ context.Context, attemptID int64, at time.Time) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	attempt.Completed = true
	if attempt.CompletedAt == nil {
		attempt.CompletedAt = &at
	}
	s.attempts[attemptID] = attempt
	return copyAttempt(attempt), nil
}

// ListAttempts returns matching attempts ordered by start time descending, then id descending.
func (s *AttemptStore) ListAttempts(_ context.Context, filter domain.AttemptFilter) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Attempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		if filter.ChildID != "" && attempt.ChildID != filter.ChildID {
			continue
		}
		out = append(out, copyAttempt(attempt))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ListResponses returns the attempt's responses ordered by question id.
func (s *AttemptStore) ListResponses(_ context.Context, attemptID int64) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Response
	for k, r := range s.responses {
		if k.attemptID == attemptID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func copyAttempt(a domain.Attempt) domain.Attempt {
	if a.CompletedAt != nil {
		at := *a.CompletedAt
		a.CompletedAt = &at
	}
	return a
}
