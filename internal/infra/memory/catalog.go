package memory

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"shield-quiz-service/internal/domain"
)

// CatalogSource loads the full quiz catalog from a backing store (Postgres, JSON file, etc).
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]domain.Quiz, error)
}

// Catalog holds an immutable snapshot of the quiz catalog, swapped wholesale on Reload.
type Catalog struct {
	source CatalogSource
	log    *zap.Logger
	sf     singleflight.Group

	mu       sync.RWMutex
	snapshot *catalogSnapshot
}

type catalogSnapshot struct {
	quizzes   []domain.Quiz
	byID      map[int64]int
	questions map[int64]domain.Question
}

func NewCatalog(source CatalogSource, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{source: source, log: log}
}

// Reload replaces the snapshot with a fresh load and returns the number of quizzes.
// Concurrent callers share a single load.
func (c *Catalog) Reload(ctx context.Context) (int, error) {
	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		quizzes, err := c.source.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		snap := c.buildSnapshot(quizzes)

		c.mu.Lock()
		c.snapshot = snap
		c.mu.Unlock()

		c.log.Info("catalog loaded",
			zap.Int("quizzes", len(snap.quizzes)),
			zap.Int("questions", len(snap.questions)))
		return len(snap.quizzes), nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuizSummary, 0, len(snap.quizzes))
	for _, quiz := range snap.quizzes {
		out = append(out, quiz.Summary())
	}
	return out, nil
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	idx, ok := snap.byID[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return snap.quizzes[idx].Clone(), nil
}

func (c *Catalog) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	snap, err := c.current(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	question, ok := snap.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question.Clone(), nil
}

// current returns the loaded snapshot, loading it on first use.
func (c *Catalog) current(ctx context.Context) (*catalogSnapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	if _, err := c.Reload(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, nil
}

func (c *Catalog) buildSnapshot(quizzes []domain.Quiz) *catalogSnapshot {
	snap := &catalogSnapshot{
		quizzes:   make([]domain.Quiz, 0, len(quizzes)),
		byID:      make(map[int64]int, len(quizzes)),
		questions: make(map[int64]domain.Question),
	}
	for _, quiz := range quizzes {
		snap.quizzes = append(snap.quizzes, quiz.Clone())
	}
	sort.SliceStable(snap.quizzes, func(i, j int) bool {
		return snap.quizzes[i].Level < snap.quizzes[j].Level
	})

	for i := range snap.quizzes {
		quiz := &snap.quizzes[i]
		sort.SliceStable(quiz.Questions, func(a, b int) bool {
			return quiz.Questions[a].Order < quiz.Questions[b].Order
		})
		snap.byID[quiz.ID] = i
		for j := range quiz.Questions {
			question := &quiz.Questions[j]
			question.QuizID = quiz.ID
			if !question.HasCorrectOption() {
				c.log.Warn("correct answer is not one of the options",
					zap.Int64("quiz_id", quiz.ID),
					zap.Int64("question_id", question.ID),
					zap.String("correct", question.CorrectAnswer))
			}
			snap.questions[question.ID] = *question
		}
	}
	return snap
}

// StaticCatalogSource is a simple source backed by an in-memory slice (useful for tests/demos).
type StaticCatalogSource struct {
	mu      sync.RWMutex
	quizzes []domain.Quiz
}

func NewStaticCatalogSource(quizzes ...domain.Quiz) *StaticCatalogSource {
	return &StaticCatalogSource{quizzes: quizzes}
}

// Set replaces the quizzes returned by the next load.
func (s *StaticCatalogSource) Set(quizzes ...domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = quizzes
}

func (s *StaticCatalogSource) LoadCatalog(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, len(s.quizzes))
	for i, quiz := range s.quizzes {
		out[i] = quiz.Clone()
	}
	return out, nil
}
