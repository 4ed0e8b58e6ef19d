package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"shield-quiz-service/internal/domain"
)

// quizDocument mirrors one level of quiz_data.json.
type quizDocument struct {
	Level     int                `json:"level"`
	Title     string             `json:"title"`
	BadgeName string             `json:"badgeName"`
	Questions []questionDocument `json:"questions"`
}

type questionDocument struct {
	Text    string   `json:"q"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

// questionIDStride spaces question IDs per level; a level holds at most stride-1 questions.
const questionIDStride = 1000

// Decode reads a quiz_data.json document.
// Quiz IDs are the level and question IDs are level*1000 + position, so they stay
// stable across reloads of the same file.
func Decode(r io.Reader) ([]domain.Quiz, error) {
	var docs []quizDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode quiz data: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(docs))
	seen := make(map[int]struct{}, len(docs))
	for _, doc := range docs {
		if doc.Level <= 0 {
			return nil, fmt.Errorf("quiz %q: level must be positive", doc.Title)
		}
		if _, dup := seen[doc.Level]; dup {
			return nil, fmt.Errorf("duplicate quiz level %d", doc.Level)
		}
		if len(doc.Questions) >= questionIDStride {
			return nil, fmt.Errorf("quiz level %d: %d questions exceeds the limit of %d",
				doc.Level, len(doc.Questions), questionIDStride-1)
		}
		seen[doc.Level] = struct{}{}

		quiz := domain.Quiz{
			ID:        int64(doc.Level),
			Level:     doc.Level,
			Title:     doc.Title,
			BadgeName: doc.BadgeName,
			Questions: make([]domain.Question, 0, len(doc.Questions)),
		}
		for i, q := range doc.Questions {
			quiz.Questions = append(quiz.Questions, domain.Question{
				ID:            int64(doc.Level)*questionIDStride + int64(i) + 1,
				QuizID:        quiz.ID,
				Text:          q.Text,
				Options:       q.Options,
				CorrectAnswer: q.Correct,
				Order:         i,
			})
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// ReadFile decodes the quiz data file at path.
func ReadFile(path string) ([]domain.Quiz, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quiz data: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// CatalogSource serves the catalog straight from a quiz_data.json file.
type CatalogSource struct {
	path string
}

func NewCatalogSource(path string) *CatalogSource {
	return &CatalogSource{path: path}
}

func (s *CatalogSource) LoadCatalog(_ context.Context) ([]domain.Quiz, error) {
	return ReadFile(s.path)
}
