package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shield-quiz-service/internal/domain"
)

// flexID accepts an identifier sent either as a JSON number or a numeric string.
// null, "" and a missing field all decode to zero.
type flexID int64

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*id = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = flexID(n)
	return nil
}

type startRequest struct {
	ChildEmail string `json:"childEmail"`
	QuizID     flexID `json:"quizId"`
}

type startResponse struct {
	AttemptID      int64 `json:"attemptId"`
	QuizID         int64 `json:"quizId"`
	TotalQuestions int   `json:"totalQuestions"`
}

type submitRequest struct {
	AttemptID      flexID `json:"attemptId"`
	QuestionID     flexID `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

type submitResponse struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	CurrentScore  int    `json:"currentScore"`
}

type completeRequest struct {
	AttemptID flexID `json:"attemptId"`
}

type completeResponse struct {
	AttemptID      int64     `json:"attemptId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}

type progressResponse struct {
	AttemptID      int64      `json:"attemptId"`
	QuizID         int64      `json:"quizId"`
	ChildEmail     string     `json:"childEmail"`
	QuizTitle      string     `json:"quizTitle"`
	Level          int        `json:"level"`
	BadgeName      string     `json:"badgeName"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Percentage     int        `json:"percentage"`
	IsCompleted    bool       `json:"isCompleted"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

func toProgressResponse(e domain.ProgressEntry) progressResponse {
	return progressResponse{
		AttemptID:      e.AttemptID,
		QuizID:         e.QuizID,
		ChildEmail:     e.ChildID,
		QuizTitle:      e.QuizTitle,
		Level:          e.Level,
		BadgeName:      e.BadgeName,
		Score:          e.Score,
		TotalQuestions: e.TotalQuestions,
		Percentage:     e.Percentage,
		IsCompleted:    e.Completed,
		StartedAt:      e.StartedAt,
		CompletedAt:    e.CompletedAt,
	}
}

type quizSummaryResponse struct {
	ID            int64  `json:"id"`
	Level         int    `json:"level"`
	Title         string `json:"title"`
	BadgeName     string `json:"badgeName"`
	QuestionCount int    `json:"questionCount"`
}

type questionResponse struct {
	ID      int64    `json:"id"`
	Text    string   `json:"q"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
	Order   int      `json:"order"`
}

type quizDetailResponse struct {
	ID        int64              `json:"id"`
	Level     int                `json:"level"`
	Title     string             `json:"title"`
	BadgeName string             `json:"badgeName"`
	Questions []questionResponse `json:"questions"`
}

func toQuizDetail(q domain.Quiz) quizDetailResponse {
	out := quizDetailResponse{
		ID:        q.ID,
		Level:     q.Level,
		Title:     q.Title,
		BadgeName: q.BadgeName,
		Questions: make([]questionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		options := question.Options
		if options == nil {
			options = []string{}
		}
		out.Questions = append(out.Questions, questionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Options: options,
			Correct: question.CorrectAnswer,
			Order:   question.Order,
		})
	}
	return out
}

type articleResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Category    string `json:"category"`
	PublishedAt string `json:"publishedAt"`
	SourceURL   string `json:"sourceUrl"`
}

type loginRequest struct {
	Role       string         `json:"role"`
	Identifier string         `json:"identifier"`
	Password   string         `json:"password"`
	Metadata   map[string]any `json:"metadata"`
}

type loginResponse struct {
	Message   string `json:"message"`
	AttemptID int64  `json:"attemptId"`
	Role      string `json:"role"`
}

type registerRequest struct {
	Role     string         `json:"role"`
	FullName string         `json:"fullName"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata map[string]any `json:"metadata"`
}

// registerKnownKeys are the top-level fields that do not spill into metadata.
var registerKnownKeys = []string{"role", "fullName", "email", "password", "metadata"}

type registerResponse struct {
	Message   string `json:"message"`
	RequestID int64  `json:"requestId"`
	Role      string `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}
