package domain

import (
	"slices"
	"time"
)

// Question is a single multiple-choice item owned by exactly one quiz.
type Question struct {
	ID            int64
	QuizID        int64
	Text          string
	Options       []string
	CorrectAnswer string
	Order         int // unique within the owning quiz
}

// HasCorrectOption reports whether the correct answer is one of the options.
// Questions failing this check are loaded anyway and can never be answered correctly.
func (q Question) HasCorrectOption() bool {
	return slices.Contains(q.Options, q.CorrectAnswer)
}

// Quiz is one level of the catalog with its questions in presentation order.
type Quiz struct {
	ID        int64
	Level     int
	Title     string
	BadgeName string
	Questions []Question
}

// QuizSummary is the listing view of a quiz.
type QuizSummary struct {
	ID            int64
	Level         int
	Title         string
	BadgeName     string
	QuestionCount int
}

func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Level:         q.Level,
		Title:         q.Title,
		BadgeName:     q.BadgeName,
		QuestionCount: len(q.Questions),
	}
}

// Clone returns a copy that shares no slices with q.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question.Clone()
	}
	return out
}

func (q Question) Clone() Question {
	out := q
	out.Options = slices.Clone(q.Options)
	return out
}

// Attempt is one child's run through one quiz.
type Attempt struct {
	ID             int64
	ChildID        string
	QuizID         int64
	StartedAt      time.Time
	CompletedAt    *time.Time
	Score          int
	TotalQuestions int // question count when the attempt started
	Completed      bool
}

// Response is the recorded answer to one question within an attempt.
// There is at most one response per (AttemptID, QuestionID).
type Response struct {
	AttemptID      int64
	QuestionID     int64
	SelectedAnswer string
	Correct        bool
	AnsweredAt     time.Time
}

// AttemptFilter narrows attempt listings. An empty ChildID matches every child.
type AttemptFilter struct {
	ChildID string
}

// AnswerResult summarizes the outcome of one submission.
type AnswerResult struct {
	Correct       bool
	CorrectAnswer string
	Score         int
}

// Completion is returned when an attempt is marked complete.
type Completion struct {
	AttemptID      int64
	Score          int
	TotalQuestions int
	Percentage     int
	CompletedAt    time.Time
}

// ProgressEntry is one attempt as seen by a progress query.
type ProgressEntry struct {
	AttemptID      int64
	QuizID         int64
	ChildID        string
	QuizTitle      string
	Level          int
	BadgeName      string
	Score          int
	TotalQuestions int
	Percentage     int
	Completed      bool
	StartedAt      time.Time
	CompletedAt    *time.Time
}
