package domain

import (
	"errors"
	"testing"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 3, 0},
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
		{1, 8, 13},
		{3, 8, 38},
		{5, 8, 63},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"child":       RoleChild,
		" Parent ":    RoleParent,
		"TEACHER":     RoleTeacher,
		"counselor":   RoleCounselor,
		"admin":       RoleUnknown,
		"":            RoleUnknown,
		"child-admin": RoleUnknown,
	}
	for raw, want := range cases {
		if got := ParseRole(raw); got != want {
			t.Fatalf("ParseRole(%q) = %v, want %v", raw, got, want)
		}
	}
	if !RoleCounselor.Privileged() || !RoleTeacher.Privileged() {
		t.Fatalf("expected teacher and counselor to be privileged")
	}
	if RoleParent.Privileged() || RoleChild.Privileged() {
		t.Fatalf("expected parent and child to be unprivileged")
	}
}

func TestErrorKinds(t *testing.T) {
	if !errors.Is(ErrQuizNotFound, ErrNotFound) || ErrQuizNotFound.Error() != "quiz not found" {
		t.Fatalf("unexpected quiz not found error: %v", ErrQuizNotFound)
	}
	if !errors.Is(ErrAttemptCompleted, ErrInvalidInput) {
		t.Fatalf("expected attempt completed to be invalid input")
	}
	err := Invalid("attemptId is required.")
	if !errors.Is(err, ErrInvalidInput) || err.Error() != "attemptId is required." {
		t.Fatalf("unexpected invalid error: %v", err)
	}
}

func TestHasCorrectOption(t *testing.T) {
	q := Question{Options: []string{"A", "B"}, CorrectAnswer: "B"}
	if !q.HasCorrectOption() {
		t.Fatalf("expected B to be an option")
	}
	q.CorrectAnswer = "b"
	if q.HasCorrectOption() {
		t.Fatalf("expected case-sensitive match")
	}
}

func TestQuizCloneDoesNotShareOptions(t *testing.T) {
	quiz := Quiz{ID: 1, Questions: []Question{{ID: 1, Options: []string{"A", "B"}}}}
	clone := quiz.Clone()
	clone.Questions[0].Options[0] = "Z"
	if quiz.Questions[0].Options[0] != "A" {
		t.Fatalf("clone mutated source options")
	}
	if quiz.Summary().QuestionCount != 1 {
		t.Fatalf("expected question count 1")
	}
}
