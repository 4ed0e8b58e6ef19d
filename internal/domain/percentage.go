package domain

import "math"

// Percentage returns round(100*score/total), or 0 for quizzes without questions.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}
