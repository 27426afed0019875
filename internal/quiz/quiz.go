// Package quiz scores multiple choice submissions and checks quiz authoring rules
package quiz

import (
	"fmt"

	"github.com/madaure/backend/internal/models"
)

// Result is the outcome of scoring a submission
type Result struct {
	Correct int
	Total   int
}

// String formats the result as "correct / total"
func (r Result) String() string {
	return fmt.Sprintf("%d / %d", r.Correct, r.Total)
}

// Percentage returns the rounded-down share of correct answers, 0 for an empty quiz
func (r Result) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return r.Correct * 100 / r.Total
}

// Passed reports whether the percentage reaches minScoreToPass
func (r Result) Passed(minScoreToPass int) bool {
	return r.Percentage() >= minScoreToPass
}

// Response converts the result to its API form
func (r Result) Response() models.ScoreResponse {
	return models.ScoreResponse{Correct: r.Correct, Total: r.Total, Score: r.String()}
}

// Score counts the questions whose selected option is flagged correct
//
// selections maps a question index to an option index. Unanswered questions,
// unknown question indexes and out of range options all count as wrong.
func Score(questions []models.Question, selections map[int]int) Result {
	result := Result{Total: len(questions)}
	for i, q := range questions {
		selected, ok := selections[i]
		if !ok || selected < 0 || selected >= len(q.Options) {
			continue
		}
		if q.Options[selected].IsCorrect {
			result.Correct++
		}
	}
	return result
}

// CheckAuthoring returns field messages for questions that do not have exactly one correct option
//
// Keys are relative to the questions slice, e.g. "questions[1].options".
// Structural rules (non blank text, at least two options) are enforced by validation tags.
func CheckAuthoring(questions []models.Question) map[string]string {
	fields := map[string]string{}
	for i, q := range questions {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			fields[fmt.Sprintf("questions[%d].options", i)] = "chaque question doit avoir exactement une bonne réponse"
		}
	}
	return fields
}
