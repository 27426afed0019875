package models

// Question is a multiple choice question used by quiz blocks and persisted quizzes
type Question struct {
	QuestionText string   `json:"questionText" validate:"notblank" example:"2+2 ?"`
	Options      []Option `json:"options" validate:"min=2,dive"`
}

// Option is one answer of a Question
type Option struct {
	Text      string `json:"text" validate:"notblank" example:"4"`
	IsCorrect bool   `json:"isCorrect"`
}

// PublicQuestion is a Question with the correctness flags stripped
type PublicQuestion struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// StripAnswers returns the questions without their correctness flags
func StripAnswers(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		options := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, o.Text)
		}
		public = append(public, PublicQuestion{QuestionText: q.QuestionText, Options: options})
	}
	return public
}

// SubmitAnswersRequest maps a question index to the selected option index
//
// Unanswered questions are absent from the map.
type SubmitAnswersRequest struct {
	Answers map[int]int `json:"answers" swaggertype:"object,integer" example:"0:1"`
}

// ScoreResponse represents the score of a one-shot quiz submission
type ScoreResponse struct {
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Score   string `json:"score" example:"1 / 1"`
}
