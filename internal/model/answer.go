package model

import "time"

// Answer is a respondent's answer to one question.
// Value is a string, number or bool for single-valued questions and
// a list of choice texts or ids for multiple_choice_multiple.
type Answer struct {
	QuestionID string `json:"question_id" bson:"question_id" validate:"required"`
	Value      any    `json:"answer" bson:"answer"`
}

// Response is one submission of a survey
type Response struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SurveyID    string    `json:"survey_id" bson:"survey_id"`
	Answers     []Answer  `json:"answers" bson:"answers"`
	SubmittedAt time.Time `json:"submitted_at" bson:"submitted_at"`
}

// AnswerFor returns the answer for a question id
func (r *Response) AnswerFor(questionID string) (*Answer, bool) {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i], true
		}
	}
	return nil, false
}

// HasValue reports whether the answer carries something other than an empty value
func (a *Answer) HasValue() bool {
	switch v := a.Value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return true
	}
}
