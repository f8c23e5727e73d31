package model

import "time"

// ChoiceCount is the number of responses that picked a choice
type ChoiceCount struct {
	ChoiceID string `json:"choice_id"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// QuestionResult aggregates all answers to one question
type QuestionResult struct {
	QuestionID   string        `json:"question_id"`
	QuestionText string        `json:"question_text"`
	QuestionType QuestionType  `json:"question_type"`
	Answered     int           `json:"answered"`
	Choices      []ChoiceCount `json:"choices,omitempty"`
	TextAnswers  []string      `json:"text_answers,omitempty"`
}

// SurveyResults is the aggregated view of a survey's responses
type SurveyResults struct {
	SurveyID       string           `json:"survey_id"`
	Title          string           `json:"title"`
	TotalResponses int              `json:"total_responses"`
	Questions      []QuestionResult `json:"questions"`
	LastResponseAt *time.Time       `json:"last_response_at,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
