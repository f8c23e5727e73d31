package model

import "strings"

// QuestionType is the canonical, persisted question type
type QuestionType string

const (
	QuestionTypeShortAnswer            QuestionType = "short_answer"
	QuestionTypeMultipleChoiceSingle   QuestionType = "multiple_choice_single"
	QuestionTypeMultipleChoiceMultiple QuestionType = "multiple_choice_multiple"
)

// HasChoices reports whether questions of this type carry a choices list
func (t QuestionType) HasChoices() bool {
	return t == QuestionTypeMultipleChoiceSingle || t == QuestionTypeMultipleChoiceMultiple
}

// DraftType is the source label an AI suggestion arrives with
type DraftType string

const (
	DraftText           DraftType = "text"
	DraftMultipleChoice DraftType = "multiple_choice"
	DraftRating         DraftType = "rating"
	DraftBoolean        DraftType = "boolean"
	DraftUnknown        DraftType = ""
)

// ParseDraftType maps a free-form label onto the closed DraftType set.
// Anything unrecognized becomes DraftUnknown.
func ParseDraftType(s string) DraftType {
	switch DraftType(strings.ToLower(strings.TrimSpace(s))) {
	case DraftText:
		return DraftText
	case DraftMultipleChoice:
		return DraftMultipleChoice
	case DraftRating:
		return DraftRating
	case DraftBoolean:
		return DraftBoolean
	default:
		return DraftUnknown
	}
}

// QuestionDraft is a raw question suggestion before canonicalization
type QuestionDraft struct {
	QuestionText string   `json:"question_text" bson:"question_text"`
	QuestionType string   `json:"question_type" bson:"question_type"`
	Options      []string `json:"options,omitempty" bson:"options,omitempty"`
	Required     bool     `json:"required" bson:"required"`
}

// Type returns the draft's parsed source label
func (d QuestionDraft) Type() DraftType {
	return ParseDraftType(d.QuestionType)
}

// Choice is one selectable option of a choice-bearing question
type Choice struct {
	ID         string `json:"id" bson:"id"`
	Text       string `json:"text" bson:"text"`
	OrderIndex int    `json:"order_index" bson:"order_index"`
}

// PersistedQuestion is the canonical question stored on a survey
type PersistedQuestion struct {
	ID           string       `json:"id" bson:"id"`
	QuestionText string       `json:"question_text" bson:"question_text"`
	QuestionType QuestionType `json:"question_type" bson:"question_type"`
	Required     bool         `json:"required" bson:"required"`
	OrderIndex   int          `json:"order_index" bson:"order_index"`
	Choices      []Choice     `json:"choices,omitempty" bson:"choices,omitempty"`
}

// FindChoice looks a choice up by id or by text
func (q *PersistedQuestion) FindChoice(v string) (*Choice, bool) {
	for i := range q.Choices {
		if q.Choices[i].ID == v || q.Choices[i].Text == v {
			return &q.Choices[i], true
		}
	}
	return nil, false
}
