package normalizer

import "formalyze/internal/model"

var defaultDrafts = []model.QuestionDraft{
	{
		QuestionText: "What is your overall impression?",
		QuestionType: string(model.DraftText),
		Required:     true,
	},
	{
		QuestionText: "How did you hear about us?",
		QuestionType: string(model.DraftMultipleChoice),
		Options:      []string{"Search engine", "Social media", "Friend or colleague", "Other"},
	},
	{
		QuestionText: "Which of these features do you use? (select all that apply)",
		QuestionType: string(model.DraftMultipleChoice),
		Options:      []string{"Surveys", "Reports", "Sharing"},
	},
}

// DefaultQuestions is the fallback question set used when a survey would
// otherwise be saved without questions: one short answer, one single-select
// question with four choices and one multi-select question with three.
func DefaultQuestions() []model.PersistedQuestion {
	out := make([]model.PersistedQuestion, len(defaultDrafts))
	for i, d := range defaultDrafts {
		out[i] = NormalizeQuestion(i, d)
	}
	return out
}
