package service

import (
	"context"

	"formalyze/internal/model"
)

// SurveyAgent drives an AI-assisted authoring conversation.
// Implementations may keep their own state but must record every
// exchanged message on the conversation.
type SurveyAgent interface {
	Start(ctx context.Context, conv *model.Conversation) (string, error)
	Process(ctx context.Context, conv *model.Conversation, userResponse string) (string, bool, error)
	Questions(ctx context.Context, conv *model.Conversation) ([]model.QuestionDraft, error)
	Finalize(ctx context.Context, conv *model.Conversation, selected []int) error
}
