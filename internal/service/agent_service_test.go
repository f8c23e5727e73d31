package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formalyze/internal/cache"
	"formalyze/internal/model"
)

type agentFixture struct {
	*surveyFixture
	conversations cache.ConversationCache
	svc           *AgentService
}

func newAgentFixture(t *testing.T) *agentFixture {
	_, client := newTestRedis(t)
	f := &agentFixture{surveyFixture: newSurveyFixture(), conversations: cache.NewConversationCache(client)}
	f.svc = NewAgentService(NewLocalAgent(nil), f.conversations, f.surveyFixture.svc)
	return f
}

func (f *agentFixture) complete(t *testing.T, owner string) string {
	t.Helper()
	ctx := context.Background()
	turn, err := f.svc.Start(ctx, owner)
	require.NoError(t, err)

	for _, answer := range []string{"Product feedback", "details", "Beta users", "details", "5", "details"} {
		_, err = f.svc.Process(ctx, owner, turn.SessionID, answer)
		require.NoError(t, err)
	}
	return turn.SessionID
}

func TestAgentService_Conversation(t *testing.T) {
	ctx := context.Background()

	t.Run("Should persist conversation state between turns", func(t *testing.T) {
		f := newAgentFixture(t)

		turn, err := f.svc.Start(ctx, "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, turn.SessionID)
		assert.Equal(t, questionPurpose, turn.Question)
		assert.False(t, turn.IsComplete)

		next, err := f.svc.Process(ctx, "u1", turn.SessionID, "Product feedback")
		require.NoError(t, err)
		assert.Equal(t, followUpDefault, next.Question)

		conv, err := f.conversations.Get(ctx, turn.SessionID)
		require.NoError(t, err)
		require.NotNil(t, conv)
		assert.Equal(t, "Product feedback", conv.Requirements.Purpose)
		assert.Len(t, conv.History, 3)
	})

	t.Run("Should reject empty answers, unknown sessions and other users", func(t *testing.T) {
		f := newAgentFixture(t)
		turn, err := f.svc.Start(ctx, "u1")
		require.NoError(t, err)

		_, err = f.svc.Process(ctx, "u1", turn.SessionID, "   ")
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)

		_, err = f.svc.Process(ctx, "u1", "missing", "hi there")
		assert.ErrorIs(t, err, ErrSessionNotFound)

		_, err = f.svc.Process(ctx, "u2", turn.SessionID, "hi there")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAgentService_Finalize(t *testing.T) {
	ctx := context.Background()

	t.Run("Should save all generated drafts and close the session", func(t *testing.T) {
		f := newAgentFixture(t)
		session := f.complete(t, "u1")

		drafts, err := f.svc.Questions(ctx, "u1", session)
		require.NoError(t, err)
		require.Len(t, drafts, 2)

		survey, err := f.svc.Finalize(ctx, "u1", session, "Beta survey", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "Beta survey", survey.Title)
		require.Len(t, survey.Questions, 2)
		assert.Equal(t, model.QuestionTypeMultipleChoiceSingle, survey.Questions[0].QuestionType)
		assert.Len(t, survey.Questions[0].Choices, 5)
		assert.Equal(t, model.QuestionTypeShortAnswer, survey.Questions[1].QuestionType)

		conv, err := f.conversations.Get(ctx, session)
		require.NoError(t, err)
		assert.Nil(t, conv)
	})

	t.Run("Should save only the selected drafts", func(t *testing.T) {
		f := newAgentFixture(t)
		session := f.complete(t, "u1")

		survey, err := f.svc.Finalize(ctx, "u1", session, "", "", []int{1})
		require.NoError(t, err)
		require.Len(t, survey.Questions, 1)
		assert.Equal(t, "q1", survey.Questions[0].ID)
		assert.Equal(t, "What could be improved?", survey.Questions[0].QuestionText)
	})

	t.Run("Should reject out of range selections", func(t *testing.T) {
		f := newAgentFixture(t)
		session := f.complete(t, "u1")

		_, err := f.svc.Finalize(ctx, "u1", session, "", "", []int{0, 7})
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "selectedQuestions", verr.Fields[0].Field)

		conv, err := f.conversations.Get(ctx, session)
		require.NoError(t, err)
		assert.NotNil(t, conv)
	})
}

type emptyAgent struct{ LocalAgent }

func (emptyAgent) Questions(context.Context, *model.Conversation) ([]model.QuestionDraft, error) {
	return []model.QuestionDraft{}, nil
}

func TestAgentService_FinalizeFallback(t *testing.T) {
	t.Run("Should use the default questions when the agent produced none", func(t *testing.T) {
		ctx := context.Background()
		f := newAgentFixture(t)
		f.svc = NewAgentService(&emptyAgent{LocalAgent: *NewLocalAgent(nil)}, f.conversations, f.surveyFixture.svc)

		turn, err := f.svc.Start(ctx, "u1")
		require.NoError(t, err)

		survey, err := f.svc.Finalize(ctx, "u1", turn.SessionID, "", "", nil)
		require.NoError(t, err)
		assert.Len(t, survey.Questions, 3)
	})
}
