package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"formalyze/internal/cache"
	"formalyze/internal/logger"
	"formalyze/internal/model"
)

// AgentService manages AI-assisted authoring sessions
type AgentService struct {
	agent         SurveyAgent
	conversations cache.ConversationCache
	surveys       *SurveyService
	log           logger.Logger
}

// NewAgentService creates a new agent service
func NewAgentService(agent SurveyAgent, conversations cache.ConversationCache, surveys *SurveyService) *AgentService {
	return &AgentService{
		agent:         agent,
		conversations: conversations,
		surveys:       surveys,
		log:           logger.With("component", "agent_service"),
	}
}

// Start opens a new session and returns the first question
func (s *AgentService) Start(ctx context.Context, ownerID string) (*model.AgentTurn, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	question, err := s.agent.Start(ctx, conv)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}

	s.log.Info("agent session started", "sessionId", conv.ID, "owner", ownerID)
	return &model.AgentTurn{SessionID: conv.ID, Question: question}, nil
}

// Process feeds the user's answer to the agent and returns its next question
func (s *AgentService) Process(ctx context.Context, ownerID, sessionID, userResponse string) (*model.AgentTurn, error) {
	if strings.TrimSpace(userResponse) == "" {
		verr := &model.ValidationError{}
		verr.Add("userResponse", "a response is required")
		return nil, verr
	}

	conv, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	question, complete, err := s.agent.Process(ctx, conv, userResponse)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}

	return &model.AgentTurn{SessionID: sessionID, Question: question, IsComplete: complete}, nil
}

// Questions returns the drafts generated from the conversation
func (s *AgentService) Questions(ctx context.Context, ownerID, sessionID string) ([]model.QuestionDraft, error) {
	conv, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.agent.Questions(ctx, conv)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}
	return drafts, nil
}

// Finalize saves a survey from the selected drafts and closes the session.
// An empty selection keeps every generated draft.
func (s *AgentService) Finalize(ctx context.Context, ownerID, sessionID, title, description string, selected []int) (*model.Survey, error) {
	conv, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.agent.Questions(ctx, conv)
	if err != nil {
		return nil, err
	}
	picked, err := pickDrafts(drafts, selected)
	if err != nil {
		return nil, err
	}

	survey, err := s.surveys.CreateFromDrafts(ctx, ownerID, title, description, picked)
	if err != nil {
		return nil, err
	}

	if err := s.agent.Finalize(ctx, conv, selected); err != nil {
		s.log.Warn("agent finalize failed", "sessionId", sessionID, "error", err)
	}
	if err := s.conversations.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to delete conversation", "sessionId", sessionID, "error", err)
	}

	s.log.Info("agent session finalized", "sessionId", sessionID, "surveyId", survey.ID)
	return survey, nil
}

func (s *AgentService) load(ctx context.Context, ownerID, sessionID string) (*model.Conversation, error) {
	conv, err := s.conversations.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrSessionNotFound
	}
	if conv.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return conv, nil
}

func (s *AgentService) save(ctx context.Context, conv *model.Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	if err := s.conversations.Set(ctx, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func pickDrafts(drafts []model.QuestionDraft, selected []int) ([]model.QuestionDraft, error) {
	if len(selected) == 0 {
		return drafts, nil
	}

	verr := &model.ValidationError{}
	picked := make([]model.QuestionDraft, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(drafts) {
			verr.Add("selectedQuestions", "index %d is out of range", idx)
			continue
		}
		picked = append(picked, drafts[idx])
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return picked, nil
}
