package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"formalyze/internal/cache"
	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/normalizer"
	"formalyze/internal/repository"
)

// DefaultSurveyTitle is used when a survey is saved without a title
const DefaultSurveyTitle = "Untitled survey"

// SurveyService handles survey authoring
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	resultsCache cache.ResultsCache
	normalizer   *normalizer.Normalizer
	broadcaster  Broadcaster
	log          logger.Logger
}

// NewSurveyService creates a new survey service. resultsCache may be nil.
func NewSurveyService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, resultsCache cache.ResultsCache, norm *normalizer.Normalizer) *SurveyService {
	if norm == nil {
		norm = normalizer.New(nil)
	}
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		resultsCache: resultsCache,
		normalizer:   norm,
		log:          logger.With("component", "survey_service"),
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateFromDrafts normalizes drafts and saves an active survey.
// An empty draft list is replaced by the default question set.
func (s *SurveyService) CreateFromDrafts(ctx context.Context, ownerID, title, description string, drafts []model.QuestionDraft) (*model.Survey, error) {
	survey := &model.Survey{
		Title:       titleOrDefault(title),
		Description: strings.TrimSpace(description),
		CreatedBy:   ownerID,
		Questions:   s.questionsFor(drafts),
		IsActive:    true,
	}

	if _, err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to save survey: %w", err)
	}

	s.log.Info("survey created", "surveyId", survey.ID, "owner", ownerID, "questions", len(survey.Questions))
	return survey, nil
}

// Get retrieves a survey by ID
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

// GetOwned retrieves a survey and checks it belongs to ownerID
func (s *SurveyService) GetOwned(ctx context.Context, ownerID, id string) (*model.Survey, error) {
	return ownedSurvey(ctx, s.surveyRepo, ownerID, id)
}

// GetPublic retrieves a survey that is open for responses
func (s *SurveyService) GetPublic(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, ErrSurveyInactive
	}
	return survey, nil
}

// ListByOwner returns the owner's surveys, newest first
func (s *SurveyService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Survey, error) {
	return s.surveyRepo.ListByOwner(ctx, ownerID)
}

// Update replaces the survey's metadata. When drafts are given the
// question list is replaced by their normalized form, which is only
// allowed while the survey has no responses.
func (s *SurveyService) Update(ctx context.Context, ownerID, id, title, description string, drafts []model.QuestionDraft) (*model.Survey, error) {
	survey, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if len(drafts) > 0 {
		count, err := s.responseRepo.CountBySurvey(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}
		if count > 0 {
			return nil, ErrQuestionsLocked
		}
		survey.Questions = s.normalizer.Normalize(drafts)
	}
	survey.Title = titleOrDefault(title)
	survey.Description = strings.TrimSpace(description)

	return s.save(ctx, survey)
}

// AppendQuestions adds drafts after the existing questions. Existing
// question and choice ids survive re-drafting, so stored answers stay valid.
func (s *SurveyService) AppendQuestions(ctx context.Context, ownerID, id string, drafts []model.QuestionDraft) (*model.Survey, error) {
	survey, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return survey, nil
	}

	combined := make([]model.QuestionDraft, 0, len(survey.Questions)+len(drafts))
	for _, q := range survey.Questions {
		combined = append(combined, normalizer.Redraft(q))
	}
	combined = append(combined, drafts...)
	survey.Questions = s.normalizer.Normalize(combined)

	return s.save(ctx, survey)
}

// SetActive opens or closes a survey for responses
func (s *SurveyService) SetActive(ctx context.Context, ownerID, id string, active bool) (*model.Survey, error) {
	survey, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.surveyRepo.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}
	survey.IsActive = active
	s.invalidateResults(ctx, id)

	s.broadcast(id, MsgSurveyUpdated, map[string]interface{}{"surveyId": id, "isActive": active})
	return survey, nil
}

// Delete removes a survey together with its responses
func (s *SurveyService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}

	deleted, err := s.responseRepo.DeleteBySurvey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.invalidateResults(ctx, id)

	s.log.Info("survey deleted", "surveyId", id, "responses", deleted)
	s.broadcast(id, MsgSurveyDeleted, map[string]interface{}{"surveyId": id})
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSurvey(id)
	}
	return nil
}

// Preview normalizes drafts without persisting anything
func (s *SurveyService) Preview(drafts []model.QuestionDraft) []model.PersistedQuestion {
	return s.normalizer.Normalize(drafts)
}

func (s *SurveyService) save(ctx context.Context, survey *model.Survey) (*model.Survey, error) {
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}
	s.invalidateResults(ctx, survey.ID)
	s.broadcast(survey.ID, MsgSurveyUpdated, map[string]interface{}{"surveyId": survey.ID, "questions": len(survey.Questions)})
	return survey, nil
}

func (s *SurveyService) questionsFor(drafts []model.QuestionDraft) []model.PersistedQuestion {
	questions := s.normalizer.Normalize(drafts)
	if len(questions) == 0 {
		s.log.Info("no questions supplied, using default set")
		return normalizer.DefaultQuestions()
	}
	return questions
}

func (s *SurveyService) invalidateResults(ctx context.Context, surveyID string) {
	if s.resultsCache == nil {
		return
	}
	if err := s.resultsCache.Invalidate(ctx, surveyID); err != nil {
		s.log.Warn("failed to invalidate results cache", "surveyId", surveyID, "error", err)
	}
}

func (s *SurveyService) broadcast(surveyID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOwner(surveyID, msgType, payload)
	}
}

func ownedSurvey(ctx context.Context, repo repository.SurveyRepo, ownerID, id string) (*model.Survey, error) {
	survey, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if survey.CreatedBy != ownerID {
		return nil, ErrForbidden
	}
	return survey, nil
}

func titleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return DefaultSurveyTitle
}
