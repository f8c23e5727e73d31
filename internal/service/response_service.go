package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"formalyze/internal/cache"
	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/repository"
)

// ResponseService accepts and lists survey submissions
type ResponseService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	resultsCache cache.ResultsCache
	broadcaster  Broadcaster
	log          logger.Logger
}

// NewResponseService creates a new response service
func NewResponseService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, resultsCache cache.ResultsCache) *ResponseService {
	return &ResponseService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		resultsCache: resultsCache,
		log:          logger.With("component", "response_service"),
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit validates answers against the survey and stores them
func (s *ResponseService) Submit(ctx context.Context, surveyID string, answers []model.Answer) (*model.Response, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if !survey.IsActive {
		return nil, ErrSurveyInactive
	}

	if err := ValidateAnswers(survey, answers); err != nil {
		return nil, err
	}

	response := &model.Response{
		SurveyID:    surveyID,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}
	if _, err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if s.resultsCache != nil {
		if err := s.resultsCache.Invalidate(ctx, surveyID); err != nil {
			s.log.Warn("failed to invalidate results cache", "surveyId", surveyID, "error", err)
		}
	}

	if s.broadcaster != nil {
		payload := map[string]interface{}{
			"surveyId":    surveyID,
			"responseId":  response.ID,
			"submittedAt": response.SubmittedAt,
		}
		if total, err := s.responseRepo.CountBySurvey(ctx, surveyID); err == nil {
			payload["totalResponses"] = total
		}
		s.broadcaster.BroadcastToOwner(surveyID, MsgResponseSubmitted, payload)
	}

	s.log.Debug("response stored", "surveyId", surveyID, "responseId", response.ID)
	return response, nil
}

// List returns a survey's responses in submission order
func (s *ResponseService) List(ctx context.Context, ownerID, surveyID string) ([]*model.Response, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}
	return s.responseRepo.ListBySurvey(ctx, surveyID)
}

// ValidateAnswers checks a submission against the survey's questions
func ValidateAnswers(survey *model.Survey, answers []model.Answer) error {
	verr := &model.ValidationError{}
	seen := make(map[string]bool, len(answers))

	for i := range answers {
		a := &answers[i]
		field := fmt.Sprintf("answers[%d]", i)

		q, ok := survey.Question(a.QuestionID)
		if !ok {
			verr.Add(field, "unknown question %q", a.QuestionID)
			continue
		}
		if seen[a.QuestionID] {
			verr.Add(field, "duplicate answer for %s", a.QuestionID)
			continue
		}
		seen[a.QuestionID] = true

		if !a.HasValue() {
			continue
		}
		validateValue(verr, field, q, a.Value)
	}

	for _, q := range survey.Questions {
		if !q.Required {
			continue
		}
		if a, ok := findAnswer(answers, q.ID); !ok || !a.HasValue() {
			verr.Add(q.ID, "answer is required")
		}
	}

	return verr.OrNil()
}

func validateValue(verr *model.ValidationError, field string, q *model.PersistedQuestion, value any) {
	if q.QuestionType == model.QuestionTypeMultipleChoiceMultiple {
		items, ok := sequence(value)
		if !ok {
			verr.Add(field, "%s expects a list of choices", q.ID)
			return
		}
		picked := make(map[string]bool, len(items))
		for _, item := range items {
			text, ok := ScalarText(item)
			if !ok {
				verr.Add(field, "%s expects a list of choices", q.ID)
				return
			}
			c, found := q.FindChoice(text)
			if !found {
				verr.Add(field, "%q is not a choice of %s", text, q.ID)
				continue
			}
			if picked[c.ID] {
				verr.Add(field, "%q repeats choice %s of %s", text, c.ID, q.ID)
				continue
			}
			picked[c.ID] = true
		}
		return
	}

	text, ok := ScalarText(value)
	if !ok {
		verr.Add(field, "%s expects a single value", q.ID)
		return
	}
	if q.QuestionType.HasChoices() {
		if _, found := q.FindChoice(text); !found {
			verr.Add(field, "%q is not a choice of %s", text, q.ID)
		}
	}
}

func findAnswer(answers []model.Answer, questionID string) (*model.Answer, bool) {
	for i := range answers {
		if answers[i].QuestionID == questionID {
			return &answers[i], true
		}
	}
	return nil, false
}

func sequence(v any) ([]any, bool) {
	switch items := v.(type) {
	case []any:
		return items, true
	case []string:
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// ScalarText renders a scalar answer value as text. Numbers are
// formatted without trailing zeros so 3.0 matches the choice "3".
func ScalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
