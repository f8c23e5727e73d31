package service

import (
	"context"
	"fmt"
	"time"

	"formalyze/internal/cache"
	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/repository"
)

// ResultsService aggregates responses for survey owners
type ResultsService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	cache        cache.ResultsCache
	log          logger.Logger
}

// NewResultsService creates a new results service
func NewResultsService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, resultsCache cache.ResultsCache) *ResultsService {
	return &ResultsService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		cache:        resultsCache,
		log:          logger.With("component", "results_service"),
	}
}

// Summary returns aggregated results, served from cache when fresh
func (s *ResultsService) Summary(ctx context.Context, ownerID, surveyID string) (*model.SurveyResults, error) {
	survey, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, surveyID)
		if err != nil {
			s.log.Warn("results cache read failed", "surveyId", surveyID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	responses, err := s.responseRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	results := Aggregate(survey, responses)

	if s.cache != nil {
		if err := s.cache.Set(ctx, results); err != nil {
			s.log.Warn("results cache write failed", "surveyId", surveyID, "error", err)
		}
	}
	return results, nil
}

// Aggregate builds per-question results from a list of responses
func Aggregate(survey *model.Survey, responses []*model.Response) *model.SurveyResults {
	results := &model.SurveyResults{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
		Questions:      make([]model.QuestionResult, len(survey.Questions)),
		GeneratedAt:    time.Now().UTC(),
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		qr := model.QuestionResult{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
		}
		counts := make(map[string]int, len(q.Choices))

		for _, resp := range responses {
			a, ok := resp.AnswerFor(q.ID)
			if !ok || !a.HasValue() {
				continue
			}
			qr.Answered++

			if !q.QuestionType.HasChoices() {
				if text, ok := ScalarText(a.Value); ok {
					qr.TextAnswers = append(qr.TextAnswers, text)
				}
				continue
			}

			values, ok := sequence(a.Value)
			if !ok {
				values = []any{a.Value}
			}
			// one vote per choice per respondent
			picked := make(map[string]bool, len(values))
			for _, v := range values {
				text, ok := ScalarText(v)
				if !ok {
					continue
				}
				if c, found := q.FindChoice(text); found && !picked[c.ID] {
					picked[c.ID] = true
					counts[c.ID]++
				}
			}
		}

		for _, c := range q.Choices {
			qr.Choices = append(qr.Choices, model.ChoiceCount{ChoiceID: c.ID, Text: c.Text, Count: counts[c.ID]})
		}
		results.Questions[i] = qr
	}

	if n := len(responses); n > 0 {
		last := responses[n-1].SubmittedAt
		results.LastResponseAt = &last
	}
	return results
}
