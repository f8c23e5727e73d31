package service

import "errors"

var (
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrForbidden       = errors.New("survey belongs to another user")
	ErrSurveyInactive  = errors.New("survey is not accepting responses")
	ErrQuestionsLocked = errors.New("questions cannot be replaced once responses exist")
	ErrSessionNotFound = errors.New("agent session not found")
	ErrAgentFailed     = errors.New("survey agent request failed")
)
