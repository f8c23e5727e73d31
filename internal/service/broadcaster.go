package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToOwner(surveyID string, msgType string, payload interface{})
	DisconnectSurvey(surveyID string)
}

// Live feed message types
const (
	MsgResponseSubmitted = "response_submitted"
	MsgSurveyUpdated     = "survey_updated"
	MsgSurveyDeleted     = "survey_deleted"
)
