package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"formalyze/internal/model"
	"formalyze/internal/service"
)

// ResponseHandler serves respondent submissions and owner results
type ResponseHandler struct {
	surveySvc   *service.SurveyService
	responseSvc *service.ResponseService
	resultsSvc  *service.ResultsService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(surveySvc *service.SurveyService, responseSvc *service.ResponseService, resultsSvc *service.ResultsService) *ResponseHandler {
	return &ResponseHandler{
		surveySvc:   surveySvc,
		responseSvc: responseSvc,
		resultsSvc:  resultsSvc,
	}
}

// SubmitResponseRequest is the request body for a respondent submission
type SubmitResponseRequest struct {
	Answers []model.Answer `json:"answers" validate:"dive"`
}

// PublicSurvey handles GET /v1/public/surveys/{surveyId}
func (h *ResponseHandler) PublicSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.GetPublic(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          survey.ID,
		"title":       survey.Title,
		"description": survey.Description,
		"questions":   survey.Questions,
	})
}

// Submit handles POST /v1/public/surveys/{surveyId}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.responseSvc.Submit(r.Context(), mux.Vars(r)["surveyId"], req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"responseId":  resp.ID,
		"submittedAt": resp.SubmittedAt,
	})
}

// List handles GET /v1/surveys/{surveyId}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	responses, err := h.responseSvc.List(r.Context(), ownerID, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if responses == nil {
		responses = []*model.Response{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

// Results handles GET /v1/surveys/{surveyId}/results
func (h *ResponseHandler) Results(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	results, err := h.resultsSvc.Summary(r.Context(), ownerID, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
