package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"formalyze/internal/model"
	"formalyze/internal/normalizer"
	"formalyze/internal/service"
	"formalyze/internal/transport/rest/middleware"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// SurveyRequest is the request body for creating or updating a survey.
// Questions are drafts in any of the accepted shapes and are normalized on save.
type SurveyRequest struct {
	Title       string          `json:"title" validate:"max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Questions   json.RawMessage `json:"questions"`
}

// AppendQuestionsRequest is the request body for adding questions
type AppendQuestionsRequest struct {
	Questions json.RawMessage `json:"questions"`
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SurveyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	drafts, err := normalizer.ParseDrafts(req.Questions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	survey, err := h.surveySvc.CreateFromDrafts(r.Context(), ownerID, req.Title, req.Description, drafts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, survey)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	surveys, err := h.surveySvc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if surveys == nil {
		surveys = []*model.Survey{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	survey, err := h.surveySvc.GetOwned(r.Context(), ownerID, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SurveyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	drafts, err := normalizer.ParseDrafts(req.Questions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	survey, err := h.surveySvc.Update(r.Context(), ownerID, mux.Vars(r)["surveyId"], req.Title, req.Description, drafts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.surveySvc.Delete(r.Context(), ownerID, mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AppendQuestions handles POST /v1/surveys/{surveyId}/questions
func (h *SurveyHandler) AppendQuestions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AppendQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	drafts, err := normalizer.ParseDrafts(req.Questions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(drafts) == 0 {
		verr := &model.ValidationError{}
		verr.Add("questions", "at least one question is required")
		writeValidation(w, verr)
		return
	}

	survey, err := h.surveySvc.AppendQuestions(r.Context(), ownerID, mux.Vars(r)["surveyId"], drafts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// Activate handles POST /v1/surveys/{surveyId}/activate
func (h *SurveyHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /v1/surveys/{surveyId}/deactivate
func (h *SurveyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *SurveyHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	survey, err := h.surveySvc.SetActive(r.Context(), ownerID, mux.Vars(r)["surveyId"], active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// Normalize handles POST /v1/normalize.
// The body is a draft array, or an object carrying one under "questions".
func (h *SurveyHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if parsed := gjson.ParseBytes(body); parsed.IsObject() {
		questions := parsed.Get("questions")
		if !questions.Exists() {
			writeServiceError(w, r, &normalizer.InvalidInputError{Reason: "object payload has no questions array"})
			return
		}
		body = []byte(questions.Raw)
	}

	drafts, err := normalizer.ParseDrafts(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	questions := h.surveySvc.Preview(drafts)
	if questions == nil {
		questions = []model.PersistedQuestion{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
