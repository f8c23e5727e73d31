package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"formalyze/internal/model"
	"formalyze/internal/service"
)

// AgentHandler drives AI-assisted survey authoring sessions
type AgentHandler struct {
	agentSvc *service.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentSvc *service.AgentService) *AgentHandler {
	return &AgentHandler{agentSvc: agentSvc}
}

// AgentMessageRequest carries the author's reply to the last agent question
type AgentMessageRequest struct {
	UserResponse string `json:"userResponse"`
}

// FinalizeRequest selects generated questions to save as a survey
type FinalizeRequest struct {
	Title             string `json:"title" validate:"max=200"`
	Description       string `json:"description" validate:"max=2000"`
	SelectedQuestions []int  `json:"selectedQuestions"`
}

// Start handles POST /v1/agent/sessions
func (h *AgentHandler) Start(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	turn, err := h.agentSvc.Start(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, turn)
}

// Message handles POST /v1/agent/sessions/{sessionId}/messages
func (h *AgentHandler) Message(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AgentMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	turn, err := h.agentSvc.Process(r.Context(), ownerID, mux.Vars(r)["sessionId"], req.UserResponse)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

// Questions handles GET /v1/agent/sessions/{sessionId}/questions
func (h *AgentHandler) Questions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	drafts, err := h.agentSvc.Questions(r.Context(), ownerID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []model.QuestionDraft{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": drafts})
}

// Finalize handles POST /v1/agent/sessions/{sessionId}/finalize
func (h *AgentHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req FinalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	survey, err := h.agentSvc.Finalize(r.Context(), ownerID, mux.Vars(r)["sessionId"], req.Title, req.Description, req.SelectedQuestions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, survey)
}
