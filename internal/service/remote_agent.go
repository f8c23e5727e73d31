package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"formalyze/internal/config"
	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/normalizer"
)

// SessionHeader carries the conversation id to the remote agent
const SessionHeader = "x-session-id"

// RemoteAgent forwards the authoring conversation to an external agent API
type RemoteAgent struct {
	http *resty.Client
	log  logger.Logger
}

// NewRemoteAgent creates a client for the agent API at cfg.APIURL
func NewRemoteAgent(cfg config.AgentConfig) *RemoteAgent {
	return &RemoteAgent{
		http: resty.New().
			SetBaseURL(cfg.APIURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		log: logger.With("component", "remote_agent"),
	}
}

func (a *RemoteAgent) Start(ctx context.Context, conv *model.Conversation) (string, error) {
	body, err := a.call(ctx, conv, resty.MethodPost, "/start", map[string]interface{}{})
	if err != nil {
		return "", err
	}
	question := gjson.GetBytes(body, "question").String()
	conv.Say(question)
	return question, nil
}

func (a *RemoteAgent) Process(ctx context.Context, conv *model.Conversation, userResponse string) (string, bool, error) {
	body, err := a.call(ctx, conv, resty.MethodPost, "/process", map[string]interface{}{
		"userResponse": userResponse,
	})
	if err != nil {
		return "", false, err
	}
	conv.Hear(userResponse)

	question := gjson.GetBytes(body, "question").String()
	complete := gjson.GetBytes(body, "isComplete").Bool()
	conv.Say(question)
	conv.Complete = complete
	return question, complete, nil
}

func (a *RemoteAgent) Questions(ctx context.Context, conv *model.Conversation) ([]model.QuestionDraft, error) {
	if len(conv.Generated) > 0 {
		return conv.Generated, nil
	}

	body, err := a.call(ctx, conv, resty.MethodGet, "/survey", nil)
	if err != nil {
		return nil, err
	}
	drafts, err := normalizer.DraftsFromResult(gjson.GetBytes(body, "questions"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentFailed, err)
	}
	conv.Generated = drafts
	return drafts, nil
}

func (a *RemoteAgent) Finalize(ctx context.Context, conv *model.Conversation, selected []int) error {
	if selected == nil {
		selected = []int{}
	}
	_, err := a.call(ctx, conv, resty.MethodPost, "/finalize", map[string]interface{}{
		"selectedQuestions": selected,
	})
	return err
}

func (a *RemoteAgent) call(ctx context.Context, conv *model.Conversation, method, path string, payload interface{}) ([]byte, error) {
	req := a.http.R().
		SetContext(ctx).
		SetHeader(SessionHeader, conv.ID)
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		a.log.Error("agent request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAgentFailed, err)
	}
	if resp.IsError() {
		msg := gjson.GetBytes(resp.Body(), "error").String()
		if msg == "" {
			msg = resp.Status()
		}
		a.log.Warn("agent returned an error", "path", path, "status", resp.StatusCode(), "message", msg)
		return nil, fmt.Errorf("%w: %s", ErrAgentFailed, msg)
	}
	return resp.Body(), nil
}
