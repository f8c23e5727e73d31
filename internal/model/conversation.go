package model

import "time"

type MessageRole string

const (
	RoleAssistant MessageRole = "assistant"
	RoleUser      MessageRole = "user"
)

// Message is one line of an authoring conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Requirements are the survey requirements gathered during a conversation
type Requirements struct {
	Purpose        string            `json:"purpose,omitempty"`
	Audience       string            `json:"audience,omitempty"`
	QuestionCount  int               `json:"questionCount,omitempty"`
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
}

// Conversation is the state of one AI-assisted authoring session
type Conversation struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"ownerId"`
	History []Message `json:"history"`

	MainIndex     int      `json:"mainIndex"`
	InFollowUp    bool     `json:"inFollowUp"`
	FollowUps     []string `json:"followUps,omitempty"`
	FollowUpIndex int      `json:"followUpIndex"`

	Requirements Requirements    `json:"requirements"`
	Complete     bool            `json:"complete"`
	Generated    []QuestionDraft `json:"generated,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Say appends an assistant message
func (c *Conversation) Say(content string) {
	c.History = append(c.History, Message{Role: RoleAssistant, Content: content})
}

// Hear appends a user message
func (c *Conversation) Hear(content string) {
	c.History = append(c.History, Message{Role: RoleUser, Content: content})
}

// LastAssistantMessage returns the most recent assistant message
func (c *Conversation) LastAssistantMessage() string {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Role == RoleAssistant {
			return c.History[i].Content
		}
	}
	return ""
}

// AgentTurn is returned after each conversation step
type AgentTurn struct {
	SessionID  string `json:"sessionId"`
	Question   string `json:"question"`
	IsComplete bool   `json:"isComplete"`
}
