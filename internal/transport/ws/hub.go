package ws

import (
	"encoding/json"
	"sync"

	"formalyze/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Owner feed message types
const (
	MsgConnected         MessageType = "connected"
	MsgResponseSubmitted MessageType = "response_submitted"
	MsgSurveyUpdated     MessageType = "survey_updated"
	MsgSurveyDeleted     MessageType = "survey_deleted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans survey events out to the owners watching them
type Hub struct {
	// surveyID -> open connections
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	disconnect chan string
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log logger.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SurveyID string
	UserID   string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message for every owner connection of a survey
type BroadcastMessage struct {
	SurveyID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		disconnect: make(chan string),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        logger.With("component", "ws_hub"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SurveyID] == nil {
				h.conns[conn.SurveyID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SurveyID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("owner connected", "surveyId", conn.SurveyID, "userId", conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.SurveyID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.SurveyID)
					}
					h.log.Debug("owner disconnected", "surveyId", conn.SurveyID, "userId", conn.UserID)
				}
			}
			h.mu.Unlock()

		case surveyID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.conns[surveyID] {
				close(conn.Send)
			}
			delete(h.conns, surveyID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("failed to encode message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.SurveyID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
			}
			h.conns = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToOwner sends a message to every connection watching the survey (implements service.Broadcaster)
func (h *Hub) BroadcastToOwner(surveyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode payload", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SurveyID: surveyID,
		Message:  &Message{Type: MessageType(msgType), Payload: data},
	}:
	case <-h.done:
	}
}

// DisconnectSurvey closes every connection watching the survey (implements service.Broadcaster)
func (h *Hub) DisconnectSurvey(surveyID string) {
	select {
	case h.disconnect <- surveyID:
	case <-h.done:
	}
}

// ConnectionCount returns the number of open connections for a survey
func (h *Hub) ConnectionCount(surveyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[surveyID])
}

// Close stops the hub and closes all connections
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
