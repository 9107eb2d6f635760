package chat

import "encoding/json"

// Inbound event names.
const (
	EventAdminJoin   = "admin-join"
	EventClientJoin  = "client-join"
	EventSendMessage = "send-message"
	EventTypingStart = "typing-start"
	EventTypingStop  = "typing-stop"
)

// Outbound event names.
const (
	EventConnected           = "connected"
	EventConversationsList   = "conversations-list"
	EventNewConversation     = "new-conversation"
	EventMessage             = "message"
	EventUserTyping          = "user-typing"
	EventConversationUpdated = "conversation-updated"
	EventError               = "error"
)

// Sender roles carried in message and typing payloads.
const (
	SenderClient = "client"
	SenderAdmin  = "admin"
)

// Envelope is the wire frame exchanged in both directions: an event name
// plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type AdminJoinData struct {
	Token string `json:"token,omitempty"`
}

type ClientJoinData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SendMessageData struct {
	Text           string `json:"text"`
	Sender         string `json:"sender"`
	ConversationID string `json:"conversationId,omitempty"`
}

type TypingData struct {
	Sender         string `json:"sender"`
	ConversationID string `json:"conversationId,omitempty"`
}

// TypingNotice is the user-typing payload. ConversationID is set only on
// admin-bound notices; a client has exactly one conversation, its own.
type TypingNotice struct {
	ConversationID string `json:"conversationId,omitempty"`
	IsTyping       bool   `json:"isTyping"`
}

// ConnectedData is sent once right after the transport session opens.
type ConnectedData struct {
	ConnectionID string `json:"connectionId"`
}

// ErrorData is sent back on frames the server cannot decode.
type ErrorData struct {
	Text string `json:"text"`
}

// MessageDelivery is an outbound copy of a Message with the routing
// annotations the recipient needs: admin-bound copies carry the
// conversation id (and the client name for client-sent messages),
// client-bound copies carry neither.
type MessageDelivery struct {
	Message
	ConversationID string `json:"conversationId,omitempty"`
	ClientName     string `json:"clientName,omitempty"`
}
