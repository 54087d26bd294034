package realtime

import "encoding/json"

// Events received from and emitted to connected clients
const (
	EventAddUser      = "add-user"
	EventSendMessage  = "send-message"
	EventAddMessage   = "add-message"
	EventIsTyping     = "is-typing"
	EventUnreadStatus = "unread-status"
	EventMessageRead  = "message-read"
)

// Envelope frames every event on the wire
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MessagePayload is the chat message as clients exchange it
type MessagePayload struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Body     string `json:"body"`
}

// DeliveryMeta rides alongside a send-message payload
type DeliveryMeta struct {
	ReceiverID string `json:"receiverId"`
	IsNew      bool   `json:"isNew"`
}

// AddUserData binds the connection to a user identity
type AddUserData struct {
	UserID string `json:"userId"`
}

// SendMessageData is the inbound send-message event
type SendMessageData struct {
	Message MessagePayload `json:"message"`
	Meta    DeliveryMeta   `json:"meta"`
}

// AddMessageData is the outbound add-message event to the receiving peer
type AddMessageData struct {
	Message MessagePayload `json:"message"`
	IsNew   bool           `json:"isNew"`
}

// TypingData carries typing state in both directions; SenderID is filled in
// by the server when forwarding
type TypingData struct {
	ReceiverID string `json:"receiverId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	Status     bool   `json:"status"`
}

// UnreadStatusData reports whether the receiver was actively viewing the
// conversation when the message arrived; Unread=true persists the message as
// unread, Unread=false acknowledges it as read
type UnreadStatusData struct {
	Message MessagePayload `json:"message"`
	Unread  bool           `json:"status"`
}

// MessageReadData resets a conversation's unread state
type MessageReadData struct {
	ChatID     string `json:"chatId"`
	ReceiverID string `json:"receiverId,omitempty"`
}
