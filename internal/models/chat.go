package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation binds an unordered pair of user ids to a shared message thread
// and its unread metadata. It is created lazily on the first message between a
// pair and there is never more than one per pair. UUID is the stable id the
// realtime layer and clients address the thread by.
type Conversation struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UUID                string             `json:"uuid" bson:"uuid"`
	Users               []string           `json:"users,omitempty" bson:"users"`
	UnreadCount         int                `json:"unread_count" bson:"unread_count"`
	LastMessageSenderID string             `json:"last_message_sender_id" bson:"last_message_sender_id"`
	LastMessageTime     time.Time          `json:"last_message_time" bson:"last_message_time"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
}

// Message is a single chat message. Append-only, immutable once created.
type Message struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ChatID    string             `json:"chat_id" bson:"chat_id"` // conversation uuid
	SenderID  string             `json:"sender_id" bson:"sender_id"`
	Body      string             `json:"body" bson:"body"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ConversationSummary is the list shape for a user's conversations, with the
// peer resolved out of the unordered pair
type ConversationSummary struct {
	UUID                string `json:"uuid"`
	UserID              string `json:"user_id"`
	Username            string `json:"username"`
	UnreadCount         int    `json:"unread_count"`
	LastMessageSenderID string `json:"last_message_sender_id"`
}
