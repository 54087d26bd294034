package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// ChatStore is the slice of the chat repository the engine needs
type ChatStore interface {
	CreateConversation(ctx context.Context, users []string, uuid string) error
	FindByUsers(ctx context.Context, userA, userB string) (*models.Conversation, error)
	ApplyMessage(ctx context.Context, uuid, senderID string, unread bool) error
	ResetUnread(ctx context.Context, uuid string) error
}

// MessageStore is the slice of the message repository the engine needs
type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
}

// Engine consumes inbound realtime events, resolves the recipient's live
// connection through the Registry and either delivers in-process or records
// the message durably as unread. Store failures here are logged and
// swallowed: message durability problems must not crash the realtime loop,
// and callers needing stronger guarantees poll the chat store over HTTP.
type Engine struct {
	registry *Registry
	chats    ChatStore
	messages MessageStore
	log      logrus.FieldLogger
}

// NewEngine creates a new delivery Engine
func NewEngine(registry *Registry, chats ChatStore, messages MessageStore, log logrus.FieldLogger) *Engine {
	return &Engine{
		registry: registry,
		chats:    chats,
		messages: messages,
		log:      log,
	}
}

// Registry exposes the presence registry backing this engine
func (e *Engine) Registry() *Registry {
	return e.registry
}

// HandleAddUser binds the connection to a user identity
func (e *Engine) HandleAddUser(p Peer, userID string) {
	if userID == "" {
		return
	}
	e.registry.Register(userID, p)
}

// HandleSendMessage runs the delivery sequence for an inbound message: push
// to the receiver when online, lazily create the conversation on a first
// message, persist as unread when the receiver is offline. The offline branch
// trusts the registry lookup made here; the source system decided the same
// way and the race against a concurrent registration is accepted.
func (e *Engine) HandleSendMessage(ctx context.Context, msg MessagePayload, meta DeliveryMeta) {
	if msg.ChatID == "" {
		msg.ChatID = uuid.NewString()
	}

	receiver, online := e.registry.Lookup(meta.ReceiverID)
	if online {
		if err := receiver.SendEvent(EventAddMessage, AddMessageData{Message: msg, IsNew: meta.IsNew}); err != nil {
			e.log.WithError(err).WithField("receiver_id", meta.ReceiverID).Warn("live delivery failed")
		}
	}

	if meta.IsNew {
		_, err := e.chats.FindByUsers(ctx, msg.SenderID, meta.ReceiverID)
		if err == repositories.ErrNotFound {
			err = e.chats.CreateConversation(ctx, []string{msg.SenderID, meta.ReceiverID}, msg.ChatID)
		}
		if err != nil {
			e.log.WithError(err).WithField("chat_id", msg.ChatID).Error("failed to ensure conversation")
		}
	}

	if !online {
		e.persistMessage(ctx, msg, true)
	}
}

// HandleTyping forwards typing state to the peer's live connection. Best
// effort only: nothing is persisted and an offline peer drops the event.
func (e *Engine) HandleTyping(p Peer, receiverID string, status bool) {
	senderID, _ := e.registry.UserOf(p)
	receiver, ok := e.registry.Lookup(receiverID)
	if !ok {
		return
	}
	if err := receiver.SendEvent(EventIsTyping, TypingData{SenderID: senderID, Status: status}); err != nil {
		e.log.WithError(err).WithField("receiver_id", receiverID).Debug("typing forward failed")
	}
}

// HandleUnreadStatus persists a delivered message with the receiver-reported
// unread flag. When the receiver acknowledges it as read, the original
// sender's live connection is told the conversation was read.
func (e *Engine) HandleUnreadStatus(ctx context.Context, msg MessagePayload, unread bool) {
	if !unread {
		if sender, ok := e.registry.Lookup(msg.SenderID); ok {
			if err := sender.SendEvent(EventMessageRead, MessageReadData{ChatID: msg.ChatID}); err != nil {
				e.log.WithError(err).WithField("sender_id", msg.SenderID).Warn("read notice failed")
			}
		}
	}
	e.persistMessage(ctx, msg, unread)
}

// HandleMessageRead resets the conversation's unread state and notifies the
// peer's live connection that the conversation was read
func (e *Engine) HandleMessageRead(ctx context.Context, chatID, receiverID string) {
	if peer, ok := e.registry.Lookup(receiverID); ok {
		if err := peer.SendEvent(EventMessageRead, MessageReadData{ChatID: chatID}); err != nil {
			e.log.WithError(err).WithField("receiver_id", receiverID).Warn("read notice failed")
		}
	}
	if err := e.chats.ResetUnread(ctx, chatID); err != nil {
		e.log.WithError(err).WithField("chat_id", chatID).Error("failed to reset unread state")
	}
}

// HandleDisconnect tears down the connection's presence entry. Deliveries
// already dispatched are not retried.
func (e *Engine) HandleDisconnect(p Peer) {
	e.registry.Unregister(p)
}

// persistMessage appends the message and records its unread metadata on the
// conversation. Both writes are best effort at this layer.
func (e *Engine) persistMessage(ctx context.Context, msg MessagePayload, unread bool) {
	message := &models.Message{
		ChatID:   msg.ChatID,
		SenderID: msg.SenderID,
		Body:     msg.Body,
	}
	if err := e.messages.CreateMessage(ctx, message); err != nil {
		e.log.WithError(err).WithField("chat_id", msg.ChatID).Error("failed to persist message")
		return
	}
	if err := e.chats.ApplyMessage(ctx, msg.ChatID, msg.SenderID, unread); err != nil {
		e.log.WithError(err).WithField("chat_id", msg.ChatID).Error("failed to update conversation metadata")
	}
}
