package realtime

import (
	"context"
	"io"
	"testing"

	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatStore struct {
	conversations []*models.Conversation
	applied       []appliedMessage
	resets        []string
}

type appliedMessage struct {
	uuid     string
	senderID string
	unread   bool
}

func (s *fakeChatStore) CreateConversation(ctx context.Context, users []string, uuid string) error {
	s.conversations = append(s.conversations, &models.Conversation{UUID: uuid, Users: users})
	return nil
}

func (s *fakeChatStore) FindByUsers(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	for _, c := range s.conversations {
		if len(c.Users) == 2 &&
			((c.Users[0] == userA && c.Users[1] == userB) || (c.Users[0] == userB && c.Users[1] == userA)) {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeChatStore) ApplyMessage(ctx context.Context, uuid, senderID string, unread bool) error {
	s.applied = append(s.applied, appliedMessage{uuid: uuid, senderID: senderID, unread: unread})
	return nil
}

func (s *fakeChatStore) ResetUnread(ctx context.Context, uuid string) error {
	s.resets = append(s.resets, uuid)
	return nil
}

type fakeMessageStore struct {
	messages []*models.Message
}

func (s *fakeMessageStore) CreateMessage(ctx context.Context, message *models.Message) error {
	s.messages = append(s.messages, message)
	return nil
}

func newTestEngine() (*Engine, *fakeChatStore, *fakeMessageStore) {
	chats := &fakeChatStore{}
	messages := &fakeMessageStore{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewEngine(NewRegistry(), chats, messages, logger), chats, messages
}

func TestAddUserBindsConnection(t *testing.T) {
	engine, _, _ := newTestEngine()
	peer := &fakePeer{}

	engine.HandleAddUser(peer, "alice")
	got, ok := engine.Registry().Lookup("alice")
	require.True(t, ok)
	assert.Same(t, peer, got.(*fakePeer))

	// an empty identity binds nothing
	engine.HandleAddUser(&fakePeer{}, "")
	_, ok = engine.Registry().Lookup("")
	assert.False(t, ok)
}

func TestSendMessageToOnlineReceiver(t *testing.T) {
	engine, _, messages := newTestEngine()
	receiver := &fakePeer{}
	engine.Registry().Register("bob", receiver)

	msg := MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "hey"}
	engine.HandleSendMessage(context.Background(), msg, DeliveryMeta{ReceiverID: "bob"})

	sent := receiver.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventAddMessage, sent[0].event)
	data := sent[0].data.(AddMessageData)
	assert.Equal(t, "hey", data.Message.Body)
	assert.False(t, data.IsNew)

	// delivered live: nothing hits the store
	assert.Empty(t, messages.messages)
}

func TestSendMessageToOfflineReceiverPersistsUnread(t *testing.T) {
	engine, chats, messages := newTestEngine()

	msg := MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "hey"}
	engine.HandleSendMessage(context.Background(), msg, DeliveryMeta{ReceiverID: "bob"})

	require.Len(t, messages.messages, 1)
	assert.Equal(t, "chat-1", messages.messages[0].ChatID)
	assert.Equal(t, "alice", messages.messages[0].SenderID)
	assert.Equal(t, "hey", messages.messages[0].Body)

	require.Len(t, chats.applied, 1)
	assert.Equal(t, appliedMessage{uuid: "chat-1", senderID: "alice", unread: true}, chats.applied[0])
}

func TestFirstMessageCreatesConversation(t *testing.T) {
	engine, chats, messages := newTestEngine()

	msg := MessagePayload{SenderID: "alice", Body: "hi there"}
	engine.HandleSendMessage(context.Background(), msg, DeliveryMeta{ReceiverID: "bob", IsNew: true})

	require.Len(t, chats.conversations, 1)
	conv := chats.conversations[0]
	assert.ElementsMatch(t, []string{"alice", "bob"}, conv.Users)
	assert.NotEmpty(t, conv.UUID) // chat id was minted for the blank payload

	require.Len(t, messages.messages, 1)
	assert.Equal(t, conv.UUID, messages.messages[0].ChatID)
}

func TestRepeatedFirstMessageDoesNotDuplicateConversation(t *testing.T) {
	engine, chats, _ := newTestEngine()
	ctx := context.Background()

	engine.HandleSendMessage(ctx, MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "a"}, DeliveryMeta{ReceiverID: "bob", IsNew: true})
	engine.HandleSendMessage(ctx, MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "b"}, DeliveryMeta{ReceiverID: "bob", IsNew: true})

	assert.Len(t, chats.conversations, 1)
}

func TestTypingForwardedLiveOnly(t *testing.T) {
	engine, _, messages := newTestEngine()
	sender := &fakePeer{}
	receiver := &fakePeer{}
	engine.Registry().Register("alice", sender)
	engine.Registry().Register("bob", receiver)

	engine.HandleTyping(sender, "bob", true)

	sent := receiver.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventIsTyping, sent[0].event)
	data := sent[0].data.(TypingData)
	assert.Equal(t, "alice", data.SenderID)
	assert.True(t, data.Status)
	assert.Empty(t, messages.messages)

	// offline receiver drops the event entirely
	engine.Registry().Unregister(receiver)
	engine.HandleTyping(sender, "bob", false)
	assert.Len(t, receiver.sent(), 1)
}

func TestUnreadStatusPersistsReceiverVerdict(t *testing.T) {
	engine, chats, messages := newTestEngine()

	msg := MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "hey"}
	engine.HandleUnreadStatus(context.Background(), msg, true)

	require.Len(t, messages.messages, 1)
	require.Len(t, chats.applied, 1)
	assert.True(t, chats.applied[0].unread)
}

func TestUnreadStatusReadNotifiesSender(t *testing.T) {
	engine, chats, _ := newTestEngine()
	sender := &fakePeer{}
	engine.Registry().Register("alice", sender)

	msg := MessagePayload{ChatID: "chat-1", SenderID: "alice", Body: "hey"}
	engine.HandleUnreadStatus(context.Background(), msg, false)

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventMessageRead, sent[0].event)
	assert.Equal(t, "chat-1", sent[0].data.(MessageReadData).ChatID)

	require.Len(t, chats.applied, 1)
	assert.False(t, chats.applied[0].unread)
}

func TestMessageReadResetsUnreadAndNotifiesPeer(t *testing.T) {
	engine, chats, _ := newTestEngine()
	peer := &fakePeer{}
	engine.Registry().Register("bob", peer)

	engine.HandleMessageRead(context.Background(), "chat-1", "bob")

	sent := peer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventMessageRead, sent[0].event)
	assert.Equal(t, []string{"chat-1"}, chats.resets)
}

func TestMessageReadWithOfflinePeerStillResets(t *testing.T) {
	engine, chats, _ := newTestEngine()

	engine.HandleMessageRead(context.Background(), "chat-1", "bob")
	assert.Equal(t, []string{"chat-1"}, chats.resets)
}

func TestDisconnectDropsPresence(t *testing.T) {
	engine, _, messages := newTestEngine()
	peer := &fakePeer{}
	engine.Registry().Register("alice", peer)

	engine.HandleDisconnect(peer)
	_, ok := engine.Registry().Lookup("alice")
	assert.False(t, ok)

	// messages sent to the now-offline user fall back to the store
	engine.HandleSendMessage(context.Background(), MessagePayload{ChatID: "chat-1", SenderID: "bob", Body: "late"}, DeliveryMeta{ReceiverID: "alice"})
	assert.Len(t, messages.messages, 1)
}
