package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rifat29/ripple/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository defines the interface for conversation data operations
type ChatRepository interface {
	CreateConversation(ctx context.Context, users []string, uuid string) error
	FindByUsers(ctx context.Context, userA, userB string) (*models.Conversation, error)
	FindByUUID(ctx context.Context, uuid string) (*models.Conversation, error)
	GetConversationsByUserID(ctx context.Context, userID string) ([]models.Conversation, error)
	ApplyMessage(ctx context.Context, uuid, senderID string, unread bool) error
	ResetUnread(ctx context.Context, uuid string) error
}

// MongoChatRepository implements ChatRepository for MongoDB
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository
func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{collection: db.Collection("chats")}
}

// EnsureIndexes creates the indexes backing conversation lookups. The unique
// pair_key index is what guarantees at most one conversation per unordered
// user pair even when two first messages race.
func (r *MongoChatRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pair_key_unique_index"),
		},
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetName("uuid_index"),
		},
		{
			Keys:    bson.D{{Key: "users", Value: 1}},
			Options: options.Index().SetName("users_index"),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// pairKey produces the order-independent key for a participant pair
func pairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

type conversationDoc struct {
	models.Conversation `bson:",inline"`
	PairKey             string `bson:"pair_key"`
}

// CreateConversation creates the conversation for a participant pair. A
// duplicate insert for the same pair is absorbed, preserving the single
// conversation already there.
func (r *MongoChatRepository) CreateConversation(ctx context.Context, users []string, uuid string) error {
	if len(users) != 2 {
		return fmt.Errorf("conversation requires exactly two users, got %d", len(users))
	}
	doc := conversationDoc{
		Conversation: models.Conversation{
			ID:                  primitive.NewObjectID(),
			UUID:                uuid,
			Users:               users,
			UnreadCount:         0,
			LastMessageSenderID: "",
			LastMessageTime:     time.Now(),
			CreatedAt:           time.Now(),
		},
		PairKey: pairKey(users[0], users[1]),
	}
	_, err := r.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// FindByUsers retrieves the conversation between a participant pair
func (r *MongoChatRepository) FindByUsers(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.collection.FindOne(ctx, bson.M{"users": bson.M{"$all": []string{userA, userB}}}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// FindByUUID retrieves a conversation by its stable id
func (r *MongoChatRepository) FindByUUID(ctx context.Context, uuid string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.collection.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// GetConversationsByUserID retrieves a user's conversations, most recently
// active first
func (r *MongoChatRepository) GetConversationsByUserID(ctx context.Context, userID string) ([]models.Conversation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "last_message_time", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"users": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// ApplyMessage records last-message metadata for a newly persisted message,
// bumping the unread counter when the message was stored as unread
func (r *MongoChatRepository) ApplyMessage(ctx context.Context, uuid, senderID string, unread bool) error {
	inc := 0
	lastSender := ""
	if unread {
		inc = 1
		lastSender = senderID
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"uuid": uuid}, bson.M{
		"$inc": bson.M{"unread_count": inc},
		"$set": bson.M{"last_message_sender_id": lastSender, "last_message_time": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUnread zeroes the unread counter and clears the last unread sender
func (r *MongoChatRepository) ResetUnread(ctx context.Context, uuid string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"uuid": uuid}, bson.M{
		"$set": bson.M{"unread_count": 0, "last_message_sender_id": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
