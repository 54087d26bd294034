package repositories

import (
	"context"
	"time"

	"github.com/rifat29/ripple/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	DeleteNotification(ctx context.Context, key models.NotificationKey) error
	DeleteNotificationsByPostID(ctx context.Context, postID string) error
	GetByReceiverID(ctx context.Context, receiverID string, limit int64) ([]models.Notification, error)
	CountSince(ctx context.Context, receiverID string, since time.Time) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification creates a notification document
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// keyFilter builds the lookup filter from the non-zero fields of the key
func keyFilter(key models.NotificationKey) bson.M {
	filter := bson.M{}
	if key.Type != "" {
		filter["type"] = key.Type
	}
	if key.SenderID != "" {
		filter["sender_id"] = key.SenderID
	}
	if key.ReceiverID != "" {
		filter["receiver_id"] = key.ReceiverID
	}
	if key.PostID != "" {
		filter["post_id"] = key.PostID
	}
	if key.CommentID != "" {
		filter["comment_id"] = key.CommentID
	}
	if key.CommunityID != "" {
		filter["community_id"] = key.CommunityID
	}
	return filter
}

// DeleteNotification deletes the notification matching the key. A missing
// notification is not an error; the reversal already holds.
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, key models.NotificationKey) error {
	_, err := r.collection.DeleteOne(ctx, keyFilter(key))
	return err
}

// DeleteNotificationsByPostID deletes every notification referencing a post
func (r *MongoNotificationRepository) DeleteNotificationsByPostID(ctx context.Context, postID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	return err
}

// GetByReceiverID retrieves a user's notifications, newest first
func (r *MongoNotificationRepository) GetByReceiverID(ctx context.Context, receiverID string, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"receiver_id": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountSince counts a user's notifications created after the given time
func (r *MongoNotificationRepository) CountSince(ctx context.Context, receiverID string, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"receiver_id": receiverID,
		"created_at":  bson.M{"$gt": since},
	})
}
