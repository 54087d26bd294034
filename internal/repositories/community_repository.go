package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/rifat29/ripple/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommunityRepository defines the interface for community data operations
type CommunityRepository interface {
	CreateCommunity(ctx context.Context, community *models.Community) error
	GetCommunityByID(ctx context.Context, id string) (*models.Community, error)
	GetCommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error)
	SearchCommunities(ctx context.Context, title string) ([]models.Community, error)
	UpdateCommunity(ctx context.Context, id string, req *models.UpdateCommunityRequest) error
	DeleteCommunity(ctx context.Context, id string) error
	AddFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error)
	RemoveFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error)
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	collection *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{collection: db.Collection("communities")}
}

// EnsureIndexes creates the unique index on the community title
func (r *MongoCommunityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("title_unique_index"),
	})
	return err
}

// CreateCommunity creates a new community
func (r *MongoCommunityRepository) CreateCommunity(ctx context.Context, community *models.Community) error {
	community.ID = primitive.NewObjectID()
	community.Followers = []string{}
	community.CreatedAt = time.Now()
	community.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, community)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("title is already taken: %w", err)
	}
	return err
}

// GetCommunityByID retrieves a community by ID
func (r *MongoCommunityRepository) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID format: %w", err)
	}

	var community models.Community
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&community)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &community, nil
}

// GetCommunitiesByIDs retrieves the communities whose ids appear in the list
func (r *MongoCommunityRepository) GetCommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var communities []models.Community
	if err = cursor.All(ctx, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// SearchCommunities finds communities whose title matches the given fragment
func (r *MongoCommunityRepository) SearchCommunities(ctx context.Context, title string) ([]models.Community, error) {
	filter := bson.M{}
	if title != "" {
		filter["title"] = bson.M{"$regex": title, "$options": "i"}
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var communities []models.Community
	if err = cursor.All(ctx, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// UpdateCommunity updates a community's title
func (r *MongoCommunityRepository) UpdateCommunity(ctx context.Context, id string, req *models.UpdateCommunityRequest) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid community ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$set": bson.M{"title": req.Title, "updated_at": time.Now()}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("title is already taken: %w", err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCommunity deletes a community by ID
func (r *MongoCommunityRepository) DeleteCommunity(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid community ID format: %w", err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFollower adds the user to the community's follower-set together with the
// counter. Returns the pre-update community (for the creator id) and whether
// anything changed.
func (r *MongoCommunityRepository) AddFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error) {
	objID, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid community ID format: %w", err)
	}

	var community models.Community
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "followers": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"followers": userID}, "$inc": bson.M{"followers_count": 1}},
	).Decode(&community)
	if err == nil {
		return &community, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	existing, err := r.GetCommunityByID(ctx, communityID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// RemoveFollower removes the user from the community's follower-set together
// with the counter. Returns the pre-update community and whether anything
// changed.
func (r *MongoCommunityRepository) RemoveFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error) {
	objID, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid community ID format: %w", err)
	}

	var community models.Community
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "followers": userID},
		bson.M{"$pull": bson.M{"followers": userID}, "$inc": bson.M{"followers_count": -1}},
	).Decode(&community)
	if err == nil {
		return &community, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	existing, err := r.GetCommunityByID(ctx, communityID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
