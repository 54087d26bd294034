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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserIDs(ctx context.Context, userIDs []string, limit int64) ([]models.Post, error)
	GetPostsByCommunityID(ctx context.Context, communityID string, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) error
	DeletePost(ctx context.Context, id string) error
	DeletePostsByCommunityID(ctx context.Context, communityID string) error
	AddLike(ctx context.Context, postID, userID string) (*models.Post, bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (*models.Post, bool, error)
	IncrementCommentsCount(ctx context.Context, postID string, delta int) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.Likes = []string{}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserIDs retrieves posts authored by any of the given users,
// newest first
func (r *MongoPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []string, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByCommunityID retrieves a community's posts, newest first
func (r *MongoPostRepository) GetPostsByCommunityID(ctx context.Context, communityID string, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"community_id": communityID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates an existing post's body and image
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Body != "" {
		set["body"] = req.Body
	}
	if req.Image != "" {
		set["image"] = req.Image
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
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

// DeletePostsByCommunityID deletes all posts in a community
func (r *MongoPostRepository) DeletePostsByCommunityID(ctx context.Context, communityID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"community_id": communityID})
	return err
}

// AddLike adds the user to the post's like-set together with the counter.
// Returns the pre-update post (for the owner id) and whether anything
// changed; a repeated like is a no-op.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}, "$inc": bson.M{"likes_count": 1}},
	).Decode(&post)
	if err == nil {
		return &post, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	// no match: post missing, or the user already liked it
	existing, err := r.GetPostByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// RemoveLike removes the user from the post's like-set together with the
// counter. Returns the pre-update post and whether anything changed.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"likes_count": -1}},
	).Decode(&post)
	if err == nil {
		return &post, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	existing, err := r.GetPostByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// IncrementCommentsCount moves the post's comment counter by delta and
// returns the pre-update post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string, delta int) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"comments_count": delta}}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
