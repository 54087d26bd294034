package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/rifat29/ripple/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations.
// The relationship mutators are gated on current set membership so that a
// counter is only moved together with an actual set change; the bool result
// reports whether anything changed.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	SearchUsers(ctx context.Context, username string) ([]models.User, error)
	SetPrivacy(ctx context.Context, id string, private bool) error
	SetNotificationReadTime(ctx context.Context, id string, t time.Time) error
	AddFollowEdge(ctx context.Context, followerID, followedID string) (bool, error)
	RemoveFollowEdge(ctx context.Context, followerID, followedID string) (bool, error)
	AddFollowRequest(ctx context.Context, senderID, receiverID string) error
	RemoveFollowRequest(ctx context.Context, senderID, receiverID string) (bool, error)
	PromoteFollowRequest(ctx context.Context, requesterID, acceptorID string) (bool, error)
	AddLikedPost(ctx context.Context, userID, postID string) error
	RemoveLikedPost(ctx context.Context, userID, postID string) error
	RemoveLikedPostFromUsers(ctx context.Context, userIDs []string, postID string) error
	AddCommunityFollow(ctx context.Context, userID, communityID string) (bool, error)
	RemoveCommunityFollow(ctx context.Context, userID, communityID string) (bool, error)
	RemoveCommunityFromUsers(ctx context.Context, communityID string) error
	IncrementPostsCount(ctx context.Context, userID string, delta int) error
	IncrementCommunityCount(ctx context.Context, userID string, delta int) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users whose ids appear in the given list
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // skip malformed ids rather than failing the whole lookup
		}
		objIDs = append(objIDs, objID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers finds users whose username matches the given fragment
func (r *MongoUserRepository) SearchUsers(ctx context.Context, username string) ([]models.User, error) {
	filter := bson.M{"username": bson.M{"$regex": username, "$options": "i"}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetPrivacy toggles the account privacy flag
func (r *MongoUserRepository) SetPrivacy(ctx context.Context, id string, private bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_private": private}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNotificationReadTime records when the user last viewed their notifications
func (r *MongoUserRepository) SetNotificationReadTime(ctx context.Context, id string, t time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"nf_read_time": t}})
	return err
}

// AddFollowEdge adds follower to followed's followers and followed to
// follower's following, moving both counters. Gated on the edge not already
// existing; returns false when it does.
func (r *MongoUserRepository) AddFollowEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	followedObj, err := primitive.ObjectIDFromHex(followedID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	followerObj, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": followedObj, "followers": bson.M{"$ne": followerID}},
		bson.M{"$push": bson.M{"followers": followerID}, "$inc": bson.M{"followers_count": 1}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		// either the user is missing or the edge already exists
		if count, err := r.collection.CountDocuments(ctx, bson.M{"_id": followedObj}); err != nil {
			return false, err
		} else if count == 0 {
			return false, ErrNotFound
		}
		return false, nil
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": followerObj, "following": bson.M{"$ne": followedID}},
		bson.M{"$push": bson.M{"following": followedID}, "$inc": bson.M{"following_count": 1}})
	return true, err
}

// RemoveFollowEdge removes the follow edge between the pair, moving both
// counters. Returns false when no edge existed, leaving all state unchanged.
func (r *MongoUserRepository) RemoveFollowEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	followedObj, err := primitive.ObjectIDFromHex(followedID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	followerObj, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": followedObj, "followers": followerID},
		bson.M{"$pull": bson.M{"followers": followerID}, "$inc": bson.M{"followers_count": -1}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": followerObj, "following": followedID},
		bson.M{"$pull": bson.M{"following": followedID}, "$inc": bson.M{"following_count": -1}})
	return true, err
}

// AddFollowRequest records a pending follow request on both sides. No
// counters are touched; request sets are not counted.
func (r *MongoUserRepository) AddFollowRequest(ctx context.Context, senderID, receiverID string) error {
	receiverObj, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	senderObj, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": receiverObj},
		bson.M{"$addToSet": bson.M{"received_req": senderID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": senderObj},
		bson.M{"$addToSet": bson.M{"sent_req": receiverID}})
	return err
}

// RemoveFollowRequest strips the pending request from both sides. Returns
// false when no request was pending.
func (r *MongoUserRepository) RemoveFollowRequest(ctx context.Context, senderID, receiverID string) (bool, error) {
	receiverObj, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	senderObj, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": receiverObj, "received_req": senderID},
		bson.M{"$pull": bson.M{"received_req": senderID}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": senderObj},
		bson.M{"$pull": bson.M{"sent_req": receiverID}})
	return true, err
}

// PromoteFollowRequest moves a pending request into an established follow
// edge: the requester enters the acceptor's followers, the acceptor enters the
// requester's following, both counters move, both request sets are stripped.
// Gated on the request actually being pending.
func (r *MongoUserRepository) PromoteFollowRequest(ctx context.Context, requesterID, acceptorID string) (bool, error) {
	acceptorObj, err := primitive.ObjectIDFromHex(acceptorID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	requesterObj, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": acceptorObj, "received_req": requesterID},
		bson.M{
			"$pull": bson.M{"received_req": requesterID},
			"$push": bson.M{"followers": requesterID},
			"$inc":  bson.M{"followers_count": 1},
		})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": requesterObj},
		bson.M{
			"$pull": bson.M{"sent_req": acceptorID},
			"$push": bson.M{"following": acceptorID},
			"$inc":  bson.M{"following_count": 1},
		})
	return true, err
}

// AddLikedPost records the post in the user's like-set
func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$addToSet": bson.M{"likes": postID}})
	return err
}

// RemoveLikedPost removes the post from the user's like-set
func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$pull": bson.M{"likes": postID}})
	return err
}

// RemoveLikedPostFromUsers pulls a deleted post out of every liker's like-set
func (r *MongoUserRepository) RemoveLikedPostFromUsers(ctx context.Context, userIDs []string, postID string) error {
	objIDs := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}},
		bson.M{"$pull": bson.M{"likes": postID}})
	return err
}

// AddCommunityFollow records the community in the user's followed-community
// set and moves the counter. Returns false when already following.
func (r *MongoUserRepository) AddCommunityFollow(ctx context.Context, userID, communityID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "following_comm": bson.M{"$ne": communityID}},
		bson.M{"$push": bson.M{"following_comm": communityID}, "$inc": bson.M{"following_comm_count": 1}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveCommunityFollow removes the community from the user's
// followed-community set and moves the counter. Returns false when the user
// was not following it.
func (r *MongoUserRepository) RemoveCommunityFollow(ctx context.Context, userID, communityID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "following_comm": communityID},
		bson.M{"$pull": bson.M{"following_comm": communityID}, "$inc": bson.M{"following_comm_count": -1}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveCommunityFromUsers pulls a deleted community out of every follower's set
func (r *MongoUserRepository) RemoveCommunityFromUsers(ctx context.Context, communityID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"following_comm": communityID},
		bson.M{"$pull": bson.M{"following_comm": communityID}, "$inc": bson.M{"following_comm_count": -1}})
	return err
}

// IncrementPostsCount moves the user's post counter by delta
func (r *MongoUserRepository) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"posts_count": delta}})
	return err
}

// IncrementCommunityCount moves the user's created-community counter by delta
func (r *MongoUserRepository) IncrementCommunityCount(ctx context.Context, userID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"community_count": delta}})
	return err
}
