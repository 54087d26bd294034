package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community represents a community document. followers_count is denormalized
// from the followers id-set and must stay equal to its length.
type Community struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	CreatorID      string             `json:"creator_id" bson:"creator_id"`
	Followers      []string           `json:"-" bson:"followers"`
	FollowersCount int                `json:"followers_count" bson:"followers_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateCommunityRequest defines the request body for creating a community
type CreateCommunityRequest struct {
	Title string `json:"title" validate:"required,min=1,max=50"`
}

// UpdateCommunityRequest defines the request body for updating a community
type UpdateCommunityRequest struct {
	Title string `json:"title" validate:"required,min=1,max=50"`
}
