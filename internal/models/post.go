package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document. likes_count is denormalized from the
// likes id-set and must stay equal to its length.
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	Body          string             `json:"body" bson:"body"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	CommunityID   string             `json:"community_id,omitempty" bson:"community_id,omitempty"`
	Likes         []string           `json:"-" bson:"likes"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Body        string `json:"body" validate:"required,min=1,max=400"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
	CommunityID string `json:"community_id,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Body  string `json:"body,omitempty" validate:"omitempty,min=1,max=400"`
	Image string `json:"image,omitempty" validate:"omitempty,url"`
}
