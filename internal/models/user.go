package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account document. The relationship id-sets
// (followers, following, sent/received requests, liked posts) are the source
// of truth; the *_count fields are denormalized and must always equal the
// length of their backing set.
type User struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email              string             `json:"email" bson:"email"`
	Username           string             `json:"username" bson:"username"`
	Password           string             `json:"-" bson:"password"`
	DisplayPicture     string             `json:"display_picture" bson:"display_picture"`
	Followers          []string           `json:"followers,omitempty" bson:"followers"`
	Following          []string           `json:"following,omitempty" bson:"following"`
	FollowersCount     int                `json:"followers_count" bson:"followers_count"`
	FollowingCount     int                `json:"following_count" bson:"following_count"`
	Likes              []string           `json:"-" bson:"likes"` // post ids this user liked
	PostsCount         int                `json:"posts_count" bson:"posts_count"`
	ReceivedReq        []string           `json:"received_req,omitempty" bson:"received_req"`
	SentReq            []string           `json:"sent_req,omitempty" bson:"sent_req"`
	FollowingComm      []string           `json:"following_comm,omitempty" bson:"following_comm"`
	FollowingCommCount int                `json:"following_comm_count" bson:"following_comm_count"`
	CommunityCount     int                `json:"community_count" bson:"community_count"`
	IsPrivate          bool               `json:"is_private" bson:"is_private"`
	NfReadTime         time.Time          `json:"nf_read_time,omitempty" bson:"nf_read_time,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the trimmed user shape embedded in lists and decorations
type UserCompact struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayPicture string `json:"display_picture,omitempty"`
}

// Compact returns the list/decoration shape of the user
func (u *User) Compact() UserCompact {
	return UserCompact{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		DisplayPicture: u.DisplayPicture,
	}
}

// UpdatePrivacyRequest defines the request body for toggling account privacy
type UpdatePrivacyRequest struct {
	Status bool `json:"status"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
