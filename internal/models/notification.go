package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. A notification is derived state: it is created when the
// triggering relationship/action is established and deleted when it reverses.
const (
	NotificationFollow          = "follow"
	NotificationAccepted        = "accepted"
	NotificationRequested       = "requested"
	NotificationLike            = "like"
	NotificationComment         = "comment"
	NotificationFollowCommunity = "followcomm"
)

// Notification represents a notification document. The reference fields
// (post_id, comment_id, community_id, comment) are only populated by the
// per-type constructors below; nothing else should build a Notification by
// hand, which keeps impossible field combinations out of the collection.
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type        string             `json:"type" bson:"type"`
	SenderID    string             `json:"sender_id" bson:"sender_id"`
	ReceiverID  string             `json:"receiver_id" bson:"receiver_id"`
	PostID      string             `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID   string             `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	CommunityID string             `json:"community_id,omitempty" bson:"community_id,omitempty"`
	Comment     string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// NewFollowNotification signals that sender now follows receiver
func NewFollowNotification(senderID, receiverID string) *Notification {
	return &Notification{Type: NotificationFollow, SenderID: senderID, ReceiverID: receiverID}
}

// NewRequestedNotification signals a pending follow request on a private account
func NewRequestedNotification(senderID, receiverID string) *Notification {
	return &Notification{Type: NotificationRequested, SenderID: senderID, ReceiverID: receiverID}
}

// NewAcceptedNotification tells the requester their follow request was accepted
func NewAcceptedNotification(senderID, receiverID string) *Notification {
	return &Notification{Type: NotificationAccepted, SenderID: senderID, ReceiverID: receiverID}
}

// NewLikeNotification signals that sender liked receiver's post
func NewLikeNotification(senderID, receiverID, postID string) *Notification {
	return &Notification{Type: NotificationLike, SenderID: senderID, ReceiverID: receiverID, PostID: postID}
}

// NewCommentNotification signals that sender commented on receiver's post
func NewCommentNotification(senderID, receiverID, postID, commentID, body string) *Notification {
	return &Notification{
		Type:       NotificationComment,
		SenderID:   senderID,
		ReceiverID: receiverID,
		PostID:     postID,
		CommentID:  commentID,
		Comment:    body,
	}
}

// NewCommunityFollowNotification signals that sender followed receiver's community
func NewCommunityFollowNotification(senderID, receiverID, communityID string) *Notification {
	return &Notification{
		Type:        NotificationFollowCommunity,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		CommunityID: communityID,
	}
}

// NotificationKey identifies the notification(s) to delete when a
// relationship reverses. Zero-valued fields are left out of the lookup, so a
// key can be as narrow as a single comment id or as wide as
// (type, sender, receiver).
type NotificationKey struct {
	Type        string
	SenderID    string
	ReceiverID  string
	PostID      string
	CommentID   string
	CommunityID string
}
