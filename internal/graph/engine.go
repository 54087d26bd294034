// Package graph keeps relationship sets, denormalized counters and derived
// notification records moving together. Every social action is a paired
// update: the relationship/counter mutation on the affected documents plus
// exactly one notification create or delete. The engine orders writes so the
// target document is mutated first and the notification only after that
// mutation succeeded; a missing target fails the whole action before anything
// is written.
package graph

import (
	"context"
	"errors"

	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotAllowed is returned when the actor does not own the target resource
	ErrNotAllowed = errors.New("actor is not allowed to modify this resource")
	// ErrNoPendingRequest is returned when accepting a follow request that is not pending
	ErrNoPendingRequest = errors.New("no pending follow request")
)

// Engine performs the paired updates for every social action
type Engine struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	communities   repositories.CommunityRepository
	notifications repositories.NotificationRepository
	log           logrus.FieldLogger
}

// NewEngine creates a new consistency Engine
func NewEngine(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	communityRepo repositories.CommunityRepository,
	notificationRepo repositories.NotificationRepository,
	log logrus.FieldLogger,
) *Engine {
	return &Engine{
		users:         userRepo,
		posts:         postRepo,
		comments:      commentRepo,
		communities:   communityRepo,
		notifications: notificationRepo,
		log:           log,
	}
}

// LikePost adds the actor to the post's like-set and records the post in the
// actor's like-set, creating a like notification unless the actor owns the
// post. Liking an already-liked post is a no-op.
func (e *Engine) LikePost(ctx context.Context, actorID, postID string) error {
	post, changed, err := e.posts.AddLike(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.users.AddLikedPost(ctx, actorID, postID); err != nil {
		return err
	}
	if post.UserID == actorID {
		return nil
	}
	return e.notifications.CreateNotification(ctx, models.NewLikeNotification(actorID, post.UserID, postID))
}

// UnlikePost reverses LikePost, deleting the like notification. Unliking a
// post the actor never liked is a no-op.
func (e *Engine) UnlikePost(ctx context.Context, actorID, postID string) error {
	post, changed, err := e.posts.RemoveLike(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.users.RemoveLikedPost(ctx, actorID, postID); err != nil {
		return err
	}
	if post.UserID == actorID {
		return nil
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:     models.NotificationLike,
		SenderID: actorID,
		PostID:   postID,
	})
}

// AddComment creates a comment, moves the post's comment counter and creates
// a comment notification unless the actor owns the post
func (e *Engine) AddComment(ctx context.Context, actorID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	post, err := e.posts.IncrementCommentsCount(ctx, req.PostID, 1)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: req.PostID,
		UserID: actorID,
		Body:   req.Body,
	}
	if err := e.comments.CreateComment(ctx, comment); err != nil {
		// roll the counter back so it keeps matching the comment set
		if _, derr := e.posts.IncrementCommentsCount(ctx, req.PostID, -1); derr != nil {
			e.log.WithError(derr).WithField("post_id", req.PostID).Error("failed to roll back comment counter")
		}
		return nil, err
	}

	if post.UserID != actorID {
		notif := models.NewCommentNotification(actorID, post.UserID, req.PostID, comment.ID.Hex(), comment.Body)
		if err := e.notifications.CreateNotification(ctx, notif); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

// DeleteComment removes the actor's comment, moves the post's counter back
// and deletes the comment notification
func (e *Engine) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := e.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrNotAllowed
	}

	if err := e.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	post, err := e.posts.IncrementCommentsCount(ctx, comment.PostID, -1)
	if err != nil {
		return err
	}
	if comment.UserID == post.UserID {
		return nil
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{CommentID: commentID})
}

// Follow establishes a follow edge towards a public account, or a pending
// request towards a private one. Returns whether a request (rather than a
// follow) was recorded. Repeating either branch is a no-op.
func (e *Engine) Follow(ctx context.Context, actorID, targetID string) (bool, error) {
	target, err := e.users.GetUserByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	if target.IsPrivate {
		for _, id := range target.ReceivedReq {
			if id == actorID {
				return true, nil // request already pending
			}
		}
		for _, id := range target.Followers {
			if id == actorID {
				return true, nil
			}
		}
		if err := e.users.AddFollowRequest(ctx, actorID, targetID); err != nil {
			return false, err
		}
		return true, e.notifications.CreateNotification(ctx, models.NewRequestedNotification(actorID, targetID))
	}

	changed, err := e.users.AddFollowEdge(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	return false, e.notifications.CreateNotification(ctx, models.NewFollowNotification(actorID, targetID))
}

// Unfollow removes the follow edge and its derived notifications, including
// the reciprocal accepted notification from a private-account acceptance.
// Unfollowing a user who is not followed leaves everything unchanged.
func (e *Engine) Unfollow(ctx context.Context, actorID, targetID string) error {
	changed, err := e.users.RemoveFollowEdge(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:       models.NotificationFollow,
		SenderID:   actorID,
		ReceiverID: targetID,
	}); err != nil {
		return err
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:       models.NotificationAccepted,
		SenderID:   targetID,
		ReceiverID: actorID,
	})
}

// AcceptRequest promotes a pending request into a follow edge, removes the
// requested notification and creates both a follow notification (the
// acceptor's feed reflects the new follower) and an accepted notification
// (the requester learns they were let in)
func (e *Engine) AcceptRequest(ctx context.Context, actorID, requesterID string) error {
	changed, err := e.users.PromoteFollowRequest(ctx, requesterID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNoPendingRequest
	}

	if err := e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:       models.NotificationRequested,
		SenderID:   requesterID,
		ReceiverID: actorID,
	}); err != nil {
		return err
	}
	if err := e.notifications.CreateNotification(ctx, models.NewFollowNotification(requesterID, actorID)); err != nil {
		return err
	}
	return e.notifications.CreateNotification(ctx, models.NewAcceptedNotification(actorID, requesterID))
}

// DeclineRequest strips a pending request received by the actor and deletes
// the requested notification. No new notification is created. Declining a
// request that is not pending is a no-op.
func (e *Engine) DeclineRequest(ctx context.Context, actorID, requesterID string) error {
	changed, err := e.users.RemoveFollowRequest(ctx, requesterID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:       models.NotificationRequested,
		SenderID:   requesterID,
		ReceiverID: actorID,
	})
}

// RemoveRequest cancels a request the actor sent, deleting the requested
// notification on the target's side
func (e *Engine) RemoveRequest(ctx context.Context, actorID, targetID string) error {
	changed, err := e.users.RemoveFollowRequest(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:       models.NotificationRequested,
		SenderID:   actorID,
		ReceiverID: targetID,
	})
}

// FollowCommunity adds the actor to the community's follower-set and the
// community to the actor's set, notifying the creator unless the actor is the
// creator
func (e *Engine) FollowCommunity(ctx context.Context, actorID, communityID string) error {
	community, changed, err := e.communities.AddFollower(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if _, err := e.users.AddCommunityFollow(ctx, actorID, communityID); err != nil {
		return err
	}
	if community.CreatorID == actorID {
		return nil
	}
	notif := models.NewCommunityFollowNotification(actorID, community.CreatorID, communityID)
	return e.notifications.CreateNotification(ctx, notif)
}

// UnfollowCommunity reverses FollowCommunity, deleting the notification
func (e *Engine) UnfollowCommunity(ctx context.Context, actorID, communityID string) error {
	community, changed, err := e.communities.RemoveFollower(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if _, err := e.users.RemoveCommunityFollow(ctx, actorID, communityID); err != nil {
		return err
	}
	if community.CreatorID == actorID {
		return nil
	}
	return e.notifications.DeleteNotification(ctx, models.NotificationKey{
		Type:        models.NotificationFollowCommunity,
		SenderID:    actorID,
		CommunityID: communityID,
	})
}

// CreatePost inserts the post and moves the author's post counter
func (e *Engine) CreatePost(ctx context.Context, actorID string, req *models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		UserID:      actorID,
		Body:        req.Body,
		Image:       req.Image,
		CommunityID: req.CommunityID,
	}
	if err := e.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	if err := e.users.IncrementPostsCount(ctx, actorID, 1); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the actor's post together with everything derived from
// it: comments, notifications referencing the post, the author's post counter
// and the post id in every liker's like-set
func (e *Engine) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return ErrNotAllowed
	}

	if err := e.comments.DeleteCommentsByPostID(ctx, postID); err != nil {
		return err
	}
	if err := e.notifications.DeleteNotificationsByPostID(ctx, postID); err != nil {
		return err
	}
	if err := e.users.IncrementPostsCount(ctx, actorID, -1); err != nil {
		return err
	}
	if len(post.Likes) > 0 {
		if err := e.users.RemoveLikedPostFromUsers(ctx, post.Likes, postID); err != nil {
			return err
		}
	}
	return e.posts.DeletePost(ctx, postID)
}

// CreateCommunity inserts the community and moves the creator's counter
func (e *Engine) CreateCommunity(ctx context.Context, actorID string, req *models.CreateCommunityRequest) (*models.Community, error) {
	community := &models.Community{
		Title:     req.Title,
		CreatorID: actorID,
	}
	if err := e.communities.CreateCommunity(ctx, community); err != nil {
		return nil, err
	}
	if err := e.users.IncrementCommunityCount(ctx, actorID, 1); err != nil {
		return nil, err
	}
	return community, nil
}

// DeleteCommunity removes the actor's community, its posts and every
// follower's reference to it
func (e *Engine) DeleteCommunity(ctx context.Context, actorID, communityID string) error {
	community, err := e.communities.GetCommunityByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != actorID {
		return ErrNotAllowed
	}

	if err := e.communities.DeleteCommunity(ctx, communityID); err != nil {
		return err
	}
	if err := e.users.RemoveCommunityFromUsers(ctx, communityID); err != nil {
		return err
	}
	if err := e.posts.DeletePostsByCommunityID(ctx, communityID); err != nil {
		return err
	}
	return e.users.IncrementCommunityCount(ctx, actorID, -1)
}
