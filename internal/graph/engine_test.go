package graph

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- in-memory fakes mirroring the gated-update semantics of the mongo repositories ----

func contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func remove(set []string, id string) []string {
	out := set[:0]
	for _, s := range set {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) addUser(id string, private bool) *models.User {
	u := &models.User{Username: "user-" + id, IsPrivate: private}
	f.users[id] = u
	return u
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchUsers(ctx context.Context, username string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) SetPrivacy(ctx context.Context, id string, private bool) error {
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsPrivate = private
	return nil
}

func (f *fakeUserRepo) SetNotificationReadTime(ctx context.Context, id string, t time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.NfReadTime = t
	return nil
}

func (f *fakeUserRepo) AddFollowEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	follower, ok := f.users[followerID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	followed, ok := f.users[followedID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if contains(followed.Followers, followerID) {
		return false, nil
	}
	followed.Followers = append(followed.Followers, followerID)
	followed.FollowersCount++
	follower.Following = append(follower.Following, followedID)
	follower.FollowingCount++
	return true, nil
}

func (f *fakeUserRepo) RemoveFollowEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	follower, ok := f.users[followerID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	followed, ok := f.users[followedID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if !contains(followed.Followers, followerID) {
		return false, nil
	}
	followed.Followers = remove(followed.Followers, followerID)
	followed.FollowersCount--
	follower.Following = remove(follower.Following, followedID)
	follower.FollowingCount--
	return true, nil
}

func (f *fakeUserRepo) AddFollowRequest(ctx context.Context, senderID, receiverID string) error {
	sender, ok := f.users[senderID]
	if !ok {
		return repositories.ErrNotFound
	}
	receiver, ok := f.users[receiverID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !contains(receiver.ReceivedReq, senderID) {
		receiver.ReceivedReq = append(receiver.ReceivedReq, senderID)
		sender.SentReq = append(sender.SentReq, receiverID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveFollowRequest(ctx context.Context, senderID, receiverID string) (bool, error) {
	sender, ok := f.users[senderID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	receiver, ok := f.users[receiverID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if !contains(receiver.ReceivedReq, senderID) {
		return false, nil
	}
	receiver.ReceivedReq = remove(receiver.ReceivedReq, senderID)
	sender.SentReq = remove(sender.SentReq, receiverID)
	return true, nil
}

func (f *fakeUserRepo) PromoteFollowRequest(ctx context.Context, requesterID, acceptorID string) (bool, error) {
	changed, err := f.RemoveFollowRequest(ctx, requesterID, acceptorID)
	if err != nil || !changed {
		return changed, err
	}
	return f.AddFollowEdge(ctx, requesterID, acceptorID)
}

func (f *fakeUserRepo) AddLikedPost(ctx context.Context, userID, postID string) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !contains(u.Likes, postID) {
		u.Likes = append(u.Likes, postID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveLikedPost(ctx context.Context, userID, postID string) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Likes = remove(u.Likes, postID)
	return nil
}

func (f *fakeUserRepo) RemoveLikedPostFromUsers(ctx context.Context, userIDs []string, postID string) error {
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			u.Likes = remove(u.Likes, postID)
		}
	}
	return nil
}

func (f *fakeUserRepo) AddCommunityFollow(ctx context.Context, userID, communityID string) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if contains(u.FollowingComm, communityID) {
		return false, nil
	}
	u.FollowingComm = append(u.FollowingComm, communityID)
	u.FollowingCommCount++
	return true, nil
}

func (f *fakeUserRepo) RemoveCommunityFollow(ctx context.Context, userID, communityID string) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if !contains(u.FollowingComm, communityID) {
		return false, nil
	}
	u.FollowingComm = remove(u.FollowingComm, communityID)
	u.FollowingCommCount--
	return true, nil
}

func (f *fakeUserRepo) RemoveCommunityFromUsers(ctx context.Context, communityID string) error {
	for _, u := range f.users {
		if contains(u.FollowingComm, communityID) {
			u.FollowingComm = remove(u.FollowingComm, communityID)
			u.FollowingCommCount--
		}
	}
	return nil
}

func (f *fakeUserRepo) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PostsCount += delta
	return nil
}

func (f *fakeUserRepo) IncrementCommunityCount(ctx context.Context, userID string, delta int) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.CommunityCount += delta
	return nil
}

type fakePostRepo struct {
	posts map[string]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (f *fakePostRepo) addPost(userID string) *models.Post {
	p := &models.Post{ID: primitive.NewObjectID(), UserID: userID, Body: "hello"}
	f.posts[p.ID.Hex()] = p
	return p
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	f.posts[post.ID.Hex()] = post
	return nil
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return p, nil
}

func (f *fakePostRepo) GetPostsByUserIDs(ctx context.Context, userIDs []string, limit int64) ([]models.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) GetPostsByCommunityID(ctx context.Context, communityID string, limit int64) ([]models.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	return nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) DeletePostsByCommunityID(ctx context.Context, communityID string) error {
	for id, p := range f.posts {
		if p.CommunityID == communityID {
			delete(f.posts, id)
		}
	}
	return nil
}

func (f *fakePostRepo) AddLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, false, repositories.ErrNotFound
	}
	if contains(p.Likes, userID) {
		return p, false, nil
	}
	p.Likes = append(p.Likes, userID)
	p.LikesCount++
	return p, true, nil
}

func (f *fakePostRepo) RemoveLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, false, repositories.ErrNotFound
	}
	if !contains(p.Likes, userID) {
		return p, false, nil
	}
	p.Likes = remove(p.Likes, userID)
	p.LikesCount--
	return p, true, nil
}

func (f *fakePostRepo) IncrementCommentsCount(ctx context.Context, postID string, delta int) (*models.Post, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.CommentsCount += delta
	return p, nil
}

type fakeCommentRepo struct {
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	f.comments[comment.ID.Hex()] = comment
	return nil
}

func (f *fakeCommentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (f *fakeCommentRepo) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteComment(ctx context.Context, id string) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	for id, c := range f.comments {
		if c.PostID == postID {
			delete(f.comments, id)
		}
	}
	return nil
}

type fakeCommunityRepo struct {
	communities map[string]*models.Community
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{communities: make(map[string]*models.Community)}
}

func (f *fakeCommunityRepo) addCommunity(creatorID string) *models.Community {
	c := &models.Community{ID: primitive.NewObjectID(), Title: "gophers", CreatorID: creatorID}
	f.communities[c.ID.Hex()] = c
	return c
}

func (f *fakeCommunityRepo) CreateCommunity(ctx context.Context, community *models.Community) error {
	community.ID = primitive.NewObjectID()
	f.communities[community.ID.Hex()] = community
	return nil
}

func (f *fakeCommunityRepo) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	c, ok := f.communities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (f *fakeCommunityRepo) GetCommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error) {
	return nil, nil
}

func (f *fakeCommunityRepo) SearchCommunities(ctx context.Context, title string) ([]models.Community, error) {
	return nil, nil
}

func (f *fakeCommunityRepo) UpdateCommunity(ctx context.Context, id string, req *models.UpdateCommunityRequest) error {
	return nil
}

func (f *fakeCommunityRepo) DeleteCommunity(ctx context.Context, id string) error {
	delete(f.communities, id)
	return nil
}

func (f *fakeCommunityRepo) AddFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error) {
	c, ok := f.communities[communityID]
	if !ok {
		return nil, false, repositories.ErrNotFound
	}
	if contains(c.Followers, userID) {
		return c, false, nil
	}
	c.Followers = append(c.Followers, userID)
	c.FollowersCount++
	return c, true, nil
}

func (f *fakeCommunityRepo) RemoveFollower(ctx context.Context, communityID, userID string) (*models.Community, bool, error) {
	c, ok := f.communities[communityID]
	if !ok {
		return nil, false, repositories.ErrNotFound
	}
	if !contains(c.Followers, userID) {
		return c, false, nil
	}
	c.Followers = remove(c.Followers, userID)
	c.FollowersCount--
	return c, true, nil
}

type fakeNotificationRepo struct {
	notifications []models.Notification
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) DeleteNotification(ctx context.Context, key models.NotificationKey) error {
	kept := f.notifications[:0]
	for _, n := range f.notifications {
		if f.matches(n, key) {
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationRepo) matches(n models.Notification, key models.NotificationKey) bool {
	if key.Type != "" && n.Type != key.Type {
		return false
	}
	if key.SenderID != "" && n.SenderID != key.SenderID {
		return false
	}
	if key.ReceiverID != "" && n.ReceiverID != key.ReceiverID {
		return false
	}
	if key.PostID != "" && n.PostID != key.PostID {
		return false
	}
	if key.CommentID != "" && n.CommentID != key.CommentID {
		return false
	}
	if key.CommunityID != "" && n.CommunityID != key.CommunityID {
		return false
	}
	return true
}

func (f *fakeNotificationRepo) DeleteNotificationsByPostID(ctx context.Context, postID string) error {
	kept := f.notifications[:0]
	for _, n := range f.notifications {
		if n.PostID != postID {
			kept = append(kept, n)
		}
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationRepo) GetByReceiverID(ctx context.Context, receiverID string, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountSince(ctx context.Context, receiverID string, since time.Time) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.ReceiverID == receiverID && n.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) ofType(typ string) []models.Notification {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	engine        *Engine
	users         *fakeUserRepo
	posts         *fakePostRepo
	comments      *fakeCommentRepo
	communities   *fakeCommunityRepo
	notifications *fakeNotificationRepo
}

func newFixture() *fixture {
	f := &fixture{
		users:         newFakeUserRepo(),
		posts:         newFakePostRepo(),
		comments:      newFakeCommentRepo(),
		communities:   newFakeCommunityRepo(),
		notifications: &fakeNotificationRepo{},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	f.engine = NewEngine(f.users, f.posts, f.comments, f.communities, f.notifications, logger)
	return f
}

// ---- likes ----

func TestLikeUnlikeRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := "alice"
	bob := "bob"
	f.users.addUser(alice, false)
	f.users.addUser(bob, false)
	post := f.posts.addPost(bob)

	require.NoError(t, f.engine.LikePost(ctx, alice, post.ID.Hex()))
	assert.Equal(t, []string{alice}, post.Likes)
	assert.Equal(t, 1, post.LikesCount)
	assert.Equal(t, []string{post.ID.Hex()}, f.users.users[alice].Likes)
	require.Len(t, f.notifications.ofType(models.NotificationLike), 1)
	assert.Equal(t, bob, f.notifications.ofType(models.NotificationLike)[0].ReceiverID)

	// repeating the like changes nothing
	require.NoError(t, f.engine.LikePost(ctx, alice, post.ID.Hex()))
	assert.Equal(t, 1, post.LikesCount)
	assert.Len(t, f.notifications.ofType(models.NotificationLike), 1)

	require.NoError(t, f.engine.UnlikePost(ctx, alice, post.ID.Hex()))
	assert.Empty(t, post.Likes)
	assert.Equal(t, 0, post.LikesCount)
	assert.Empty(t, f.users.users[alice].Likes)
	assert.Empty(t, f.notifications.notifications)

	// unliking again is a no-op
	require.NoError(t, f.engine.UnlikePost(ctx, alice, post.ID.Hex()))
	assert.Equal(t, 0, post.LikesCount)
}

func TestLikeOwnPostSkipsNotification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := "alice"
	f.users.addUser(alice, false)
	post := f.posts.addPost(alice)

	require.NoError(t, f.engine.LikePost(ctx, alice, post.ID.Hex()))
	assert.Equal(t, 1, post.LikesCount)
	assert.Empty(t, f.notifications.notifications)
}

func TestLikeMissingPost(t *testing.T) {
	f := newFixture()
	f.users.addUser("alice", false)
	err := f.engine.LikePost(context.Background(), "alice", primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

// ---- follows ----

func TestFollowPublicAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)

	requested, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, requested)

	bob := f.users.users["bob"]
	alice := f.users.users["alice"]
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Equal(t, 1, bob.FollowersCount)
	assert.Equal(t, []string{"bob"}, alice.Following)
	assert.Equal(t, 1, alice.FollowingCount)
	require.Len(t, f.notifications.ofType(models.NotificationFollow), 1)

	// repeating the follow moves nothing
	requested, err = f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, requested)
	assert.Equal(t, 1, bob.FollowersCount)
	assert.Len(t, bob.Followers, bob.FollowersCount)
	assert.Len(t, f.notifications.ofType(models.NotificationFollow), 1)
}

func TestFollowPrivateAccountCreatesRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)

	requested, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, requested)

	bob := f.users.users["bob"]
	alice := f.users.users["alice"]
	assert.Empty(t, bob.Followers)
	assert.Equal(t, 0, bob.FollowersCount)
	assert.Equal(t, []string{"alice"}, bob.ReceivedReq)
	assert.Equal(t, []string{"bob"}, alice.SentReq)
	require.Len(t, f.notifications.ofType(models.NotificationRequested), 1)

	// a second attempt reports pending and does not duplicate the notification
	requested, err = f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, requested)
	assert.Len(t, bob.ReceivedReq, 1)
	assert.Len(t, f.notifications.ofType(models.NotificationRequested), 1)
}

func TestFollowMissingUser(t *testing.T) {
	f := newFixture()
	f.users.addUser("alice", false)
	_, err := f.engine.Follow(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAcceptRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)
	_, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.engine.AcceptRequest(ctx, "bob", "alice"))

	bob := f.users.users["bob"]
	alice := f.users.users["alice"]
	assert.Empty(t, bob.ReceivedReq)
	assert.Empty(t, alice.SentReq)
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Equal(t, 1, bob.FollowersCount)
	assert.Equal(t, []string{"bob"}, alice.Following)

	assert.Empty(t, f.notifications.ofType(models.NotificationRequested))
	require.Len(t, f.notifications.ofType(models.NotificationFollow), 1)
	assert.Equal(t, "bob", f.notifications.ofType(models.NotificationFollow)[0].ReceiverID)
	require.Len(t, f.notifications.ofType(models.NotificationAccepted), 1)
	assert.Equal(t, "alice", f.notifications.ofType(models.NotificationAccepted)[0].ReceiverID)
}

func TestAcceptRequestWithoutPending(t *testing.T) {
	f := newFixture()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)
	err := f.engine.AcceptRequest(context.Background(), "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestDeclineRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)
	_, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.engine.DeclineRequest(ctx, "bob", "alice"))
	assert.Empty(t, f.users.users["bob"].ReceivedReq)
	assert.Empty(t, f.users.users["alice"].SentReq)
	assert.Empty(t, f.users.users["bob"].Followers)
	assert.Empty(t, f.notifications.notifications)

	// declining again is a no-op
	require.NoError(t, f.engine.DeclineRequest(ctx, "bob", "alice"))
}

func TestRemoveRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)
	_, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.engine.RemoveRequest(ctx, "alice", "bob"))
	assert.Empty(t, f.users.users["bob"].ReceivedReq)
	assert.Empty(t, f.notifications.notifications)
}

func TestUnfollowRemovesDerivedNotifications(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", true)
	_, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, f.engine.AcceptRequest(ctx, "bob", "alice"))

	require.NoError(t, f.engine.Unfollow(ctx, "alice", "bob"))

	bob := f.users.users["bob"]
	assert.Empty(t, bob.Followers)
	assert.Equal(t, 0, bob.FollowersCount)
	assert.Equal(t, 0, f.users.users["alice"].FollowingCount)
	// both the follow and the reciprocal accepted notification are gone
	assert.Empty(t, f.notifications.notifications)
}

func TestUnfollowWhenNotFollowing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)

	require.NoError(t, f.engine.Unfollow(ctx, "alice", "bob"))
	assert.Equal(t, 0, f.users.users["bob"].FollowersCount)
	assert.Empty(t, f.notifications.notifications)
}

// ---- comments ----

func TestAddCommentNotifiesPostOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	post := f.posts.addPost("bob")

	comment, err := f.engine.AddComment(ctx, "alice", &models.CreateCommentRequest{PostID: post.ID.Hex(), Body: "nice"})
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, 1, post.CommentsCount)

	notifs := f.notifications.ofType(models.NotificationComment)
	require.Len(t, notifs, 1)
	assert.Equal(t, "bob", notifs[0].ReceiverID)
	assert.Equal(t, comment.ID.Hex(), notifs[0].CommentID)
	assert.Equal(t, "nice", notifs[0].Comment)
}

func TestAddCommentOnOwnPostSkipsNotification(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	post := f.posts.addPost("alice")

	_, err := f.engine.AddComment(ctx, "alice", &models.CreateCommentRequest{PostID: post.ID.Hex(), Body: "bump"})
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentsCount)
	assert.Empty(t, f.notifications.notifications)
}

func TestDeleteComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	post := f.posts.addPost("bob")

	comment, err := f.engine.AddComment(ctx, "alice", &models.CreateCommentRequest{PostID: post.ID.Hex(), Body: "nice"})
	require.NoError(t, err)

	require.NoError(t, f.engine.DeleteComment(ctx, "alice", comment.ID.Hex()))
	assert.Equal(t, 0, post.CommentsCount)
	assert.Empty(t, f.comments.comments)
	assert.Empty(t, f.notifications.notifications)
}

func TestDeleteCommentNotOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	post := f.posts.addPost("bob")

	comment, err := f.engine.AddComment(ctx, "alice", &models.CreateCommentRequest{PostID: post.ID.Hex(), Body: "nice"})
	require.NoError(t, err)

	err = f.engine.DeleteComment(ctx, "bob", comment.ID.Hex())
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, 1, post.CommentsCount)
}

// ---- communities ----

func TestFollowCommunityNotifiesCreator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	community := f.communities.addCommunity("bob")

	require.NoError(t, f.engine.FollowCommunity(ctx, "alice", community.ID.Hex()))
	assert.Equal(t, []string{"alice"}, community.Followers)
	assert.Equal(t, 1, community.FollowersCount)
	assert.Equal(t, []string{community.ID.Hex()}, f.users.users["alice"].FollowingComm)
	require.Len(t, f.notifications.ofType(models.NotificationFollowCommunity), 1)

	require.NoError(t, f.engine.UnfollowCommunity(ctx, "alice", community.ID.Hex()))
	assert.Empty(t, community.Followers)
	assert.Equal(t, 0, community.FollowersCount)
	assert.Empty(t, f.users.users["alice"].FollowingComm)
	assert.Empty(t, f.notifications.notifications)
}

func TestCreatorFollowsOwnCommunitySilently(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("bob", false)
	community := f.communities.addCommunity("bob")

	require.NoError(t, f.engine.FollowCommunity(ctx, "bob", community.ID.Hex()))
	assert.Equal(t, 1, community.FollowersCount)
	assert.Empty(t, f.notifications.notifications)
}

// ---- posts and cascades ----

func TestCreatePostMovesCounter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)

	post, err := f.engine.CreatePost(ctx, "alice", &models.CreatePostRequest{Body: "first"})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "alice", post.UserID)
	assert.Equal(t, 1, f.users.users["alice"].PostsCount)
}

func TestDeletePostCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)

	post, err := f.engine.CreatePost(ctx, "bob", &models.CreatePostRequest{Body: "first"})
	require.NoError(t, err)
	require.NoError(t, f.engine.LikePost(ctx, "alice", post.ID.Hex()))
	_, err = f.engine.AddComment(ctx, "alice", &models.CreateCommentRequest{PostID: post.ID.Hex(), Body: "nice"})
	require.NoError(t, err)

	require.NoError(t, f.engine.DeletePost(ctx, "bob", post.ID.Hex()))

	assert.Empty(t, f.posts.posts)
	assert.Empty(t, f.comments.comments)
	assert.Empty(t, f.notifications.notifications)
	assert.Equal(t, 0, f.users.users["bob"].PostsCount)
	assert.Empty(t, f.users.users["alice"].Likes)
}

func TestDeletePostNotOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	post := f.posts.addPost("bob")

	err := f.engine.DeletePost(ctx, "alice", post.ID.Hex())
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Len(t, f.posts.posts, 1)
}

func TestDeleteCommunityCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)

	community, err := f.engine.CreateCommunity(ctx, "bob", &models.CreateCommunityRequest{Title: "gophers"})
	require.NoError(t, err)
	require.NoError(t, f.engine.FollowCommunity(ctx, "alice", community.ID.Hex()))

	communityPost := &models.Post{UserID: "bob", Body: "welcome", CommunityID: community.ID.Hex()}
	require.NoError(t, f.posts.CreatePost(ctx, communityPost))

	require.NoError(t, f.engine.DeleteCommunity(ctx, "bob", community.ID.Hex()))

	assert.Empty(t, f.communities.communities)
	assert.Empty(t, f.posts.posts)
	assert.Empty(t, f.users.users["alice"].FollowingComm)
	assert.Equal(t, 0, f.users.users["alice"].FollowingCommCount)
	assert.Equal(t, 0, f.users.users["bob"].CommunityCount)
}

func TestDeleteCommunityNotCreator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	community := f.communities.addCommunity("bob")

	err := f.engine.DeleteCommunity(ctx, "alice", community.ID.Hex())
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Len(t, f.communities.communities, 1)
}

// ---- counter/set invariant across a mixed series of actions ----

func TestCountersAlwaysMatchSets(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.addUser("alice", false)
	f.users.addUser("bob", false)
	f.users.addUser("carol", true)

	_, err := f.engine.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = f.engine.Follow(ctx, "bob", "alice")
	require.NoError(t, err)
	_, err = f.engine.Follow(ctx, "alice", "carol")
	require.NoError(t, err)
	require.NoError(t, f.engine.AcceptRequest(ctx, "carol", "alice"))
	require.NoError(t, f.engine.Unfollow(ctx, "bob", "alice"))
	_, err = f.engine.Follow(ctx, "alice", "bob") // repeat, no-op
	require.NoError(t, err)

	for id, u := range f.users.users {
		assert.Len(t, u.Followers, u.FollowersCount, "followers of %s", id)
		assert.Len(t, u.Following, u.FollowingCount, "following of %s", id)
		assert.Len(t, u.FollowingComm, u.FollowingCommCount, "communities of %s", id)
	}
}
