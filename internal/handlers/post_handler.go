package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/graph"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	engine         *graph.Engine
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(engine *graph.Engine, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		engine:         engine,
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// EnrichedPost is a post with author info and the viewer's like status
type EnrichedPost struct {
	models.Post
	Username       string `json:"username"`
	DisplayPicture string `json:"display_picture,omitempty"`
	IsLiked        bool   `json:"is_liked"`
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.engine.CreatePost(c.Request().Context(), currentUserID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPosts lists posts for a user page, a community page or the home feed
// (posts from accounts the caller follows)
func (h *PostHandler) GetPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}

	var (
		posts []models.Post
		err   error
	)
	switch {
	case c.QueryParam("user_id") != "":
		posts, err = h.postRepository.GetPostsByUserIDs(ctx, []string{c.QueryParam("user_id")}, limit)
	case c.QueryParam("community_id") != "":
		posts, err = h.postRepository.GetPostsByCommunityID(ctx, c.QueryParam("community_id"), limit)
	default:
		var user *models.User
		user, err = h.userRepository.GetUserByID(ctx, currentUserID)
		if err == nil {
			posts, err = h.postRepository.GetPostsByUserIDs(ctx, user.Following, limit)
		}
	}
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrich(c, currentUserID, posts))
}

// GetPost retrieves a single post with author info and like status
func (h *PostHandler) GetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := h.enrich(c, currentUserID, []models.Post{*post})
	return c.JSON(http.StatusOK, enriched[0])
}

// UpdatePost updates the caller's post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can't modify this post")
	}

	if err := h.postRepository.UpdatePost(ctx, postID, &req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"id": postID}})
}

// DeletePost deletes the caller's post and everything derived from it
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.engine.DeletePost(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		if err == graph.ErrNotAllowed {
			return echo.NewHTTPError(http.StatusForbidden, "You can't delete this post")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// enrich decorates posts with author info and the viewer's like status,
// batching the author lookups
func (h *PostHandler) enrich(c echo.Context, viewerID string, posts []models.Post) []EnrichedPost {
	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	for i := range posts {
		if !seen[posts[i].UserID] {
			seen[posts[i].UserID] = true
			authorIDs = append(authorIDs, posts[i].UserID)
		}
	}

	authors := make(map[string]models.UserCompact)
	if users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), authorIDs); err == nil {
		for i := range users {
			authors[users[i].ID.Hex()] = users[i].Compact()
		}
	}

	enriched := make([]EnrichedPost, 0, len(posts))
	for i := range posts {
		post := posts[i]
		ep := EnrichedPost{Post: post}
		if author, ok := authors[post.UserID]; ok {
			ep.Username = author.Username
			ep.DisplayPicture = author.DisplayPicture
		}
		for _, id := range post.Likes {
			if id == viewerID {
				ep.IsLiked = true
				break
			}
		}
		ep.Likes = nil // like-set stays server-side; the viewer gets a boolean
		enriched = append(enriched, ep)
	}
	return enriched
}
