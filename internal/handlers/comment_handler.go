package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/graph"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engine            *graph.Engine
	commentRepository repositories.CommentRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engine *graph.Engine, commentRepo repositories.CommentRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		engine:            engine,
		commentRepository: commentRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// EnrichedComment is a comment with its author's username
type EnrichedComment struct {
	models.Comment
	Username string `json:"username"`
}

// CreateComment creates a comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.engine.AddComment(c.Request().Context(), currentUserID, &req)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments with author usernames
func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool)
	for i := range comments {
		if !seen[comments[i].UserID] {
			seen[comments[i].UserID] = true
			authorIDs = append(authorIDs, comments[i].UserID)
		}
	}
	usernames := make(map[string]string)
	if users, err := h.userRepository.GetUsersByIDs(ctx, authorIDs); err == nil {
		for i := range users {
			usernames[users[i].ID.Hex()] = users[i].Username
		}
	}

	enriched := make([]EnrichedComment, 0, len(comments))
	for i := range comments {
		enriched = append(enriched, EnrichedComment{
			Comment:  comments[i],
			Username: usernames[comments[i].UserID],
		})
	}
	return c.JSON(http.StatusOK, enriched)
}

// DeleteComment deletes the caller's comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.engine.DeleteComment(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		if err == graph.ErrNotAllowed {
			return echo.NewHTTPError(http.StatusForbidden, "You can't delete this comment")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
