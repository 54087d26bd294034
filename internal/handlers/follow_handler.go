package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/graph"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// FollowHandler handles follow/unfollow and follow-request HTTP requests
type FollowHandler struct {
	engine *graph.Engine
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(engine *graph.Engine) *FollowHandler {
	return &FollowHandler{engine: engine}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.POST("/users/:id/requests/accept", h.AcceptRequest)
	g.POST("/users/:id/requests/decline", h.DeclineRequest)
	g.DELETE("/users/:id/requests", h.RemoveRequest)
}

// FollowUser follows a public user, or sends a follow request to a private one
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	targetID := c.Param("id")
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	requested, err := h.engine.Follow(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": requested}})
}

// UnfollowUser unfollows a user. Unfollowing someone not followed changes nothing.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.Unfollow(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// AcceptRequest accepts a pending follow request from the user in the path
func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.engine.AcceptRequest(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if err == graph.ErrNoPendingRequest {
			return echo.NewHTTPError(http.StatusNotFound, "No pending follow request from this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeclineRequest declines a pending follow request from the user in the path
func (h *FollowHandler) DeclineRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.DeclineRequest(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RemoveRequest cancels a follow request the caller sent to the user in the path
func (h *FollowHandler) RemoveRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.RemoveRequest(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
