package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/graph"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// CommunityHandler handles HTTP requests related to communities
type CommunityHandler struct {
	engine              *graph.Engine
	communityRepository repositories.CommunityRepository
	userRepository      repositories.UserRepository
}

// NewCommunityHandler creates a new CommunityHandler
func NewCommunityHandler(engine *graph.Engine, communityRepo repositories.CommunityRepository, userRepo repositories.UserRepository) *CommunityHandler {
	return &CommunityHandler{
		engine:              engine,
		communityRepository: communityRepo,
		userRepository:      userRepo,
	}
}

// RegisterCommunityRoutes registers community-related routes
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group) {
	g.POST("/communities", h.CreateCommunity)
	g.GET("/communities", h.GetCommunities)
	g.GET("/communities/:id", h.GetCommunity)
	g.PUT("/communities/:id", h.UpdateCommunity)
	g.DELETE("/communities/:id", h.DeleteCommunity)
	g.POST("/communities/:id/follow", h.FollowCommunity)
	g.DELETE("/communities/:id/follow", h.UnfollowCommunity)
}

// CommunityProfile is a community decorated with the viewer's follow status
// and the creator's username
type CommunityProfile struct {
	models.Community
	Username    string `json:"username"`
	IsFollowing bool   `json:"is_following"`
}

// CreateCommunity creates a new community
func (h *CommunityHandler) CreateCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	community, err := h.engine.CreateCommunity(c.Request().Context(), currentUserID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "title is already taken") {
			return echo.NewHTTPError(http.StatusConflict, map[string]string{"title": "Title is already taken"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, community)
}

// GetCommunities lists communities by title search or by a user's followed set
func (h *CommunityHandler) GetCommunities(c echo.Context) error {
	ctx := c.Request().Context()

	if followerID := c.QueryParam("following"); followerID != "" {
		user, err := h.userRepository.GetUserByID(ctx, followerID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "User not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		communities, err := h.communityRepository.GetCommunitiesByIDs(ctx, user.FollowingComm)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, communities)
	}

	communities, err := h.communityRepository.SearchCommunities(ctx, c.QueryParam("title"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, communities)
}

// GetCommunity retrieves a community decorated for the viewer
func (h *CommunityHandler) GetCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	community, err := h.communityRepository.GetCommunityByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Community not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile := CommunityProfile{Community: *community}
	for _, id := range community.Followers {
		if id == currentUserID {
			profile.IsFollowing = true
			break
		}
	}
	if creator, err := h.userRepository.GetUserByID(ctx, community.CreatorID); err == nil {
		profile.Username = creator.Username
	}
	profile.Followers = nil

	return c.JSON(http.StatusOK, profile)
}

// UpdateCommunity updates the caller's community
func (h *CommunityHandler) UpdateCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	communityID := c.Param("id")

	var req models.UpdateCommunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	community, err := h.communityRepository.GetCommunityByID(ctx, communityID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Community not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if community.CreatorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can't update this community")
	}

	if err := h.communityRepository.UpdateCommunity(ctx, communityID, &req); err != nil {
		if strings.Contains(err.Error(), "title is already taken") {
			return echo.NewHTTPError(http.StatusConflict, map[string]string{"title": "Title is already taken"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"id": communityID}})
}

// DeleteCommunity deletes the caller's community and everything in it
func (h *CommunityHandler) DeleteCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.engine.DeleteCommunity(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Community not found")
		}
		if err == graph.ErrNotAllowed {
			return echo.NewHTTPError(http.StatusForbidden, "You can't delete this community")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// FollowCommunity follows a community
func (h *CommunityHandler) FollowCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.FollowCommunity(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Community not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowCommunity unfollows a community
func (h *CommunityHandler) UnfollowCommunity(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.UnfollowCommunity(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Community not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}
