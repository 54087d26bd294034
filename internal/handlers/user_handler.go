package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	chatRepository repositories.ChatRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, chatRepo repositories.ChatRepository) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		chatRepository: chatRepo,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/privacy", h.SetPrivacy)
}

// UserProfile is a user profile decorated with the viewer's relationship to it
type UserProfile struct {
	models.User
	IsFollowing bool   `json:"is_following"`
	IsRequested bool   `json:"is_requested,omitempty"`
	ChatID      string `json:"chat_id,omitempty"`
}

// GetUsers lists users by the requested relation: a username search, another
// user's followers or following, or the caller's sent/received requests
func (h *UserHandler) GetUsers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	var (
		users []models.User
		err   error
	)
	switch c.QueryParam("type") {
	case "Search":
		users, err = h.userRepository.SearchUsers(ctx, c.QueryParam("username"))
	case "Followers":
		users, err = h.relatedUsers(c, c.QueryParam("id"), func(u *models.User) []string { return u.Followers })
	case "Following":
		users, err = h.relatedUsers(c, c.QueryParam("id"), func(u *models.User) []string { return u.Following })
	case "SentRequest":
		users, err = h.relatedUsers(c, currentUserID, func(u *models.User) []string { return u.SentReq })
	case "ReceivedRequest":
		users, err = h.relatedUsers(c, currentUserID, func(u *models.User) []string { return u.ReceivedReq })
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown list type")
	}
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.UserCompact, 0, len(users))
	for i := range users {
		compact = append(compact, users[i].Compact())
	}
	return c.JSON(http.StatusOK, compact)
}

func (h *UserHandler) relatedUsers(c echo.Context, userID string, pick func(*models.User) []string) ([]models.User, error) {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}
	return h.userRepository.GetUsersByIDs(c.Request().Context(), pick(user))
}

// GetUser retrieves a user profile decorated with the viewer's relationship
// to it and the conversation id shared with the viewer, if one exists
func (h *UserHandler) GetUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile := UserProfile{User: *user}
	for _, id := range user.Followers {
		if id == currentUserID {
			profile.IsFollowing = true
			break
		}
	}
	if !profile.IsFollowing {
		for _, id := range user.ReceivedReq {
			if id == currentUserID {
				profile.IsRequested = true
				break
			}
		}
	}
	if conversation, err := h.chatRepository.FindByUsers(ctx, currentUserID, user.ID.Hex()); err == nil {
		profile.ChatID = conversation.UUID
	}

	// the relationship sets are the viewer's business only as booleans
	profile.Followers = nil
	profile.ReceivedReq = nil
	profile.SentReq = nil

	return c.JSON(http.StatusOK, profile)
}

// SetPrivacy toggles the caller's account privacy
func (h *UserHandler) SetPrivacy(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePrivacyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.userRepository.SetPrivacy(c.Request().Context(), currentUserID, req.Status); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"is_private": req.Status}})
}
