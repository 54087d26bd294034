package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
}

// EnrichedNotification is a notification with its sender's info resolved
type EnrichedNotification struct {
	models.Notification
	Username       string `json:"username"`
	DisplayPicture string `json:"display_picture,omitempty"`
}

// GetNotifications lists the caller's notifications, newest first, and marks
// the moment as the caller's notification read time
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
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

	if err := h.userRepository.SetNotificationReadTime(ctx, currentUserID, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notifications, err := h.notificationRepository.GetByReceiverID(ctx, currentUserID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	senderIDs := make([]string, 0, len(notifications))
	seen := make(map[string]bool)
	for i := range notifications {
		if !seen[notifications[i].SenderID] {
			seen[notifications[i].SenderID] = true
			senderIDs = append(senderIDs, notifications[i].SenderID)
		}
	}
	senders := make(map[string]models.UserCompact)
	if users, err := h.userRepository.GetUsersByIDs(ctx, senderIDs); err == nil {
		for i := range users {
			senders[users[i].ID.Hex()] = users[i].Compact()
		}
	}

	enriched := make([]EnrichedNotification, 0, len(notifications))
	for i := range notifications {
		en := EnrichedNotification{Notification: notifications[i]}
		if sender, ok := senders[notifications[i].SenderID]; ok {
			en.Username = sender.Username
			en.DisplayPicture = sender.DisplayPicture
		}
		enriched = append(enriched, en)
	}
	return c.JSON(http.StatusOK, enriched)
}

// GetUnreadCount counts the caller's notifications created since their last
// read time
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	count, err := h.notificationRepository.CountSince(ctx, currentUserID, user.NfReadTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}
