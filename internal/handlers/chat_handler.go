package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/models"
	"github.com/rifat29/ripple/backend/internal/repositories"
)

// ChatHandler handles HTTP requests related to conversations and messages
type ChatHandler struct {
	chatRepository    repositories.ChatRepository
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{
		chatRepository:    chatRepo,
		messageRepository: messageRepo,
		userRepository:    userRepo,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chats", h.GetChats)
	g.GET("/chats/:id/messages", h.GetMessages)
}

// GetChats lists the caller's conversations, most recently active first, each
// summarised with the other participant's info
func (h *ChatHandler) GetChats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	conversations, err := h.chatRepository.GetConversationsByUserID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	peerIDs := make([]string, 0, len(conversations))
	for i := range conversations {
		for _, userID := range conversations[i].Users {
			if userID != currentUserID {
				peerIDs = append(peerIDs, userID)
			}
		}
	}
	peers := make(map[string]models.UserCompact)
	if users, err := h.userRepository.GetUsersByIDs(ctx, peerIDs); err == nil {
		for i := range users {
			peers[users[i].ID.Hex()] = users[i].Compact()
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for i := range conversations {
		summary := models.ConversationSummary{
			UUID:                conversations[i].UUID,
			UnreadCount:         conversations[i].UnreadCount,
			LastMessageSenderID: conversations[i].LastMessageSenderID,
		}
		for _, userID := range conversations[i].Users {
			if userID != currentUserID {
				summary.UserID = userID
				if peer, ok := peers[userID]; ok {
					summary.Username = peer.Username
				}
			}
		}
		summaries = append(summaries, summary)
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetMessages returns a conversation's messages in chronological order. The
// caller must be a participant of the conversation.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	chatID := c.Param("id")
	ctx := c.Request().Context()

	conversation, err := h.chatRepository.FindByUUID(ctx, chatID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isParticipant := false
	for _, userID := range conversation.Users {
		if userID == currentUserID {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return echo.NewHTTPError(http.StatusForbidden, "Not a participant of this conversation")
	}

	messages, err := h.messageRepository.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, messages)
}
