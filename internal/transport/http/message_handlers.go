package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/store"
)

// MessageHandlers provides the conversation history endpoint.
type MessageHandlers struct {
	store store.MessageStore
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.MessageStore, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store: st,
		log:   logger,
	}
}

// MessageResponse represents one message in the history payload.
type MessageResponse struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

// GetMessages returns the full ordered conversation between the caller and
// the given friend. This is a synchronous read, not a realtime event.
// GET /api/messages/:friend_id
func (h *MessageHandlers) GetMessages(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	friendID, err := strconv.ParseInt(c.Param("friend_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid friend id"})
		return
	}

	messages, err := h.store.ListConversation(c.Request.Context(), uid, friendID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("friend_id", friendID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageResponse{
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Content:    msg.Content,
		})
	}

	c.JSON(http.StatusOK, response)
}
