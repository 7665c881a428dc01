package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/service/friends"
	"github.com/shubhip58/Chattify/internal/store"
)

// FriendsHandlers provides HTTP handlers for friend management endpoints.
type FriendsHandlers struct {
	service *friends.Service
	log     *zerolog.Logger
}

// NewFriendsHandlers creates a new friends handlers instance.
func NewFriendsHandlers(svc *friends.Service, logger *zerolog.Logger) *FriendsHandlers {
	return &FriendsHandlers{
		service: svc,
		log:     logger,
	}
}

// SendFriendRequestRequest represents the request body for sending a friend request.
type SendFriendRequestRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func usersToResponse(users []*store.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{ID: u.ID, Name: u.Name, Username: u.Username})
	}
	return out
}

// SendRequest handles sending a friend request.
// POST /api/friends/requests
func (h *FriendsHandlers) SendRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send friend request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	_, err := h.service.SendRequest(c.Request.Context(), uid, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, friends.ErrCannotFriendSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot send friend request to yourself"})
		case errors.Is(err, friends.ErrAlreadyFriends):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "already friends"})
		case errors.Is(err, friends.ErrRequestAlreadyExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "friend request already exists"})
		case errors.Is(err, friends.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			h.log.Error().Err(err).Int64("from_user_id", uid).Int64("to_user_id", req.UserID).Msg("failed to send friend request")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.log.Info().Int64("from_user_id", uid).Int64("to_user_id", req.UserID).Msg("friend request sent")
	c.Status(http.StatusCreated)
}

// AcceptRequest handles accepting a pending friend request.
// POST /api/friends/requests/:sender_id/accept
func (h *FriendsHandlers) AcceptRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	senderID, err := strconv.ParseInt(c.Param("sender_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sender id"})
		return
	}

	if err := h.service.AcceptRequest(c.Request.Context(), uid, senderID); err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "friend request not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Int64("sender_id", senderID).Msg("failed to accept friend request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("user_id", uid).Int64("sender_id", senderID).Msg("friend request accepted")
	c.Status(http.StatusOK)
}

// ListFriends handles listing accepted friends.
// GET /api/friends
func (h *FriendsHandlers) ListFriends(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.service.ListFriends(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list friends")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}

// ListPendingRequests handles listing incoming pending friend requests.
// GET /api/friends/requests
func (h *FriendsHandlers) ListPendingRequests(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.service.ListPendingRequests(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list pending requests")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}
