package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/service/friends"
)

// UserHandlers provides HTTP handlers for user discovery.
type UserHandlers struct {
	friends *friends.Service
	log     *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(svc *friends.Service, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		friends: svc,
		log:     logger,
	}
}

// BrowseUsers lists users the caller could befriend: everyone except self,
// existing friends, and users with a pending request either direction.
// GET /api/users
func (h *UserHandlers) BrowseUsers(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.friends.BrowseUsers(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to browse users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}
