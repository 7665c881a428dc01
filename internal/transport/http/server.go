package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/auth"
	"github.com/shubhip58/Chattify/internal/config"
	"github.com/shubhip58/Chattify/internal/core"
	"github.com/shubhip58/Chattify/internal/service/friends"
	"github.com/shubhip58/Chattify/internal/store"
)

// NewServer builds the HTTP server: REST API plus the WebSocket endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	friendsService := friends.New(st)

	apiHandlers := NewAPIHandlers(authService, logger)
	userHandlers := NewUserHandlers(friendsService, logger)
	friendsHandlers := NewFriendsHandlers(friendsService, logger)
	messageHandlers := NewMessageHandlers(st, logger)
	wsHandler := NewWSHandler(hub, authService, st, cfg.WSMsgRateLimit, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	router.POST("/api/signup", apiHandlers.Signup)
	router.POST("/api/login", apiHandlers.Login)

	authed := router.Group("/", AuthMiddleware(authService, logger))
	authed.GET("/api/users", userHandlers.BrowseUsers)
	authed.GET("/api/friends", friendsHandlers.ListFriends)
	authed.GET("/api/friends/requests", friendsHandlers.ListPendingRequests)
	authed.POST("/api/friends/requests", friendsHandlers.SendRequest)
	authed.POST("/api/friends/requests/:sender_id/accept", friendsHandlers.AcceptRequest)
	authed.GET("/api/messages/:friend_id", messageHandlers.GetMessages)

	// The WebSocket endpoint resolves its token itself: a connection without
	// a valid token is accepted as anonymous, not rejected.
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
