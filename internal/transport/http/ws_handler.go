package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/shubhip58/Chattify/internal/auth"
	"github.com/shubhip58/Chattify/internal/core"
	"github.com/shubhip58/Chattify/internal/proto"
	"github.com/shubhip58/Chattify/internal/store"
	"github.com/shubhip58/Chattify/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to a core.Session.
type WSHandler struct {
	hub       *core.Hub
	auth      *auth.Service
	messages  store.MessageStore
	rateLimit int
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, messages store.MessageStore, rateLimit int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:       hub,
		auth:      authService,
		messages:  messages,
		rateLimit: rateLimit,
		log:       logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	// Identity is resolved before the upgrade; absence of a valid token
	// leaves the connection anonymous rather than rejecting it.
	identity := h.resolveIdentity(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID())
	session := core.NewSession(h.hub, client, h.messages, h.log)

	// Cleanup runs on every exit path, normal close or network drop alike.
	defer session.Disconnect()
	session.Connect(identity)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// resolveIdentity extracts the user from a Bearer token in the Authorization
// header or a "token" query parameter. Returns nil when no valid token is
// present.
func (h *WSHandler) resolveIdentity(r *stdhttp.Request) *core.Identity {
	token := r.URL.Query().Get("token")
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return nil
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected, connection stays anonymous")
		return nil
	}

	return &core.Identity{UserID: claims.UserID, Name: claims.Username}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	limiter := newRateLimiter(h.rateLimit)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	clientID := session.Client().ID
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "rate_limited", Msg: "too many events"},
			}); err != nil {
				return err
			}
			continue
		}

		protoErr := dispatchInbound(ctx, session, inbound)
		if protoErr != nil {
			h.log.Debug().Str("client_id", clientID).Str("type", inbound.Type).Str("code", protoErr.Code).Msg("inbound rejected")
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
