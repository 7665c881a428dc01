// Command ws_smoke is a manual end-to-end check against a running server:
// it logs in, opens the WebSocket, joins a conversation room, sends one
// message and waits for the echo.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/shubhip58/Chattify/internal/core"
	"github.com/shubhip58/Chattify/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	username := flag.String("user", "alice", "username to log in as")
	password := flag.String("password", "secret1", "password")
	userID := flag.Int64("user-id", 1, "own user id")
	friendID := flag.Int64("friend-id", 2, "friend user id to message")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	token, err := login(ctx, *base, *username, *password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	wsURL := strings.Replace(*base, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	room := core.RoomID(*userID, *friendID)

	joinPayload, _ := json.Marshal(proto.JoinData{Room: room})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	msgPayload, _ := json.Marshal(proto.SendMessageData{
		Room:       room,
		Msg:        *text,
		SenderID:   proto.UserID(*userID),
		ReceiverID: proto.UserID(*friendID),
	})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: msgPayload}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		log.Printf("received %s %s", outbound.Type, outbound.Event)
		if outbound.Type == proto.OutboundTypeError {
			return fmt.Errorf("server error: %+v", outbound.Error)
		}
		if outbound.Event == proto.EventReceiveMessage {
			log.Printf("echo received, smoke test passed")
			return nil
		}
	}
}

func login(ctx context.Context, base, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", err
	}
	return auth.Token, nil
}
