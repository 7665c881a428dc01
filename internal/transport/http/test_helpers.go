package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shubhip58/Chattify/internal/auth"
	"github.com/shubhip58/Chattify/internal/config"
	"github.com/shubhip58/Chattify/internal/core"
	"github.com/shubhip58/Chattify/internal/log"
	"github.com/shubhip58/Chattify/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the schema applied.
func createTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st *sqlite.SQLiteStore, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// startTestServer wires a full server over an in-memory store and returns it
// together with the auth service used to mint tokens.
func startTestServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteStore, *auth.Service) {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(t, st, "test-secret")
	hub := core.NewHub(log.Nop())

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}

	server := NewServer(hub, authService, st, cfg, log.Nop())
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st, authService
}

// registerTestUser creates an account and returns its token.
func registerTestUser(t *testing.T, authService *auth.Service, name, email, username string) string {
	t.Helper()

	token, err := authService.Register(context.Background(), name, email, username, "password123")
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return token
}
