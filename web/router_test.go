package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chathub/projection"
	"chathub/repositories"
	"chathub/runtime"
	"chathub/runtime/workers"
	"chathub/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromString("error")

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepository := repositories.NewUserRepository(db)
	presence := runtime.NewPresence()
	orchestrator := runtime.NewOrchestrator(
		log, workers.NewSupervisor(log, 10*time.Millisecond),
		runtime.NewRegistry(), presence,
		projection.NewRoster(userRepository, presence),
		repositories.NewMessageRepository(db, log),
		64, time.Second, time.Hour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	orchestrator.Start(ctx)
	t.Cleanup(func() {
		orchestrator.Stop()
		cancel()
	})

	handlers := NewHandlers(
		log,
		services.NewAuthService(userRepository, time.Hour),
		services.NewChatService(orchestrator),
		services.NewChannelService(repositories.NewChannelRepository(db)),
		services.NewPresenceService(orchestrator),
		16,
	)
	server := httptest.NewServer(NewRouter(handlers))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	request, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := server.Client().Do(request)
	require.NoError(t, err)
	return response, decodeBody(t, response)
}

func getJSON(t *testing.T, server *httptest.Server, path, token string) (*http.Response, map[string]any) {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := server.Client().Do(request)
	require.NoError(t, err)
	return response, decodeBody(t, response)
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	defer response.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	return payload
}

func registerAndLogin(t *testing.T, server *httptest.Server, username, email string) string {
	t.Helper()
	response, _ := postJSON(t, server, "/api/auth/register", "", gin.H{
		"username": username, "email": email, "password": "Str0ng&Secret!pass",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	response, payload := postJSON(t, server, "/api/auth/login", "", gin.H{
		"email": email, "password": "Str0ng&Secret!pass",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)
	token, _ := payload["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func Test_Auth_Endpoints(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	// Registration and login round trip
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	// Registering the same email again conflicts
	response, _ := postJSON(t, server, "/api/auth/register", "", gin.H{
		"username": "impostor", "email": "alice@example.com", "password": "Str0ng&Secret!pass",
	})
	req.Equal(http.StatusConflict, response.StatusCode)

	// A wrong password is unauthorized
	response, _ = postJSON(t, server, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong password",
	})
	req.Equal(http.StatusUnauthorized, response.StatusCode)

	// The token resolves back to the identity
	response, payload := getJSON(t, server, "/api/auth/me", token)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal("alice", payload["username"])

	// Protected routes reject missing and garbage tokens
	response, _ = getJSON(t, server, "/api/auth/me", "")
	req.Equal(http.StatusUnauthorized, response.StatusCode)
	response, _ = getJSON(t, server, "/api/presence", "garbage")
	req.Equal(http.StatusUnauthorized, response.StatusCode)
}

func Test_Channel_Endpoints(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	alice := registerAndLogin(t, server, "alice", "alice@example.com")
	bob := registerAndLogin(t, server, "bob", "bob@example.com")

	// Alice creates a channel and is auto-joined
	response, payload := postJSON(t, server, "/api/channels/create", alice, gin.H{"name": "general"})
	req.Equal(http.StatusCreated, response.StatusCode)
	channel := payload["channel"].(map[string]any)
	channelID := channel["id"].(string)
	req.NotEmpty(channelID)

	// A duplicate name conflicts, a blank name is rejected
	response, _ = postJSON(t, server, "/api/channels/create", bob, gin.H{"name": "general"})
	req.Equal(http.StatusConflict, response.StatusCode)
	response, _ = postJSON(t, server, "/api/channels/create", bob, gin.H{"name": "   "})
	req.Equal(http.StatusBadRequest, response.StatusCode)

	// Bob joins; joining twice is harmless
	response, payload = postJSON(t, server, "/api/channels/join", bob, gin.H{"channelId": channelID})
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal(true, payload["joined"])
	response, payload = postJSON(t, server, "/api/channels/join", bob, gin.H{"channelId": channelID})
	req.Equal(http.StatusOK, response.StatusCode)
	req.Equal(false, payload["joined"])

	// Both appear in the member list
	response, payload = getJSON(t, server, "/api/channels/"+channelID+"/members", alice)
	req.Equal(http.StatusOK, response.StatusCode)
	req.Len(payload["members"], 2)

	// Rename, then the listing reflects it
	request, err := http.NewRequest(http.MethodPut, server.URL+"/api/channels/update/"+channelID,
		strings.NewReader(`{"name":"announcements"}`))
	req.NoError(err)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+alice)
	response, err = server.Client().Do(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)
	response.Body.Close()

	response, payload = getJSON(t, server, "/api/channels", alice)
	req.Equal(http.StatusOK, response.StatusCode)
	channels := payload["channels"].([]any)
	req.Len(channels, 1)
	req.Equal("announcements", channels[0].(map[string]any)["name"])

	// Delete, then joining it reports not found
	request, err = http.NewRequest(http.MethodDelete, server.URL+"/api/channels/delete/"+channelID, nil)
	req.NoError(err)
	request.Header.Set("Authorization", "Bearer "+alice)
	response, err = server.Client().Do(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)
	response.Body.Close()

	response, _ = postJSON(t, server, "/api/channels/join", bob, gin.H{"channelId": channelID})
	req.Equal(http.StatusNotFound, response.StatusCode)
}

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readFrameOfType drains frames until one of the wanted type arrives.
func readFrameOfType(t *testing.T, conn *websocket.Conn, frameType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var payload map[string]any
		require.NoError(t, conn.ReadJSON(&payload))
		if payload["type"] == frameType {
			return payload
		}
	}
}

func Test_Websocket_Message_Flow(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	alice := registerAndLogin(t, server, "alice", "alice@example.com")
	bob := registerAndLogin(t, server, "bob", "bob@example.com")

	_, payload := postJSON(t, server, "/api/channels/create", alice, gin.H{"name": "general"})
	channelID := payload["channel"].(map[string]any)["id"].(string)

	// Alice connects and receives the initial presence broadcast
	aliceConn := dialWS(t, server, alice)
	presence := readFrameOfType(t, aliceConn, "presenceUpdate")
	req.Equal(true, presence["isOnline"])

	// Bob connects; Alice sees him come online in the directory
	bobConn := dialWS(t, server, bob)
	presence = readFrameOfType(t, aliceConn, "presenceUpdate")
	users := presence["users"].([]any)
	req.Len(users, 2)

	// Both subscribe to the channel
	req.NoError(aliceConn.WriteJSON(gin.H{"type": "joinChannel", "channelId": channelID}))
	req.NoError(bobConn.WriteJSON(gin.H{"type": "joinChannel", "channelId": channelID}))
	time.Sleep(100 * time.Millisecond)

	// When Alice sends a message
	req.NoError(aliceConn.WriteJSON(gin.H{"type": "sendMessage", "channelId": channelID, "text": "hello bob"}))

	// Then both subscribers receive it, sender included
	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		frame := readFrameOfType(t, conn, "newMessage")
		req.Equal("hello bob", frame["text"])
		req.Equal(channelID, frame["channelId"])
		sender := frame["sender"].(map[string]any)
		req.Equal("alice", sender["username"])
	}

	// And the history page returns the same message
	response, payload := getJSON(t, server, fmt.Sprintf("/api/messages/%s?page=1&limit=20", channelID), bob)
	req.Equal(http.StatusOK, response.StatusCode)
	messages := payload["messages"].([]any)
	req.Len(messages, 1)
	req.Equal("hello bob", messages[0].(map[string]any)["text"])
	req.Equal(float64(1), payload["total"])
	req.Equal(false, payload["hasMore"])

	// And the roster endpoint shows both users online
	response, payload = getJSON(t, server, "/api/presence", alice)
	req.Equal(http.StatusOK, response.StatusCode)
	for _, raw := range payload["users"].([]any) {
		entry := raw.(map[string]any)
		req.Equal(true, entry["isOnline"], "user %v should be online", entry["username"])
	}
}

func Test_Websocket_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	// When dialing with a garbage token the server closes immediately
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=garbage"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()

	req.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	_, _, err = conn.ReadMessage()
	req.Error(err)
	req.True(websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
