package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
	"github.com/Suleiman700/Watch-Together-v4/internal/registry"
	"github.com/Suleiman700/Watch-Together-v4/internal/relay"
	"github.com/Suleiman700/Watch-Together-v4/internal/repository"
	"github.com/Suleiman700/Watch-Together-v4/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *repository.InMemoryRoomStore) {
	t.Helper()

	store := repository.NewInMemoryRoomStore()
	sessions := registry.NewSessionRegistry()
	broadcast := relay.New(store, sessions, nil)
	svc := service.NewRoomService(store, broadcast, nil)
	controller := NewRoomController(svc, sessions, nil)

	return SetupRouter(controller, []string{"http://localhost:3000"}), store
}

func TestCreateRoomEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"username":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		RoomCode string `json:"roomCode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.RoomCode, domain.CodeLength)
}

func TestCreateRoomRejectsBadUsername(t *testing.T) {
	router, _ := setupRouter(t)

	for _, payload := range []string{`{"username":"a"}`, `{}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload: %s", payload)
	}
}

func TestRoomExistsEndpoint(t *testing.T) {
	router, store := setupRouter(t)
	_, err := store.CreateRoom(context.Background(), "ABC123")
	require.NoError(t, err)

	cases := []struct {
		path string
		code int
	}{
		{"/api/rooms/ABC123", http.StatusOK},
		{"/api/rooms/ZZZZZZ", http.StatusNotFound},
		{"/api/rooms/ABC", http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code, "path: %s", tc.path)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type wireFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wireFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketSessionLifecycle(t *testing.T) {
	router, store := setupRouter(t)
	_, err := store.CreateRoom(context.Background(), "ABC123")
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// First frame is always the session id.
	session := readFrame(t, conn)
	require.Equal(t, domain.TypeSession, session.Type)
	var sessionPayload struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(session.Payload, &sessionPayload))
	assert.NotEmpty(t, sessionPayload.SessionID)

	// A malformed frame earns an error frame, not a disconnect.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errFrame := readFrame(t, conn)
	assert.Equal(t, domain.TypeError, errFrame.Type)

	// Joining still works on the same connection.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    domain.TypeJoin,
		"payload": map[string]string{"roomCode": "ABC123", "username": "alice"},
	}))

	join := readFrame(t, conn)
	require.Equal(t, domain.TypeJoin, join.Type)
	var joinPayload struct {
		Username string `json:"username"`
		IsHost   bool   `json:"isHost"`
	}
	require.NoError(t, json.Unmarshal(join.Payload, &joinPayload))
	assert.Equal(t, "alice", joinPayload.Username)
	assert.True(t, joinPayload.IsHost)

	sync := readFrame(t, conn)
	require.Equal(t, domain.TypeSync, sync.Type)
	var syncPayload struct {
		Participants []struct {
			SessionID string `json:"sessionId"`
		} `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(sync.Payload, &syncPayload))
	require.Len(t, syncPayload.Participants, 1)
	assert.Equal(t, sessionPayload.SessionID, syncPayload.Participants[0].SessionID)
}

func TestWebSocketDisconnectRemovesParticipant(t *testing.T) {
	router, store := setupRouter(t)
	_, err := store.CreateRoom(context.Background(), "ABC123")
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}

	readFrame(t, conn) // session
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    domain.TypeJoin,
		"payload": map[string]string{"roomCode": "ABC123", "username": "alice"},
	}))
	readFrame(t, conn) // join
	readFrame(t, conn) // sync

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		roster, err := store.Participants(context.Background(), "ABC123")
		return err == nil && len(roster) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
