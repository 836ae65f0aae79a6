package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialSession(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?sessionId=" + sessionID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocketReceivesUpdates(t *testing.T) {
	h, _, hub := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	view := createSession(t, h, nil)
	conn := dialSession(t, srv, view.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	rr := do(t, h, "POST", "/api/sessions/"+view.ID+"/moves", MakeMoveRequest{From: "e2", To: "e4"})
	require.Equal(t, http.StatusOK, rr.Code)

	msg := readUpdate(t, conn)
	assert.JSONEq(t, `"move"`, string(msg["type"]))
	assert.JSONEq(t, `"`+view.ID+`"`, string(msg["sessionId"]))

	var resp MoveResponse
	require.NoError(t, json.Unmarshal(msg["data"], &resp))
	assert.Equal(t, "e4", resp.Result.SAN)

	rr = do(t, h, "DELETE", "/api/sessions/"+view.ID+"/moves/last", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	msg = readUpdate(t, conn)
	assert.JSONEq(t, `"undo"`, string(msg["type"]))
}

func TestWebSocketPing(t *testing.T) {
	h, _, hub := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	view := createSession(t, h, nil)
	conn := dialSession(t, srv, view.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	msg := readUpdate(t, conn)
	assert.JSONEq(t, `"pong"`, string(msg["type"]))
}

func TestWebSocketOnlyWatchedSession(t *testing.T) {
	h, _, hub := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	watched := createSession(t, h, nil)
	other := createSession(t, h, nil)
	conn := dialSession(t, srv, watched.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(watched.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	rr := do(t, h, "POST", "/api/sessions/"+other.ID+"/moves", MakeMoveRequest{From: "d2", To: "d4"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, "POST", "/api/sessions/"+watched.ID+"/moves", MakeMoveRequest{From: "c2", To: "c4"})
	require.Equal(t, http.StatusOK, rr.Code)

	msg := readUpdate(t, conn)
	var resp MoveResponse
	require.NoError(t, json.Unmarshal(msg["data"], &resp))
	assert.Equal(t, watched.ID, resp.Session.ID)
	assert.Equal(t, "c4", resp.Result.SAN)
}

func TestWebSocketUnregister(t *testing.T) {
	h, _, hub := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	view := createSession(t, h, nil)
	conn := dialSession(t, srv, view.ID)
	require.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(view.ID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRejectsUnknownSession(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rr := do(t, h, "GET", "/ws?sessionId=missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "GET", "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(1)

	hub.BroadcastSessionUpdate(SessionUpdate{SessionID: "a", Type: UpdateMove})
	hub.BroadcastSessionUpdate(SessionUpdate{SessionID: "a", Type: UpdateMove})

	assert.Len(t, hub.broadcast, 1)
	assert.Equal(t, 0, hub.ClientCount("a"))
}
