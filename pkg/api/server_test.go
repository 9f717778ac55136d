package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quantikbook/internal/quantik"
)

// wsReply mirrors WSResponse with the payload left raw.
type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(testBook(t), quantik.NewSolver(1<<16), DefaultConfig(), "test")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg WSMessage) wsReply {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	var reply wsReply
	require.NoError(t, ws.ReadJSON(&reply))
	return reply
}

func lookupPayload(t *testing.T, req LookupRequest) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return b
}

func TestServerRoutes(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Post(ts.URL+"/api/lookup", "application/json", strings.NewReader(`{"moves":"000"}`))
	require.NoError(t, err)
	var lookup LookupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lookup))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, SourceBook, lookup.Source)

	resp, err = http.Get(ts.URL + "/api/book/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// lookups only accept POST
	resp, err = http.Get(ts.URL + "/api/lookup")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerMetrics(t *testing.T) {
	ts := testServer(t)

	for _, moves := range []string{"000", tenPly} {
		body, err := json.Marshal(LookupRequest{Moves: moves})
		require.NoError(t, err)
		resp, err := http.Post(ts.URL+"/api/lookup", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `quantikbook_api_lookups_total{source="book",status="ok"} 1`)
	assert.Contains(t, text, `quantikbook_api_lookups_total{source="solver",status="ok"} 1`)
	assert.Contains(t, text, "quantikbook_api_solve_duration_seconds_count 1")
	assert.Contains(t, text, "quantikbook_solver_cache_hit_ratio")
	assert.Contains(t, text, "go_goroutines")
}

func TestServersHaveSeparateRegistries(t *testing.T) {
	// a second server must not panic on duplicate registration
	assert.NotPanics(t, func() {
		NewServer(nil, quantik.NewSolver(0), DefaultConfig(), "a")
		NewServer(nil, quantik.NewSolver(0), DefaultConfig(), "b")
	})
}

func TestWebSocketPing(t *testing.T) {
	ws := dialWS(t, testServer(t))

	reply := roundTrip(t, ws, WSMessage{Type: "ping", ID: "test-ping-1"})
	assert.Equal(t, "pong", reply.Type)
	assert.Equal(t, "test-ping-1", reply.ID)
}

func TestWebSocketLookup(t *testing.T) {
	ws := dialWS(t, testServer(t))

	reply := roundTrip(t, ws, WSMessage{
		Type:    "lookup",
		ID:      "lookup-1",
		Payload: lookupPayload(t, LookupRequest{Moves: "000 121"}),
	})
	require.Equal(t, "result", reply.Type, reply.Error)
	assert.Equal(t, "lookup-1", reply.ID)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(reply.Payload, &resp))
	assert.Equal(t, SourceBook, resp.Source)
	assert.Len(t, resp.Table, quantik.NumActions)
}

func TestWebSocketSolve(t *testing.T) {
	ws := dialWS(t, testServer(t))

	reply := roundTrip(t, ws, WSMessage{
		Type:    "solve",
		Payload: lookupPayload(t, LookupRequest{Moves: tenPly}),
	})
	require.Equal(t, "result", reply.Type, reply.Error)

	// a missing ID is replaced by a generated one
	_, err := uuid.Parse(reply.ID)
	assert.NoError(t, err)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(reply.Payload, &resp))
	assert.Equal(t, SourceSolver, resp.Source)
	assert.Equal(t, tenPlyWinning, resp.Winning)
}

func TestWebSocketErrors(t *testing.T) {
	ws := dialWS(t, testServer(t))

	tests := []struct {
		name     string
		msg      WSMessage
		wantCode string
	}{
		{"unknown type", WSMessage{Type: "evaluate", ID: "e1"}, "UNKNOWN_TYPE"},
		{"bad payload", WSMessage{Type: "lookup", ID: "e2", Payload: json.RawMessage(`"moves"`)}, "INVALID_JSON"},
		{"illegal move", WSMessage{Type: "lookup", ID: "e3", Payload: lookupPayload(t, LookupRequest{Moves: "000 010"})}, "ILLEGAL_MOVE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply := roundTrip(t, ws, tc.msg)
			assert.Equal(t, "error", reply.Type)
			assert.Equal(t, tc.msg.ID, reply.ID)
			assert.Equal(t, tc.wantCode, reply.Code)
			assert.NotEmpty(t, reply.Error)
		})
	}
}
