package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/service/game"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, origins []string) (*httptest.Server, *game.SessionManager, *ConnectionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := config.EngineConfig{MaxDepth: 4, TTSize: 10000, DefaultAlgorithm: "alphabeta"}
	sm := game.NewSessionManager(nil, engine, 0, zerolog.Nop())
	cm := NewConnectionManager()
	h := NewHandler(cm, sm, origins, zerolog.Nop())

	router := gin.New()
	router.GET("/ws", h.HandleWebSocket)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sm, cm
}

func dial(t *testing.T, srv *httptest.Server, query string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) domain.ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var msg domain.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestPlayOverWebSocket(t *testing.T) {
	srv, sm, _ := newTestServer(t, nil)
	conn := dial(t, srv, "?name=ada", nil)

	if err := conn.WriteJSON(domain.ClientMessage{Type: "start_game", Algorithm: "alphabeta"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	start := read(t, conn)
	if start.Type != "game_start" || start.YourPlayer != int(domain.Player1) {
		t.Fatalf("unexpected %+v", start)
	}
	if live := sm.GetActiveGames(); len(live) != 1 || live[0].PlayerName != "ada" {
		t.Fatalf("live games = %+v", live)
	}

	conn.WriteJSON(domain.ClientMessage{Type: "make_move", Column: 3})
	if m := read(t, conn); m.Type != "move_made" || m.Player != int(domain.Player1) {
		t.Fatalf("unexpected %+v", m)
	}
	if m := read(t, conn); m.Type != "move_made" || m.Player != int(domain.Player2) {
		t.Fatalf("engine did not answer: %+v", m)
	}

	conn.WriteJSON(domain.ClientMessage{Type: "make_move", Column: 9})
	if m := read(t, conn); m.Type != "error" {
		t.Fatalf("bad column accepted: %+v", m)
	}

	conn.WriteJSON(domain.ClientMessage{Type: "abandon_game"})
	if m := read(t, conn); m.Type != "game_over" || m.Reason != game.ReasonSurrender {
		t.Fatalf("unexpected %+v", m)
	}
}

func TestMessagesWithoutGame(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	conn := dial(t, srv, "", nil)

	conn.WriteJSON(domain.ClientMessage{Type: "make_move", Column: 0})
	if m := read(t, conn); m.Type != "error" || m.Message != "game not found" {
		t.Fatalf("unexpected %+v", m)
	}
	conn.WriteMessage(websocket.TextMessage, []byte("{"))
	if m := read(t, conn); m.Type != "error" {
		t.Fatalf("unexpected %+v", m)
	}
	conn.WriteJSON(domain.ClientMessage{Type: "find_match"})
	if m := read(t, conn); m.Message != "unknown message type" {
		t.Fatalf("unexpected %+v", m)
	}
}

func TestDisconnectEndsSession(t *testing.T) {
	srv, sm, cm := newTestServer(t, nil)
	conn := dial(t, srv, "", nil)
	conn.WriteJSON(domain.ClientMessage{Type: "start_game", Difficulty: "easy"})
	read(t, conn)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(sm.GetActiveGames()) == 0 && cm.Count() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session or connection left behind after disconnect")
}

func TestOriginCheck(t *testing.T) {
	srv, _, _ := newTestServer(t, []string{"http://good.example"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign origin accepted: %v", err)
	}
	dial(t, srv, "", http.Header{"Origin": {"http://good.example"}})
}
