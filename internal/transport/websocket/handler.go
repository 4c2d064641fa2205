package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/service/game"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxNameLen   = 50
)

type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Upgrader       websocket.Upgrader
	log            zerolog.Logger
}

// NewHandler accepts any origin when allowedOrigins is empty.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, allowedOrigins []string, log zerolog.Logger) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || lo.Contains(allowed, origin)
	}
}

// HandleWebSocket upgrades the request. The optional ?name= query names the
// player in saved games.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		name = "guest"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	h.handleConnection(conn, name)
}

func (h *Handler) handleConnection(conn *websocket.Conn, name string) {
	clientID := h.ConnManager.AddConnection(conn, name)
	log := h.log.With().Int64("client", clientID).Logger()
	log.Info().Str("name", name).Msg("client connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		if gs, ok := h.SessionManager.GetSessionByClientID(clientID); ok {
			gs.HandleDisconnect(clientID, h.ConnManager, h.SessionManager)
		}
		h.ConnManager.RemoveConnection(clientID)
		log.Info().Msg("client disconnected")
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go h.keepAlive(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(clientID, "invalid message format")
			continue
		}
		h.processMessage(clientID, name, msg)
	}
}

func (h *Handler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) processMessage(clientID int64, name string, msg domain.ClientMessage) {
	switch msg.Type {
	case "start_game":
		humanFirst := true
		if msg.HumanFirst != nil {
			humanFirst = *msg.HumanFirst
		}
		if _, err := h.SessionManager.StartGame(clientID, name, msg.Algorithm, msg.Difficulty, humanFirst, h.ConnManager); err != nil {
			h.sendError(clientID, err.Error())
		}

	case "make_move":
		gs, ok := h.SessionManager.GetSessionByClientID(clientID)
		if !ok {
			h.sendError(clientID, "game not found")
			return
		}
		if err := gs.HandleMove(clientID, msg.Column, h.ConnManager); err != nil {
			h.sendError(clientID, err.Error())
		}

	case "abandon_game":
		gs, ok := h.SessionManager.GetSessionByClientID(clientID)
		if !ok {
			return
		}
		if err := gs.TerminateSessionByAbandonment(clientID, h.ConnManager); err != nil {
			h.sendError(clientID, err.Error())
		}

	default:
		h.sendError(clientID, "unknown message type")
	}
}

func (h *Handler) sendError(clientID int64, message string) {
	h.ConnManager.SendMessage(clientID, domain.ServerMessage{Type: "error", Message: message})
}
