package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stockwatch/internal/feature/quotes/transport/http/dto"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// UpdateSubscriber はデータ更新通知の購読口です。受け取る値はアクション名です。
type UpdateSubscriber interface {
	Subscribe() (<-chan string, func())
}

// UpdatesHandler はデータ更新通知をWebSocketクライアントへ中継します。
type UpdatesHandler struct {
	sub      UpdateSubscriber
	upgrader websocket.Upgrader
}

// NewUpdatesHandler はUpdatesHandlerを生成します。
func NewUpdatesHandler(sub UpdateSubscriber) *UpdatesHandler {
	return &UpdatesHandler{
		sub: sub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve はWebSocketにアップグレードし、通知ごとに {"action": "..."} を送ります。
//
// GET /ws
func (h *UpdatesHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	updates, unsubscribe := h.sub.Subscribe()
	done := make(chan struct{})

	go readPump(conn, done)
	writePump(conn, updates, done)

	unsubscribe()
	_ = conn.Close()
}

// readPump はクライアントからのメッセージを読み捨て、切断を検知します。
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, updates <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case action, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(dto.DataUpdatedMessage{Action: action}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
