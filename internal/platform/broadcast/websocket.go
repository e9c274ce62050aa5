package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"voteflow/internal/shared/events"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait    = 10 * time.Second
	defaultPongWait     = 60 * time.Second
	maxInboundFrameSize = 4096
)

// WebSocketHandler upgrades requests and bridges each connection to the hub:
// inbound subscribe frames join topics, queued frames are written out, and
// the connection ending unsubscribes it everywhere.
type WebSocketHandler struct {
	Hub         *Hub
	Logger      *slog.Logger
	WriteWait   time.Duration
	PongWait    time.Duration
	CheckOrigin func(r *http.Request) bool
}

func (h WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.CheckOrigin,
	}
	if upgrader.CheckOrigin == nil {
		upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed",
			"event", "broadcast_upgrade_failed",
			"module", "internal/platform/broadcast",
			"layer", "platform",
			"remote_addr", r.RemoteAddr,
			"error", err.Error(),
		)
		return
	}

	client, err := h.Hub.Connect()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()),
			time.Now().Add(h.writeWait()))
		_ = conn.Close()
		return
	}

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

func (h WebSocketHandler) readPump(conn *websocket.Conn, client *Client) {
	logger := h.logger()
	defer func() {
		h.Hub.Disconnect(client)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxInboundFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait()))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read ended",
					"event", "broadcast_read_ended",
					"module", "internal/platform/broadcast",
					"layer", "platform",
					"client_id", client.ID,
					"error", err.Error(),
				)
			}
			return
		}

		frame, err := events.Decode(raw)
		if err != nil {
			logger.Debug("ignoring undecodable frame",
				"event", "broadcast_frame_invalid",
				"module", "internal/platform/broadcast",
				"layer", "platform",
				"client_id", client.ID,
				"error", err.Error(),
			)
			continue
		}
		if frame.Event != events.EventSubscribe {
			continue
		}
		var req events.SubscribeData
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			continue
		}
		if err := h.Hub.Subscribe(client, req.Channel); err != nil {
			logger.Debug("subscribe rejected",
				"event", "broadcast_subscribe_rejected",
				"module", "internal/platform/broadcast",
				"layer", "platform",
				"client_id", client.ID,
				"topic", req.Channel,
				"error", err.Error(),
			)
		}
	}
}

func (h WebSocketHandler) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(h.pingInterval())
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait()))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait()))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h WebSocketHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h WebSocketHandler) writeWait() time.Duration {
	if h.WriteWait <= 0 {
		return defaultWriteWait
	}
	return h.WriteWait
}

func (h WebSocketHandler) pongWait() time.Duration {
	if h.PongWait <= 0 {
		return defaultPongWait
	}
	return h.PongWait
}

// pings go out a little faster than the peer is allowed to stay silent
func (h WebSocketHandler) pingInterval() time.Duration {
	return h.pongWait() * 9 / 10
}
