package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

const (
	writeWait      = 10 * time.Second
	sessionBuffer  = 64
	maxClientFrame = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket streams the caller's notifications as JSON frames until
// either side closes the connection.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := callerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// Register before the handshake completes so nothing sent after the
	// client sees 101 is missed.
	session := multiplayer.NewChannelSession(multiplayer.NewSessionID(), sessionBuffer)
	h.hub.Register(user, session)
	defer h.hub.Unregister(user, session.ID())
	defer session.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user", user, "err", err)
		return
	}
	defer conn.Close()

	h.logger.Debug("websocket opened", "user", user, "session", session.ID())
	defer h.logger.Debug("websocket closed", "user", user, "session", session.ID())

	// Clients only listen; reading detects the close handshake.
	conn.SetReadLimit(maxClientFrame)
	go func() {
		defer session.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-session.Done():
			return
		case <-h.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}
