package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tokenscope/internal/live"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	wsBufSize  = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWS upgrades to a WebSocket, sends a snapshot and then streams every
// applied update until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, ch := s.model.Subscribe(wsBufSize)
	defer s.model.Unsubscribe(subID)

	closed := make(chan struct{})
	go readPump(conn, closed)

	snapshot := WSMessage{
		Type:   live.TypeSnapshot,
		Seq:    s.model.Sequence(),
		Tokens: tokensToJSON(s.model.Snapshot()),
	}
	if err := writeMessage(conn, snapshot); err != nil {
		return
	}
	s.log.Info("websocket client subscribed", "subID", subID, "remote", r.RemoteAddr)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			s.log.Info("websocket client disconnected", "subID", subID)
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			msg := WSMessage{Type: live.TypeUpdate, Seq: evt.Seq, Update: updateToJSON(evt.Update)}
			if err := writeMessage(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg WSMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client frames and keeps the read deadline fresh on pong.
// It closes done when the connection fails or the client closes it.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
