package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/printhub/realtime-api/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxFrameSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks belong to the auth layer upstream of this core
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is the control surface a connected session speaks:
// {"action":"join","room":"shop-7"} / {"action":"leave","room":"order-up-1a2b3c4d"}
type clientFrame struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// websocketHandler upgrades the connection and runs the session until
// disconnect. A session starts unjoined; it only receives events for rooms it
// explicitly joined.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err, "remoteAddr", r.RemoteAddr)
		return
	}

	session := realtime.NewSession()
	s.logger.Info("Session connected", "sessionID", session.ID, "remoteAddr", r.RemoteAddr)

	go s.writePump(conn, session)
	s.readPump(conn, session)
}

// readPump consumes join/leave frames until the connection dies. Teardown
// runs exactly once from here: the transport's read error is the disconnect
// signal, and DropSession is idempotent besides.
func (s *Server) readPump(conn *websocket.Conn, session *realtime.Session) {
	defer func() {
		s.registry.DropSession(session)
		session.Close()
		conn.Close()
		s.logger.Info("Session disconnected", "sessionID", session.ID)
	}()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()

		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Session read error", "error", err, "sessionID", session.ID)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("Ignoring malformed frame", "sessionID", session.ID)
			continue
		}

		if !validRoom(frame.Room) {
			s.logger.Warn("Ignoring frame with invalid room", "room", frame.Room, "sessionID", session.ID)
			continue
		}

		switch frame.Action {
		case "join":
			s.registry.Join(frame.Room, session)
		case "leave":
			s.registry.Leave(frame.Room, session)
		default:
			s.logger.Warn("Ignoring unknown action", "action", frame.Action, "sessionID", session.ID)
		}
	}
}

// writePump drains the session's outbound queue onto the connection and keeps
// the connection alive with pings.
func (s *Server) writePump(conn *websocket.Conn, session *realtime.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data := <-session.Outbound():
			conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// validRoom accepts only the two room families this core broadcasts to
func validRoom(room string) bool {
	return strings.HasPrefix(room, "shop-") || strings.HasPrefix(room, "order-")
}
