package hub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = (pongTimeout * 9) / 10

	// closeBadParams is sent when the connect request is missing its
	// identity parameters.
	closeBadParams = 4000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades the request and runs the connection until the editor
// goes away. The connect URL must carry editorId and database query
// params.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	editorID := r.URL.Query().Get("editorId")
	database := r.URL.Query().Get("database")
	if editorID == "" || database == "" {
		msg := websocket.FormatCloseMessage(closeBadParams, "missing editorId or database")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		_ = ws.Close()
		return
	}

	c := h.Register(editorID, database)
	h.log.Info("editor connected", "editor", editorID, "database", database)

	go h.writePump(ws, c)

	h.Send(editorID, Message{
		Type:      MsgConnectionEstablished,
		EditorID:  editorID,
		Database:  database,
		Timestamp: now(),
	})

	h.readPump(ws, c)
}

// readPump consumes messages until the transport dies, then routes the
// teardown through Disconnect so no room membership leaks.
func (h *Hub) readPump(ws *websocket.Conn, c *Conn) {
	defer func() {
		h.Disconnect(c)
		_ = ws.Close()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("websocket read failed", "editor", c.editorID, "err", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed input never takes the connection down.
			h.log.Warn("dropping malformed message", "editor", c.editorID, "err", err)
			continue
		}
		h.handleMessage(c, msg)
	}
}

func (h *Hub) handleMessage(c *Conn, msg Message) {
	switch msg.Type {
	case MsgJoinCollection:
		if msg.Collection == "" {
			return
		}
		roomKey := RoomKey(c.database, msg.Collection)
		others := h.Join(c, roomKey, msg.Collection)
		h.Send(c.editorID, Message{
			Type:         MsgRoomJoined,
			Collection:   msg.Collection,
			OtherEditors: others,
			Timestamp:    now(),
		})
	case MsgLeaveCollection:
		if msg.Collection == "" {
			return
		}
		h.Leave(c, RoomKey(c.database, msg.Collection))
	default:
		h.log.Warn("unknown message type", "editor", c.editorID, "type", msg.Type)
	}
}

// writePump drains the connection's outbound queue onto the wire and
// keeps the peer alive with pings. Exits when the queue closes or a
// write fails.
func (h *Hub) writePump(ws *websocket.Conn, c *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.out:
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
