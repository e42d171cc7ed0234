// Package hub tracks which editors are connected and which collection
// each one is viewing, and fans change notifications out to everyone
// else in the same room.
//
// A room is keyed "database:collection" and exists exactly as long as it
// has members. Each connection owns a buffered outbound queue; delivery
// is fire-and-forget with no ordering or retry guarantees, and a slow
// consumer loses messages rather than blocking the hub.
package hub

import (
	"log/slog"
	"sync"
)

// outboundBuffer is how many pending messages a connection can absorb
// before the hub starts dropping on its queue.
const outboundBuffer = 64

// Conn is one live editor connection.
type Conn struct {
	editorID string
	database string

	// guarded by the owning hub's mutex
	roomKey string
	closed  bool

	out chan Message
}

func (c *Conn) EditorID() string { return c.editorID }
func (c *Conn) Database() string { return c.database }

// Outbound is the connection's delivery queue. The transport (or a test)
// drains it; the channel is closed when the connection is unregistered.
func (c *Conn) Outbound() <-chan Message { return c.out }

// Hub is the connection and room registry. All methods are safe for
// concurrent use.
type Hub struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[string]*Conn
	rooms map[string]map[string]bool
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:   log,
		conns: make(map[string]*Conn),
		rooms: make(map[string]map[string]bool),
	}
}

// RoomKey builds the "database:collection" room identifier.
func RoomKey(database, collection string) string {
	return database + ":" + collection
}

// Register adds a connection for the editor. The last registration for an
// id wins: any previous connection is closed and dropped from its room,
// and its later disconnect is a no-op.
func (h *Hub) Register(editorID, database string) *Conn {
	c := &Conn{
		editorID: editorID,
		database: database,
		out:      make(chan Message, outboundBuffer),
	}

	h.mu.Lock()
	if prev, ok := h.conns[editorID]; ok {
		h.dropFromRoomLocked(prev)
		h.closeConnLocked(prev)
	}
	h.conns[editorID] = c
	h.mu.Unlock()

	return c
}

// Get returns the editor's current connection, or nil.
func (h *Hub) Get(editorID string) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[editorID]
}

// Disconnect tears the connection down: leaves its room (with the usual
// presence broadcast) and unregisters it. Stale connections that were
// already replaced by a newer registration are ignored.
func (h *Hub) Disconnect(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.editorID] != c {
		h.closeConnLocked(c)
		return
	}
	h.leaveLocked(c, c.roomKey)
	delete(h.conns, c.editorID)
	h.closeConnLocked(c)
}

// ConnectionCount reports how many connections are registered.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// RoomStat is one room's membership size, for metrics and debugging.
type RoomStat struct {
	RoomKey     string `json:"roomKey"`
	EditorCount int    `json:"editorCount"`
}

// RoomStats snapshots every live room.
func (h *Hub) RoomStats() []RoomStat {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := make([]RoomStat, 0, len(h.rooms))
	for key, members := range h.rooms {
		stats = append(stats, RoomStat{RoomKey: key, EditorCount: len(members)})
	}
	return stats
}

// RoomCount reports how many rooms currently exist.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func (h *Hub) closeConnLocked(c *Conn) {
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// dropFromRoomLocked removes the connection from its room without a
// presence broadcast, for the stale-connection replacement path.
func (h *Hub) dropFromRoomLocked(c *Conn) {
	if c.roomKey == "" {
		return
	}
	if members, ok := h.rooms[c.roomKey]; ok {
		delete(members, c.editorID)
		if len(members) == 0 {
			delete(h.rooms, c.roomKey)
		}
	}
	c.roomKey = ""
}
