package hub

import (
	"sort"
	"strings"
)

// Join puts the connection into the room, creating it on first join, and
// returns the other editors already there. A connection is in at most one
// room; joining while elsewhere leaves the old room first, presence
// broadcast included. The remaining members get an EDITOR_JOINED.
func (h *Hub) Join(c *Conn, roomKey, collection string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.roomKey != "" && c.roomKey != roomKey {
		h.leaveLocked(c, c.roomKey)
	}

	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[string]bool)
		h.rooms[roomKey] = members
	}
	members[c.editorID] = true
	c.roomKey = roomKey

	others := make([]string, 0, len(members)-1)
	for id := range members {
		if id != c.editorID {
			others = append(others, id)
		}
	}
	sort.Strings(others)

	h.broadcastLocked(roomKey, Message{
		Type:       MsgEditorJoined,
		EditorID:   c.editorID,
		Collection: collection,
		Timestamp:  now(),
	}, c.editorID)

	h.log.Info("editor joined room", "editor", c.editorID, "room", roomKey, "members", len(members))
	return others
}

// Leave removes the connection from the room, tells the remaining
// members, and deletes the room once empty.
func (h *Hub) Leave(c *Conn, roomKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomKey)
}

func (h *Hub) leaveLocked(c *Conn, roomKey string) {
	if roomKey == "" {
		return
	}
	members, ok := h.rooms[roomKey]
	if ok && members[c.editorID] {
		delete(members, c.editorID)
		h.broadcastLocked(roomKey, Message{
			Type:       MsgEditorLeft,
			EditorID:   c.editorID,
			Collection: collectionFromRoomKey(roomKey),
			Timestamp:  now(),
		}, c.editorID)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
			h.log.Info("removed empty room", "room", roomKey)
		}
	}
	if c.roomKey == roomKey {
		c.roomKey = ""
	}
}

func collectionFromRoomKey(roomKey string) string {
	if _, coll, ok := strings.Cut(roomKey, ":"); ok {
		return coll
	}
	return roomKey
}
