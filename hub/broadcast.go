package hub

// Send queues the message for exactly one editor. Dropped silently when
// the editor has no open connection or its queue is full; there is no
// retry and no backlog beyond the per-connection buffer.
func (h *Hub) Send(editorID string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conns[editorID]; ok {
		h.enqueueLocked(c, msg)
	}
}

// BroadcastToRoom queues the message for every member of the room except
// excludeEditorID (pass "" to reach everyone). Members whose transport is
// gone are skipped.
func (h *Hub) BroadcastToRoom(roomKey string, msg Message, excludeEditorID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(roomKey, msg, excludeEditorID)
}

// BroadcastDocumentUpdate tells the collection's room that a document
// changed, skipping the editor who made the change.
func (h *Hub) BroadcastDocumentUpdate(database, collection, documentID string, doc map[string]any, editorID string) {
	h.BroadcastToRoom(RoomKey(database, collection), Message{
		Type:       MsgDocumentUpdated,
		EditorID:   editorID,
		Database:   database,
		Collection: collection,
		DocumentID: documentID,
		Document:   doc,
		Timestamp:  now(),
	}, editorID)
}

// BroadcastDocumentDelete is the removal counterpart of
// BroadcastDocumentUpdate.
func (h *Hub) BroadcastDocumentDelete(database, collection, documentID, editorID string) {
	h.BroadcastToRoom(RoomKey(database, collection), Message{
		Type:       MsgDocumentDeleted,
		EditorID:   editorID,
		Database:   database,
		Collection: collection,
		DocumentID: documentID,
		Timestamp:  now(),
	}, editorID)
}

func (h *Hub) broadcastLocked(roomKey string, msg Message, excludeEditorID string) {
	members, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	// Snapshot before delivering; enqueueLocked never blocks, but the
	// member set must not change under the iteration.
	ids := make([]string, 0, len(members))
	for id := range members {
		if id != excludeEditorID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if c, ok := h.conns[id]; ok {
			h.enqueueLocked(c, msg)
		}
	}
}

func (h *Hub) enqueueLocked(c *Conn, msg Message) {
	if c.closed {
		return
	}
	select {
	case c.out <- msg:
	default:
		h.log.Warn("dropping message, outbound queue full", "editor", c.editorID, "type", msg.Type)
	}
}
