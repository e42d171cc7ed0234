package hub

import (
	"time"

	"github.com/docgrid/docgrid/document"
)

type MessageType string

// Consumed from editors.
const (
	MsgJoinCollection  MessageType = "JOIN_COLLECTION"
	MsgLeaveCollection MessageType = "LEAVE_COLLECTION"
)

// Produced for editors.
const (
	MsgConnectionEstablished MessageType = "CONNECTION_ESTABLISHED"
	MsgRoomJoined            MessageType = "ROOM_JOINED"
	MsgEditorJoined          MessageType = "EDITOR_JOINED"
	MsgEditorLeft            MessageType = "EDITOR_LEFT"
	MsgDocumentUpdated       MessageType = "DOCUMENT_UPDATED"
	MsgDocumentDeleted       MessageType = "DOCUMENT_DELETED"
)

// Message is the envelope for everything crossing the realtime channel,
// in both directions.
type Message struct {
	Type         MessageType       `json:"type"`
	EditorID     string            `json:"editorId,omitempty"`
	Database     string            `json:"database,omitempty"`
	Collection   string            `json:"collection,omitempty"`
	DocumentID   string            `json:"documentId,omitempty"`
	Document     document.Document `json:"document,omitempty"`
	OtherEditors []string          `json:"otherEditors"`
	Timestamp    int64             `json:"timestamp,omitempty"`
}

func now() int64 {
	return time.Now().UnixMilli()
}
