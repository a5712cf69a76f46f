// Package live carries whiteboard and note collaboration frames between
// browsers and the backend over WebSockets. It forwards and fans out; it
// does not order, merge or retry.
package live

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frame types.
const (
	TypeStroke = "whiteboard.stroke"
	TypeShape  = "whiteboard.shape"
	TypeText   = "whiteboard.text"
	TypeErase  = "whiteboard.erase"
	TypeClear  = "whiteboard.clear"

	TypeNoteEdit       = "note.edit"       // browser to server, every keystroke batch
	TypeNoteText       = "note.text"       // server to backend, debounced
	TypeNoteSuggestion = "note.suggestion" // backend to browser
	TypeNoteUpdated    = "note.updated"    // someone else saved new text

	TypeError = "error"
	TypeJoin  = "presence.join"
	TypeLeave = "presence.leave"
)

// Room kinds.
const (
	KindWhiteboard = "whiteboard"
	KindNote       = "note"
)

// ErrClosed is returned by Send on a closed stream.
var ErrClosed = errors.New("live: stream closed")

// Frame is the JSON envelope exchanged on every socket.
type Frame struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	ID      string          `json:"id,omitempty"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// NewFrame marshals payload into a stamped frame.
func NewFrame(typ, room, userID string, payload any) (Frame, error) {
	f := Frame{Type: typ, Room: room, ID: uuid.NewString(), UserID: userID, At: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		f.Payload = raw
	}
	return f, nil
}

// Decode unmarshals the payload into v.
func (f Frame) Decode(v any) error {
	if len(f.Payload) == 0 {
		return errors.New("live: empty payload")
	}
	return json.Unmarshal(f.Payload, v)
}

// InteractionKind returns the whiteboard interaction kind of a frame type
// ("whiteboard.stroke" gives "stroke"), or "" for other frames.
func InteractionKind(typ string) string {
	kind, ok := strings.CutPrefix(typ, KindWhiteboard+".")
	if !ok {
		return ""
	}
	return kind
}

// Inbound reports whether a browser may send typ into a room of kind.
func Inbound(kind, typ string) bool {
	switch kind {
	case KindWhiteboard:
		switch typ {
		case TypeStroke, TypeShape, TypeText, TypeErase, TypeClear:
			return true
		}
	case KindNote:
		return typ == TypeNoteEdit
	}
	return false
}

// TextPayload is the payload of note.edit, note.text and note.updated.
type TextPayload struct {
	Content string `json:"content"`
}

// ErrorPayload is the payload of error frames.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func errorFrame(room, code string) Frame {
	f, _ := NewFrame(TypeError, room, "", ErrorPayload{Code: code})
	return f
}
