// internal/domain/models/whiteboard.go
package models

import (
	"encoding/json"
	"time"
)

// Interaction kinds drawn on a whiteboard.
const (
	InteractionStroke = "stroke"
	InteractionShape  = "shape"
	InteractionText   = "text"
	InteractionErase  = "erase"
	InteractionClear  = "clear"
)

// WhiteboardSession is a shared drawing surface.
type WhiteboardSession struct {
	ID             string    `bson:"_id" json:"id"`
	Title          string    `bson:"title" json:"title"`
	OwnerID        string    `bson:"owner_id" json:"owner_id"`
	OwnerName      string    `bson:"owner_name" json:"owner_name"`
	CourseID       string    `bson:"course_id,omitempty" json:"course_id,omitempty"`
	ParticipantIDs []string  `bson:"participant_ids" json:"participant_ids,omitempty"`
	HasScreenshot  bool      `bson:"has_screenshot" json:"has_screenshot"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`

	Interactions []Interaction `bson:"-" json:"interactions,omitempty"`
}

// Interaction is one drawing operation. Data is opaque to the server.
type Interaction struct {
	ID        string          `bson:"_id" json:"id"`
	SessionID string          `bson:"session_id" json:"session_id"`
	UserID    string          `bson:"user_id" json:"user_id"`
	Kind      string          `bson:"kind" json:"kind"`
	Data      json.RawMessage `bson:"data" json:"data"`
	At        time.Time       `bson:"at" json:"at"`
}

// ValidInteractionKind reports whether k is a known interaction kind.
func ValidInteractionKind(k string) bool {
	switch k {
	case InteractionStroke, InteractionShape, InteractionText, InteractionErase, InteractionClear:
		return true
	}
	return false
}
