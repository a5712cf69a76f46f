// internal/domain/models/notes.go
package models

import "time"

// Collaborator permissions on a note.
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// NoteCollaborator is a user a note has been shared with.
type NoteCollaborator struct {
	UserID     string `bson:"user_id" json:"user_id"`
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	Permission string `bson:"permission" json:"permission"`
}

// Note is a rich-text study note.
type Note struct {
	ID            string             `bson:"_id" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	OwnerID       string             `bson:"owner_id" json:"owner_id"`
	OwnerName     string             `bson:"owner_name" json:"owner_name"`
	Collaborators []NoteCollaborator `bson:"collaborators" json:"collaborators"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CanEdit reports whether userID may change the note.
func (n Note) CanEdit(userID string) bool {
	if n.OwnerID == userID {
		return true
	}
	for _, c := range n.Collaborators {
		if c.UserID == userID && c.Permission == PermissionEdit {
			return true
		}
	}
	return false
}

// CanView reports whether userID may read the note.
func (n Note) CanView(userID string) bool {
	if n.OwnerID == userID {
		return true
	}
	for _, c := range n.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// AISuggestion is a proposed edit to a note produced by the backend.
type AISuggestion struct {
	ID          string `json:"id"`
	NoteID      string `json:"note_id"`
	Kind        string `json:"kind"` // grammar | clarity | summary | expansion
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation"`
	Applied     bool   `json:"applied"`
}
