// Package notes wraps the intelligent note service: notes, sharing, AI
// suggestions and the live editor channel.
package notes

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// NoteInput creates or updates a note. Content is HTML.
type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// ShareInput grants a collaborator access by email.
type ShareInput struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// Service is the IntelligentNoteService wrapper.
type Service interface {
	ListNotes(ctx context.Context, v models.Viewer) ([]models.Note, error)
	GetNote(ctx context.Context, v models.Viewer, id string) (models.Note, error)
	CreateNote(ctx context.Context, v models.Viewer, in NoteInput) (models.Note, error)
	UpdateNote(ctx context.Context, v models.Viewer, id string, in NoteInput) (models.Note, error)
	DeleteNote(ctx context.Context, v models.Viewer, id string) error
	GetAISuggestions(ctx context.Context, v models.Viewer, noteID string) ([]models.AISuggestion, error)
	ApplyAISuggestion(ctx context.Context, v models.Viewer, noteID, suggestionID string) (models.Note, error)
	ShareNote(ctx context.Context, v models.Viewer, noteID string, in ShareInput) (models.Note, error)
	RemoveCollaborator(ctx context.Context, v models.Viewer, noteID, userID string) (models.Note, error)
	// Connect subscribes to the note's live channel: edits from other
	// collaborators and, when available, AI suggestions.
	Connect(ctx context.Context, v models.Viewer, noteID string) (live.Stream, error)
}
