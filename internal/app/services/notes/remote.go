package notes

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.uber.org/zap"
)

// Remote calls /api/notes and dials /ws/notes on the backend.
type Remote struct {
	c      *backend.Client
	buffer int
	log    *zap.Logger
}

func NewRemote(c *backend.Client, buffer int, logger *zap.Logger) *Remote {
	return &Remote{c: c, buffer: buffer, log: logger}
}

func notePath(id string) string {
	return "/api/notes/" + backend.PathEscape(id)
}

func (s *Remote) ListNotes(ctx context.Context, v models.Viewer) ([]models.Note, error) {
	var out []models.Note
	err := s.c.Get(ctx, v.Token, "/api/notes", nil, &out)
	return out, err
}

func (s *Remote) GetNote(ctx context.Context, v models.Viewer, id string) (models.Note, error) {
	var out models.Note
	err := s.c.Get(ctx, v.Token, notePath(id), nil, &out)
	return out, err
}

func (s *Remote) CreateNote(ctx context.Context, v models.Viewer, in NoteInput) (models.Note, error) {
	var out models.Note
	err := s.c.Post(ctx, v.Token, "/api/notes", in, &out)
	return out, err
}

func (s *Remote) UpdateNote(ctx context.Context, v models.Viewer, id string, in NoteInput) (models.Note, error) {
	var out models.Note
	err := s.c.Put(ctx, v.Token, notePath(id), in, &out)
	return out, err
}

func (s *Remote) DeleteNote(ctx context.Context, v models.Viewer, id string) error {
	return s.c.Delete(ctx, v.Token, notePath(id))
}

func (s *Remote) GetAISuggestions(ctx context.Context, v models.Viewer, noteID string) ([]models.AISuggestion, error) {
	var out []models.AISuggestion
	err := s.c.Get(ctx, v.Token, notePath(noteID)+"/suggestions", nil, &out)
	return out, err
}

func (s *Remote) ApplyAISuggestion(ctx context.Context, v models.Viewer, noteID, suggestionID string) (models.Note, error) {
	var out models.Note
	err := s.c.Post(ctx, v.Token, notePath(noteID)+"/suggestions/"+backend.PathEscape(suggestionID)+"/apply", nil, &out)
	return out, err
}

func (s *Remote) ShareNote(ctx context.Context, v models.Viewer, noteID string, in ShareInput) (models.Note, error) {
	var out models.Note
	err := s.c.Post(ctx, v.Token, notePath(noteID)+"/share", in, &out)
	return out, err
}

func (s *Remote) RemoveCollaborator(ctx context.Context, v models.Viewer, noteID, userID string) (models.Note, error) {
	if err := s.c.Delete(ctx, v.Token, notePath(noteID)+"/collaborators/"+backend.PathEscape(userID)); err != nil {
		return models.Note{}, err
	}
	return s.GetNote(ctx, v, noteID)
}

func (s *Remote) Connect(ctx context.Context, v models.Viewer, noteID string) (live.Stream, error) {
	conn, err := s.c.Dial(ctx, v.Token, "/ws/notes/"+backend.PathEscape(noteID))
	if err != nil {
		return nil, err
	}
	return live.NewConnStream(conn, s.buffer, s.log), nil
}
