package notes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/edusphere/internal/app/live"
	notestore "github.com/dalemusser/edusphere/internal/app/store/notes"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Local keeps notes in MongoDB and relays live edits through an in-process
// hub. There is no suggestion engine in this mode.
type Local struct {
	notes *notestore.Store
	users *userstore.Store
	hub   *live.Hub
	log   *zap.Logger
}

func NewLocal(db *mongo.Database, hub *live.Hub, logger *zap.Logger) *Local {
	return &Local{notes: notestore.New(db), users: userstore.New(db), hub: hub, log: logger}
}

var errNoSuggestions = apperr.EK(apperr.KindUnavailable, "notes.error.ai_unavailable",
	"AI suggestions are not available without the remote backend")

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notestore.ErrForbidden):
		return apperr.Wrap(apperr.KindForbidden, err, err.Error())
	case errors.Is(err, notestore.ErrShareOwner):
		return apperr.EK(apperr.KindInvalidInput, "notes.error.share_self", err.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, "note not found")
	}
	return err
}

func (s *Local) ListNotes(ctx context.Context, v models.Viewer) ([]models.Note, error) {
	return s.notes.ListFor(ctx, v.ID, 0)
}

func (s *Local) GetNote(ctx context.Context, v models.Viewer, id string) (models.Note, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return models.Note{}, localErr(err)
	}
	if !n.CanView(v.ID) {
		return models.Note{}, apperr.E(apperr.KindForbidden, "not shared with you")
	}
	return n, nil
}

func (s *Local) CreateNote(ctx context.Context, v models.Viewer, in NoteInput) (models.Note, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Note{}, apperr.EK(apperr.KindInvalidInput, "notes.error.title_required", "title is required")
	}
	return s.notes.Create(ctx, models.Note{
		Title:     strings.TrimSpace(in.Title),
		Content:   htmlsanitize.Sanitize(in.Content),
		Tags:      in.Tags,
		OwnerID:   v.ID,
		OwnerName: v.Name,
	})
}

func (s *Local) UpdateNote(ctx context.Context, v models.Viewer, id string, in NoteInput) (models.Note, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Note{}, apperr.EK(apperr.KindInvalidInput, "notes.error.title_required", "title is required")
	}
	n, err := s.notes.Update(ctx, id, v.ID, strings.TrimSpace(in.Title), htmlsanitize.Sanitize(in.Content))
	if err != nil {
		return models.Note{}, localErr(err)
	}
	s.announce(n, v.ID)
	return n, nil
}

// announce tells open editors that the note changed outside the live channel.
func (s *Local) announce(n models.Note, userID string) {
	f, err := live.NewFrame(live.TypeNoteUpdated, n.ID, userID, live.TextPayload{Content: n.Content})
	if err == nil {
		s.hub.Broadcast(n.ID, f)
	}
}

func (s *Local) DeleteNote(ctx context.Context, v models.Viewer, id string) error {
	return localErr(s.notes.Delete(ctx, id, v.ID))
}

func (s *Local) GetAISuggestions(ctx context.Context, v models.Viewer, noteID string) ([]models.AISuggestion, error) {
	return nil, errNoSuggestions
}

func (s *Local) ApplyAISuggestion(ctx context.Context, v models.Viewer, noteID, suggestionID string) (models.Note, error) {
	return models.Note{}, errNoSuggestions
}

func (s *Local) ShareNote(ctx context.Context, v models.Viewer, noteID string, in ShareInput) (models.Note, error) {
	if in.Permission != models.PermissionView && in.Permission != models.PermissionEdit {
		return models.Note{}, apperr.EK(apperr.KindInvalidInput, "notes.error.permission", "permission must be view or edit")
	}
	u, err := s.users.GetByEmail(ctx, normalize.Email(in.Email))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Note{}, apperr.EK(apperr.KindNotFound, "notes.error.unknown_email", "no account with that email")
	}
	if err != nil {
		return models.Note{}, err
	}
	n, err := s.notes.Share(ctx, noteID, v.ID, models.NoteCollaborator{
		UserID:     u.ID,
		Name:       u.FullName,
		Email:      u.Email,
		Permission: in.Permission,
	})
	return n, localErr(err)
}

func (s *Local) RemoveCollaborator(ctx context.Context, v models.Viewer, noteID, userID string) (models.Note, error) {
	n, err := s.notes.Unshare(ctx, noteID, v.ID, userID)
	return n, localErr(err)
}

// Connect joins the note's room. Debounced text from the viewer is saved
// and reaches the other editors as note.updated.
func (s *Local) Connect(ctx context.Context, v models.Viewer, noteID string) (live.Stream, error) {
	if _, err := s.GetNote(ctx, v, noteID); err != nil {
		return nil, err
	}
	peer := s.hub.Join(noteID, v.ID)
	return live.Intercept(peer, func(ctx context.Context, f live.Frame) (live.Frame, bool, error) {
		if f.Type != live.TypeNoteText {
			return f, true, nil
		}
		var p live.TextPayload
		if err := f.Decode(&p); err != nil {
			return f, false, apperr.Wrap(apperr.KindInvalidInput, err, "bad note text")
		}
		pctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()
		n, err := s.notes.UpdateContent(pctx, noteID, v.ID, htmlsanitize.Sanitize(p.Content))
		if err != nil {
			s.log.Warn("live note text not saved",
				zap.String("note_id", noteID),
				zap.String("user_id", v.ID),
				zap.Error(err))
			return f, false, localErr(err)
		}
		out, err := live.NewFrame(live.TypeNoteUpdated, noteID, v.ID, live.TextPayload{Content: n.Content})
		if err != nil {
			return f, false, err
		}
		return out, true, nil
	}), nil
}
