package whiteboard

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/edusphere/internal/app/live"
	whiteboardstore "github.com/dalemusser/edusphere/internal/app/store/whiteboards"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Local keeps sessions in MongoDB and fans frames out through an
// in-process hub. Drawing frames are persisted as interactions.
type Local struct {
	store *whiteboardstore.Store
	shots *whiteboardstore.Screenshots
	hub   *live.Hub
	log   *zap.Logger
}

func NewLocal(db *mongo.Database, hub *live.Hub, logger *zap.Logger) (*Local, error) {
	shots, err := whiteboardstore.NewScreenshots(db)
	if err != nil {
		return nil, err
	}
	return &Local{store: whiteboardstore.New(db), shots: shots, hub: hub, log: logger}, nil
}

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, whiteboardstore.ErrForbidden):
		return apperr.Wrap(apperr.KindForbidden, err, err.Error())
	case errors.Is(err, whiteboardstore.ErrNoScreenshot):
		return apperr.EK(apperr.KindNotFound, "whiteboard.error.no_screenshot", err.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, "whiteboard not found")
	}
	return err
}

func (s *Local) GetSessions(ctx context.Context, v models.Viewer) ([]models.WhiteboardSession, error) {
	return s.store.ListFor(ctx, v.ID, 0)
}

func (s *Local) GetSession(ctx context.Context, v models.Viewer, id string) (models.WhiteboardSession, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.WhiteboardSession{}, localErr(err)
	}
	if w.Interactions, err = s.store.Interactions(ctx, id); err != nil {
		return models.WhiteboardSession{}, err
	}
	return w, nil
}

func (s *Local) CreateSession(ctx context.Context, v models.Viewer, in SessionInput) (models.WhiteboardSession, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.WhiteboardSession{}, apperr.EK(apperr.KindInvalidInput, "whiteboard.error.title_required", "title is required")
	}
	return s.store.Create(ctx, models.WhiteboardSession{
		Title:     strings.TrimSpace(in.Title),
		CourseID:  in.CourseID,
		OwnerID:   v.ID,
		OwnerName: v.Name,
	})
}

func (s *Local) UpdateSession(ctx context.Context, v models.Viewer, id string, in SessionInput) (models.WhiteboardSession, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.WhiteboardSession{}, apperr.EK(apperr.KindInvalidInput, "whiteboard.error.title_required", "title is required")
	}
	w, err := s.store.Rename(ctx, id, v.ID, strings.TrimSpace(in.Title))
	return w, localErr(err)
}

func (s *Local) CaptureWhiteboardScreenshot(ctx context.Context, v models.Viewer, id string, png []byte) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return localErr(err)
	}
	if err := s.shots.Save(ctx, id, png); err != nil {
		return err
	}
	return s.store.MarkScreenshot(ctx, id)
}

func (s *Local) GetScreenshot(ctx context.Context, v models.Viewer, id string) ([]byte, error) {
	png, err := s.shots.Load(ctx, id)
	return png, localErr(err)
}

// Connect joins the session's room. Every drawing frame the viewer sends is
// stored before it is fanned out.
func (s *Local) Connect(ctx context.Context, v models.Viewer, id string) (live.Stream, error) {
	if err := s.store.Join(ctx, id, v.ID); err != nil {
		return nil, localErr(err)
	}
	peer := s.hub.Join(id, v.ID)
	return live.Intercept(peer, func(ctx context.Context, f live.Frame) (live.Frame, bool, error) {
		kind := live.InteractionKind(f.Type)
		if !models.ValidInteractionKind(kind) {
			return f, true, nil
		}
		pctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()
		_, err := s.store.AppendInteraction(pctx, models.Interaction{
			ID:        f.ID,
			SessionID: id,
			UserID:    v.ID,
			Kind:      kind,
			Data:      f.Payload,
			At:        f.At,
		})
		if err != nil {
			s.log.Warn("whiteboard interaction not saved",
				zap.String("session_id", id),
				zap.String("kind", kind),
				zap.Error(err))
			return f, false, apperr.Wrap(apperr.KindUnavailable, err, "interaction not saved")
		}
		return f, true, nil
	}), nil
}
