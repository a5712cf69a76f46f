package whiteboard

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.uber.org/zap"
)

// Remote calls /api/whiteboard and dials /ws/whiteboard on the backend.
type Remote struct {
	c      *backend.Client
	buffer int
	log    *zap.Logger
}

func NewRemote(c *backend.Client, buffer int, logger *zap.Logger) *Remote {
	return &Remote{c: c, buffer: buffer, log: logger}
}

func sessionPath(id string) string {
	return "/api/whiteboard/sessions/" + backend.PathEscape(id)
}

func (s *Remote) GetSessions(ctx context.Context, v models.Viewer) ([]models.WhiteboardSession, error) {
	var out []models.WhiteboardSession
	err := s.c.Get(ctx, v.Token, "/api/whiteboard/sessions", nil, &out)
	return out, err
}

func (s *Remote) GetSession(ctx context.Context, v models.Viewer, id string) (models.WhiteboardSession, error) {
	var out models.WhiteboardSession
	err := s.c.Get(ctx, v.Token, sessionPath(id), nil, &out)
	return out, err
}

func (s *Remote) CreateSession(ctx context.Context, v models.Viewer, in SessionInput) (models.WhiteboardSession, error) {
	var out models.WhiteboardSession
	err := s.c.Post(ctx, v.Token, "/api/whiteboard/sessions", in, &out)
	return out, err
}

func (s *Remote) UpdateSession(ctx context.Context, v models.Viewer, id string, in SessionInput) (models.WhiteboardSession, error) {
	var out models.WhiteboardSession
	err := s.c.Put(ctx, v.Token, sessionPath(id), in, &out)
	return out, err
}

func (s *Remote) CaptureWhiteboardScreenshot(ctx context.Context, v models.Viewer, id string, png []byte) error {
	return s.c.PostBytes(ctx, v.Token, sessionPath(id)+"/screenshot", "image/png", png, nil)
}

func (s *Remote) GetScreenshot(ctx context.Context, v models.Viewer, id string) ([]byte, error) {
	body, _, err := s.c.GetBytes(ctx, v.Token, sessionPath(id)+"/screenshot")
	return body, err
}

func (s *Remote) Connect(ctx context.Context, v models.Viewer, id string) (live.Stream, error) {
	conn, err := s.c.Dial(ctx, v.Token, "/ws/whiteboard/"+backend.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return live.NewConnStream(conn, s.buffer, s.log), nil
}
