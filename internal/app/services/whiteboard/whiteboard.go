// Package whiteboard wraps shared whiteboard sessions and their live channel.
package whiteboard

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// SessionInput creates or renames a session.
type SessionInput struct {
	Title    string `json:"title"`
	CourseID string `json:"course_id,omitempty"`
}

// Service is the WhiteboardService wrapper.
type Service interface {
	GetSessions(ctx context.Context, v models.Viewer) ([]models.WhiteboardSession, error)
	// GetSession returns the session with its interactions for replay.
	GetSession(ctx context.Context, v models.Viewer, id string) (models.WhiteboardSession, error)
	CreateSession(ctx context.Context, v models.Viewer, in SessionInput) (models.WhiteboardSession, error)
	UpdateSession(ctx context.Context, v models.Viewer, id string, in SessionInput) (models.WhiteboardSession, error)
	CaptureWhiteboardScreenshot(ctx context.Context, v models.Viewer, id string, png []byte) error
	GetScreenshot(ctx context.Context, v models.Viewer, id string) ([]byte, error)
	// Connect subscribes to the session's drawing frames.
	Connect(ctx context.Context, v models.Viewer, id string) (live.Stream, error)
}
