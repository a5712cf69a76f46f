package messaging

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls the backend's /api/messages endpoints.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

const conversationsPath = "/api/messages/conversations"

func conversationPath(id string) string {
	return conversationsPath + "/" + backend.PathEscape(id)
}

func (s *Remote) ListConversations(ctx context.Context, v models.Viewer) ([]models.Conversation, error) {
	var out []models.Conversation
	err := s.c.Get(ctx, v.Token, conversationsPath, nil, &out)
	return out, err
}

func (s *Remote) GetConversation(ctx context.Context, v models.Viewer, id string) (models.Conversation, error) {
	var out models.Conversation
	err := s.c.Get(ctx, v.Token, conversationPath(id), nil, &out)
	return out, err
}

func (s *Remote) StartConversation(ctx context.Context, v models.Viewer, in StartInput) (models.Conversation, error) {
	var out models.Conversation
	err := s.c.Post(ctx, v.Token, conversationsPath, in, &out)
	return out, err
}

func (s *Remote) SendMessage(ctx context.Context, v models.Viewer, conversationID, body string) (models.Message, error) {
	var out models.Message
	err := s.c.Post(ctx, v.Token, conversationPath(conversationID)+"/messages", map[string]string{"body": body}, &out)
	return out, err
}

func (s *Remote) MarkRead(ctx context.Context, v models.Viewer, conversationID string) error {
	return s.c.Post(ctx, v.Token, conversationPath(conversationID)+"/read", nil, nil)
}
