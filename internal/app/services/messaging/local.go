package messaging

import (
	"context"
	"errors"
	"strings"

	conversationstore "github.com/dalemusser/edusphere/internal/app/store/conversations"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Local keeps conversations in MongoDB.
type Local struct {
	convs *conversationstore.Store
	users *userstore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{convs: conversationstore.New(db), users: userstore.New(db)}
}

var errBodyRequired = apperr.EK(apperr.KindInvalidInput, "inbox.error.body_required", "message body is required")

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, conversationstore.ErrNotParticipant):
		return apperr.Wrap(apperr.KindForbidden, err, err.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, "conversation not found")
	}
	return err
}

func (s *Local) ListConversations(ctx context.Context, v models.Viewer) ([]models.Conversation, error) {
	return s.convs.ListFor(ctx, v.ID, 0)
}

func (s *Local) GetConversation(ctx context.Context, v models.Viewer, id string) (models.Conversation, error) {
	c, err := s.convs.Get(ctx, id, v.ID)
	return c, localErr(err)
}

func (s *Local) StartConversation(ctx context.Context, v models.Viewer, in StartInput) (models.Conversation, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return models.Conversation{}, errBodyRequired
	}
	to, err := s.users.GetByEmail(ctx, normalize.Email(in.RecipientEmail))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Conversation{}, apperr.EK(apperr.KindNotFound, "inbox.error.unknown_recipient", "no account with that email")
	}
	if err != nil {
		return models.Conversation{}, err
	}
	if to.ID == v.ID {
		return models.Conversation{}, apperr.EK(apperr.KindInvalidInput, "inbox.error.self", "cannot message yourself")
	}

	me := models.Participant{UserID: v.ID, Name: v.Name}
	c, err := s.convs.Start(ctx, []models.Participant{me, {UserID: to.ID, Name: to.FullName}})
	if err != nil {
		return models.Conversation{}, err
	}
	m, err := s.convs.Send(ctx, c.ID, me, body)
	if err != nil {
		return models.Conversation{}, localErr(err)
	}
	c.LastMessage = m.Body
	c.LastAt = m.SentAt
	c.Messages = []models.Message{m}
	return c, nil
}

func (s *Local) SendMessage(ctx context.Context, v models.Viewer, conversationID, body string) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, errBodyRequired
	}
	m, err := s.convs.Send(ctx, conversationID, models.Participant{UserID: v.ID, Name: v.Name}, body)
	return m, localErr(err)
}

func (s *Local) MarkRead(ctx context.Context, v models.Viewer, conversationID string) error {
	return localErr(s.convs.MarkRead(ctx, conversationID, v.ID))
}
