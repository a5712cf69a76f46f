// Package messaging wraps the inbox: conversations and their messages.
package messaging

import (
	"context"

	"github.com/dalemusser/edusphere/internal/domain/models"
)

// StartInput opens a conversation with one recipient.
type StartInput struct {
	RecipientEmail string `json:"recipient_email"`
	Body           string `json:"body"`
}

// Service is the MessagingService wrapper.
type Service interface {
	ListConversations(ctx context.Context, v models.Viewer) ([]models.Conversation, error)
	GetConversation(ctx context.Context, v models.Viewer, id string) (models.Conversation, error)
	StartConversation(ctx context.Context, v models.Viewer, in StartInput) (models.Conversation, error)
	SendMessage(ctx context.Context, v models.Viewer, conversationID, body string) (models.Message, error)
	MarkRead(ctx context.Context, v models.Viewer, conversationID string) error
}

// UnreadTotal sums unread counts, for the nav badge.
func UnreadTotal(convs []models.Conversation) int {
	n := 0
	for _, c := range convs {
		n += c.Unread
	}
	return n
}
