// internal/domain/models/messaging.go
package models

import "time"

// Participant is a member of a conversation.
type Participant struct {
	UserID string `bson:"user_id" json:"user_id"`
	Name   string `bson:"name" json:"name"`
}

// Conversation is an inbox thread. Unread is relative to the viewer.
type Conversation struct {
	ID             string        `bson:"_id" json:"id"`
	Participants   []Participant `bson:"participants" json:"participants"`
	ParticipantIDs []string      `bson:"participant_ids" json:"-"`
	LastMessage    string        `bson:"last_message" json:"last_message"`
	LastAt         time.Time     `bson:"last_at" json:"last_at"`
	// ReadAt maps a participant ID to the last time they opened the thread.
	ReadAt map[string]time.Time `bson:"read_at,omitempty" json:"-"`

	Unread   int       `bson:"-" json:"unread"`
	Messages []Message `bson:"-" json:"messages,omitempty"`
}

// Others returns the participants other than userID.
func (c Conversation) Others(userID string) []Participant {
	out := make([]Participant, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}

// Message is a single message in a conversation.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	SenderName     string    `bson:"sender_name" json:"sender_name"`
	Body           string    `bson:"body" json:"body"`
	SentAt         time.Time `bson:"sent_at" json:"sent_at"`
}
