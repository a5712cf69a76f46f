// internal/app/store/conversations/conversationstore.go
package conversationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotParticipant is returned when a user acts on a conversation they are not in.
var ErrNotParticipant = errors.New("not a participant in this conversation")

// Store keeps conversations and their messages in two collections.
type Store struct {
	convs *mongo.Collection
	msgs  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		convs: db.Collection("conversations"),
		msgs:  db.Collection("messages"),
	}
}

// Start creates a conversation between participants.
func (s *Store) Start(ctx context.Context, participants []models.Participant) (models.Conversation, error) {
	now := time.Now().UTC()
	c := models.Conversation{
		ID:             uuid.NewString(),
		Participants:   participants,
		ParticipantIDs: make([]string, 0, len(participants)),
		LastAt:         now,
		ReadAt:         map[string]time.Time{},
	}
	for _, p := range participants {
		c.ParticipantIDs = append(c.ParticipantIDs, p.UserID)
	}
	if _, err := s.convs.InsertOne(ctx, c); err != nil {
		return models.Conversation{}, err
	}
	return c, nil
}

// ListFor returns userID's conversations, most recent first, with Unread set
// to the number of messages from others since the user last read the thread.
func (s *Store) ListFor(ctx context.Context, userID string, limit int64) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.convs.Find(ctx, bson.M{"participant_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		n, err := s.unread(ctx, out[i], userID)
		if err != nil {
			return nil, err
		}
		out[i].Unread = n
	}
	return out, nil
}

func (s *Store) unread(ctx context.Context, c models.Conversation, userID string) (int, error) {
	filter := bson.M{"conversation_id": c.ID, "sender_id": bson.M{"$ne": userID}}
	if at, ok := c.ReadAt[userID]; ok {
		filter["sent_at"] = bson.M{"$gt": at}
	}
	n, err := s.msgs.CountDocuments(ctx, filter)
	return int(n), err
}

// Get returns the conversation with its messages in send order. The caller
// must be a participant.
func (s *Store) Get(ctx context.Context, id, userID string) (models.Conversation, error) {
	var c models.Conversation
	if err := s.convs.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Conversation{}, err
	}
	if !contains(c.ParticipantIDs, userID) {
		return models.Conversation{}, ErrNotParticipant
	}
	cur, err := s.msgs.Find(ctx, bson.M{"conversation_id": id},
		options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return models.Conversation{}, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &c.Messages); err != nil {
		return models.Conversation{}, err
	}
	return c, nil
}

// Send appends a message and bumps the conversation's preview.
func (s *Store) Send(ctx context.Context, convID string, sender models.Participant, body string) (models.Message, error) {
	now := time.Now().UTC()
	res, err := s.convs.UpdateOne(ctx,
		bson.M{"_id": convID, "participant_ids": sender.UserID},
		bson.M{"$set": bson.M{
			"last_message":             body,
			"last_at":                  now,
			"read_at." + sender.UserID: now,
		}})
	if err != nil {
		return models.Message{}, err
	}
	if res.MatchedCount == 0 {
		return models.Message{}, ErrNotParticipant
	}
	m := models.Message{
		ID:             uuid.NewString(),
		ConversationID: convID,
		SenderID:       sender.UserID,
		SenderName:     sender.Name,
		Body:           body,
		SentAt:         now,
	}
	if _, err := s.msgs.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// MarkRead records that userID has seen everything up to now.
func (s *Store) MarkRead(ctx context.Context, convID, userID string) error {
	_, err := s.convs.UpdateOne(ctx,
		bson.M{"_id": convID, "participant_ids": userID},
		bson.M{"$set": bson.M{"read_at." + userID: time.Now().UTC()}})
	return err
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
