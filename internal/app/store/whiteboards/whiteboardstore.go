// internal/app/store/whiteboards/whiteboardstore.go
package whiteboardstore

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

// ErrForbidden is returned when a user acts on a session they do not own.
var ErrForbidden = errors.New("not allowed to change this whiteboard")

// Store keeps whiteboard sessions and their drawing interactions.
type Store struct {
	sessions     *mongo.Collection
	interactions *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		sessions:     db.Collection("whiteboard_sessions"),
		interactions: db.Collection("whiteboard_interactions"),
	}
}

func (s *Store) Create(ctx context.Context, w models.WhiteboardSession) (models.WhiteboardSession, error) {
	now := time.Now().UTC()
	w.ID = uuid.NewString()
	w.ParticipantIDs = []string{w.OwnerID}
	w.CreatedAt = now
	w.UpdatedAt = now
	if _, err := s.sessions.InsertOne(ctx, w); err != nil {
		return models.WhiteboardSession{}, err
	}
	return w, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.WhiteboardSession, error) {
	var w models.WhiteboardSession
	if err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return models.WhiteboardSession{}, err
	}
	return w, nil
}

// ListFor returns sessions userID owns or has joined, most recent first.
func (s *Store) ListFor(ctx context.Context, userID string, limit int64) ([]models.WhiteboardSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.sessions.Find(ctx, bson.M{"participant_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.WhiteboardSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename changes the title. Only the owner may rename.
func (s *Store) Rename(ctx context.Context, id, ownerID, title string) (models.WhiteboardSession, error) {
	var w models.WhiteboardSession
	err := s.sessions.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"title": title, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.WhiteboardSession{}, gerr
		}
		return models.WhiteboardSession{}, ErrForbidden
	}
	return w, err
}

// Join records userID as a participant.
func (s *Store) Join(ctx context.Context, id, userID string) error {
	res, err := s.sessions.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"participant_ids": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkScreenshot flags that a screenshot exists for the session.
func (s *Store) MarkScreenshot(ctx context.Context, id string) error {
	_, err := s.sessions.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"has_screenshot": true, "updated_at": time.Now().UTC()}})
	return err
}

// AppendInteraction stores one drawing operation. A clear removes every
// earlier interaction, so a replay starts from the clear.
func (s *Store) AppendInteraction(ctx context.Context, in models.Interaction) (models.Interaction, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.At.IsZero() {
		in.At = time.Now().UTC()
	}
	if in.Kind == models.InteractionClear {
		if _, err := s.interactions.DeleteMany(ctx, bson.M{
			"session_id": in.SessionID,
			"at":         bson.M{"$lte": in.At},
		}); err != nil {
			return models.Interaction{}, err
		}
	}
	if _, err := s.interactions.InsertOne(ctx, in); err != nil {
		return models.Interaction{}, err
	}
	_, err := s.sessions.UpdateOne(ctx, bson.M{"_id": in.SessionID},
		bson.M{"$set": bson.M{"updated_at": in.At}})
	return in, err
}

// Interactions returns a session's drawing operations in order.
func (s *Store) Interactions(ctx context.Context, sessionID string) ([]models.Interaction, error) {
	cur, err := s.interactions.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Interaction
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
