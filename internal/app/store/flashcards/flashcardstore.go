// internal/app/store/flashcards/flashcardstore.go
package flashcardstore

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

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("flashcards")}
}

func (s *Store) Create(ctx context.Context, f models.Flashcard) (models.Flashcard, error) {
	now := time.Now().UTC()
	f.ID = uuid.NewString()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Flashcard{}, err
	}
	return f, nil
}

// List returns ownerID's cards, optionally limited to one deck, ordered by
// deck then creation.
func (s *Store) List(ctx context.Context, ownerID, deck string) ([]models.Flashcard, error) {
	filter := bson.M{"owner_id": ownerID}
	if deck != "" {
		filter["deck"] = deck
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "deck", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Flashcard
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decks returns the owner's distinct deck names.
func (s *Store) Decks(ctx context.Context, ownerID string) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "deck", bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if d, ok := v.(string); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id, ownerID string) (models.Flashcard, error) {
	var f models.Flashcard
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&f); err != nil {
		return models.Flashcard{}, err
	}
	return f, nil
}

// Update replaces deck, front and back of an owned card.
func (s *Store) Update(ctx context.Context, f models.Flashcard) (models.Flashcard, error) {
	var out models.Flashcard
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": f.ID, "owner_id": f.OwnerID},
		bson.M{"$set": bson.M{"deck": f.Deck, "front": f.Front, "back": f.Back, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return models.Flashcard{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID})
}

// IsNotFound reports whether err means the card does not exist for the owner.
func IsNotFound(err error) bool { return errors.Is(err, mongo.ErrNoDocuments) }
