package flashcards

import (
	"context"
	"strings"

	flashcardstore "github.com/dalemusser/edusphere/internal/app/store/flashcards"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultDeck holds cards created without a deck name.
const DefaultDeck = "general"

// Local keeps each viewer's cards in MongoDB.
type Local struct {
	store *flashcardstore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{store: flashcardstore.New(db)}
}

func clean(in CardInput) (CardInput, error) {
	in.Deck = strings.TrimSpace(in.Deck)
	in.Front = strings.TrimSpace(in.Front)
	in.Back = strings.TrimSpace(in.Back)
	if in.Deck == "" {
		in.Deck = DefaultDeck
	}
	if in.Front == "" || in.Back == "" {
		return in, apperr.EK(apperr.KindInvalidInput, "flashcards.error.sides_required", "front and back are required")
	}
	return in, nil
}

func notFound(err error) error {
	if flashcardstore.IsNotFound(err) {
		return apperr.Wrap(apperr.KindNotFound, err, "flashcard not found")
	}
	return err
}

func (s *Local) ListFlashcards(ctx context.Context, v models.Viewer, deck string) ([]models.Flashcard, error) {
	return s.store.List(ctx, v.ID, deck)
}

func (s *Local) CreateFlashcard(ctx context.Context, v models.Viewer, in CardInput) (models.Flashcard, error) {
	in, err := clean(in)
	if err != nil {
		return models.Flashcard{}, err
	}
	return s.store.Create(ctx, models.Flashcard{OwnerID: v.ID, Deck: in.Deck, Front: in.Front, Back: in.Back})
}

func (s *Local) UpdateFlashcard(ctx context.Context, v models.Viewer, id string, in CardInput) (models.Flashcard, error) {
	in, err := clean(in)
	if err != nil {
		return models.Flashcard{}, err
	}
	f, err := s.store.Update(ctx, models.Flashcard{ID: id, OwnerID: v.ID, Deck: in.Deck, Front: in.Front, Back: in.Back})
	return f, notFound(err)
}

func (s *Local) DeleteFlashcard(ctx context.Context, v models.Viewer, id string) error {
	return notFound(s.store.Delete(ctx, id, v.ID))
}
