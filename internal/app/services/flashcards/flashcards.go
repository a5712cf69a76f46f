// Package flashcards is the ChatService wrapper: the backend exposes
// flashcard decks through its chat/tutor service.
package flashcards

import (
	"context"

	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/samber/lo"
)

// CardInput creates or updates a card.
type CardInput struct {
	Deck  string `json:"deck"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Service is the ChatService wrapper.
type Service interface {
	ListFlashcards(ctx context.Context, v models.Viewer, deck string) ([]models.Flashcard, error)
	CreateFlashcard(ctx context.Context, v models.Viewer, in CardInput) (models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, v models.Viewer, id string, in CardInput) (models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, v models.Viewer, id string) error
}

// Decks returns the distinct deck names of cards in first-seen order.
func Decks(cards []models.Flashcard) []string {
	return lo.Uniq(lo.Map(cards, func(c models.Flashcard, _ int) string { return c.Deck }))
}
