package flashcards

import (
	"context"
	"net/url"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls the backend's /api/flashcards endpoints.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

func (s *Remote) ListFlashcards(ctx context.Context, v models.Viewer, deck string) ([]models.Flashcard, error) {
	q := url.Values{}
	if deck != "" {
		q.Set("deck", deck)
	}
	var out []models.Flashcard
	err := s.c.Get(ctx, v.Token, "/api/flashcards", q, &out)
	return out, err
}

func (s *Remote) CreateFlashcard(ctx context.Context, v models.Viewer, in CardInput) (models.Flashcard, error) {
	var out models.Flashcard
	err := s.c.Post(ctx, v.Token, "/api/flashcards", in, &out)
	return out, err
}

func (s *Remote) UpdateFlashcard(ctx context.Context, v models.Viewer, id string, in CardInput) (models.Flashcard, error) {
	var out models.Flashcard
	err := s.c.Put(ctx, v.Token, "/api/flashcards/"+backend.PathEscape(id), in, &out)
	return out, err
}

func (s *Remote) DeleteFlashcard(ctx context.Context, v models.Viewer, id string) error {
	return s.c.Delete(ctx, v.Token, "/api/flashcards/"+backend.PathEscape(id))
}
