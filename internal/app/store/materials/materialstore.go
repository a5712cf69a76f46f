// internal/app/store/materials/materialstore.go
package materialstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidType   = errors.New("unknown material type")
	ErrInvalidURL    = errors.New("url must be an absolute http(s) URL")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("materials")}
}

func validate(m models.Material) error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrTitleRequired
	}
	valid := false
	for _, t := range models.MaterialTypes {
		if m.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidType
	}
	// Assignments may be text only; every other type points somewhere.
	if m.URL == "" && m.Type == models.MaterialAssignment {
		return nil
	}
	if !urlutil.IsValidAbsHTTPURL(m.URL) {
		return ErrInvalidURL
	}
	return nil
}

// Create validates and inserts a material for m.CourseID.
func (s *Store) Create(ctx context.Context, m models.Material) (models.Material, error) {
	if err := validate(m); err != nil {
		return models.Material{}, err
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Material{}, err
	}
	return m, nil
}

// ListByCourse returns a course's materials in the order they were added.
func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Material{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a material from its course.
func (s *Store) Delete(ctx context.Context, courseID, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "course_id": courseID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
