// internal/app/store/forumposts/forumpoststore.go
package forumpoststore

import (
	"context"
	"time"

	"github.com/dalemusser/edusphere/internal/app/system/paging"
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
	return &Store{c: db.Collection("forum_posts")}
}

// Create stamps the ID and creation time and inserts p.
func (s *Store) Create(ctx context.Context, p models.ForumPost) (models.ForumPost, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.ForumPost{}, err
	}
	return p, nil
}

// List returns newest-first posts. An empty groupID lists posts across all
// groups. One extra row is fetched so callers can detect a next page.
func (s *Store) List(ctx context.Context, groupID string, pg paging.Page) ([]models.ForumPost, error) {
	filter := bson.M{}
	if groupID != "" {
		filter["group_id"] = groupID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	pg.ApplyToFind(opts)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ForumPost
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.ForumPost, error) {
	var p models.ForumPost
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.ForumPost{}, err
	}
	return p, nil
}

// Delete removes a post. Only the author may delete it.
func (s *Store) Delete(ctx context.Context, id, authorID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "author_id": authorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
