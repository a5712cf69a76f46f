// internal/app/store/notes/notestore.go
package notestore

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

var (
	ErrForbidden  = errors.New("not allowed to change this note")
	ErrShareOwner = errors.New("a note cannot be shared with its owner")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notes")}
}

// visibleTo matches notes userID owns or collaborates on.
func visibleTo(userID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"collaborators.user_id": userID},
	}}
}

// editableBy matches notes userID owns or may edit.
func editableBy(userID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"collaborators": bson.M{"$elemMatch": bson.M{"user_id": userID, "permission": models.PermissionEdit}}},
	}}
}

func (s *Store) Create(ctx context.Context, n models.Note) (models.Note, error) {
	now := time.Now().UTC()
	n.ID = uuid.NewString()
	if n.Collaborators == nil {
		n.Collaborators = []models.NoteCollaborator{}
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Note, error) {
	var n models.Note
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// ListFor returns notes visible to userID, most recently updated first.
// A positive limit caps the result (the dashboard shows a handful).
func (s *Store) ListFor(ctx context.Context, userID string, limit int64) ([]models.Note, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"content": 0})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, visibleTo(userID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Note
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes title and content if userID may edit the note.
func (s *Store) Update(ctx context.Context, id, userID, title, content string) (models.Note, error) {
	set := bson.M{"content": content, "updated_at": time.Now().UTC()}
	if title != "" {
		set["title"] = title
	}
	return s.modify(ctx, id, editableBy(userID), bson.M{"$set": set})
}

// UpdateContent is the live-editor path: content only.
func (s *Store) UpdateContent(ctx context.Context, id, userID, content string) (models.Note, error) {
	return s.Update(ctx, id, userID, "", content)
}

// Share adds or replaces a collaborator. Only the owner may share.
func (s *Store) Share(ctx context.Context, id, ownerID string, collab models.NoteCollaborator) (models.Note, error) {
	if collab.UserID == ownerID {
		return models.Note{}, ErrShareOwner
	}
	// Two steps keep the collaborator list free of duplicates.
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$pull": bson.M{"collaborators": bson.M{"user_id": collab.UserID}}}); err != nil {
		return models.Note{}, err
	}
	return s.modify(ctx, id, bson.M{"owner_id": ownerID}, bson.M{
		"$push": bson.M{"collaborators": collab},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// Unshare removes a collaborator. Only the owner may unshare.
func (s *Store) Unshare(ctx context.Context, id, ownerID, userID string) (models.Note, error) {
	return s.modify(ctx, id, bson.M{"owner_id": ownerID}, bson.M{
		"$pull": bson.M{"collaborators": bson.M{"user_id": userID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// Delete removes a note owned by ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrForbidden
	}
	return nil
}

// modify applies update when the note matches guard. A note that exists but
// fails the guard yields ErrForbidden; a missing one yields ErrNoDocuments.
func (s *Store) modify(ctx context.Context, id string, guard bson.M, update bson.M) (models.Note, error) {
	filter := bson.M{"_id": id}
	for k, v := range guard {
		filter[k] = v
	}
	var n models.Note
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Note{}, err
	}
	if _, gerr := s.GetByID(ctx, id); gerr != nil {
		return models.Note{}, gerr
	}
	return models.Note{}, ErrForbidden
}
