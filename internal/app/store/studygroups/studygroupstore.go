// internal/app/store/studygroups/studygroupstore.go
package studygroupstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateName = errors.New("a study group with this name already exists")
	ErrAlreadyMember = errors.New("already a member of this study group")
	ErrGroupFull     = errors.New("this study group is full")
	ErrNotMember     = errors.New("not a member of this study group")
	ErrOwnerLeave    = errors.New("the owner cannot leave their study group")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("study_groups")}
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Query    string // case-insensitive substring of the name
	Subject  string
	MemberID string // only groups this user belongs to
	Limit    int64
}

func (f Filter) bson() bson.M {
	q := bson.M{}
	if f.Query != "" {
		q["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Query))}
	}
	if f.Subject != "" {
		q["subject"] = f.Subject
	}
	if f.MemberID != "" {
		q["member_ids"] = f.MemberID
	}
	return q
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.StudyGroup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.StudyGroup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.StudyGroup, error) {
	var g models.StudyGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.StudyGroup{}, err
	}
	return g, nil
}

// Create inserts g with its owner as the only member.
func (s *Store) Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error) {
	now := time.Now().UTC()
	g.ID = uuid.NewString()
	g.NameCI = text.Fold(g.Name)
	g.MemberIDs = []string{g.OwnerID}
	g.MemberCount = 1
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.StudyGroup{}, ErrDuplicateName
		}
		return models.StudyGroup{}, err
	}
	g.IsMember = true
	return g, nil
}

// Join adds userID to the group in one conditional update, so concurrent
// joins cannot overfill it.
func (s *Store) Join(ctx context.Context, id, userID string) (models.StudyGroup, error) {
	filter := bson.M{
		"_id":        id,
		"member_ids": bson.M{"$ne": userID},
		"$expr": bson.M{"$or": bson.A{
			bson.M{"$lte": bson.A{bson.M{"$ifNull": bson.A{"$max_members", 0}}, 0}},
			bson.M{"$lt": bson.A{"$member_count", "$max_members"}},
		}},
	}
	update := bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$inc":      bson.M{"member_count": 1},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	var g models.StudyGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	if err == nil {
		g.IsMember = true
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.StudyGroup{}, err
	}
	// Work out why the update matched nothing.
	cur, gerr := s.GetByID(ctx, id)
	if gerr != nil {
		return models.StudyGroup{}, gerr
	}
	for _, m := range cur.MemberIDs {
		if m == userID {
			return models.StudyGroup{}, ErrAlreadyMember
		}
	}
	return models.StudyGroup{}, ErrGroupFull
}

// Leave removes userID. Owners cannot leave.
func (s *Store) Leave(ctx context.Context, id, userID string) (models.StudyGroup, error) {
	filter := bson.M{"_id": id, "member_ids": userID, "owner_id": bson.M{"$ne": userID}}
	update := bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$inc":  bson.M{"member_count": -1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	var g models.StudyGroup
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.StudyGroup{}, err
	}
	cur, gerr := s.GetByID(ctx, id)
	if gerr != nil {
		return models.StudyGroup{}, gerr
	}
	if cur.OwnerID == userID {
		return models.StudyGroup{}, ErrOwnerLeave
	}
	return models.StudyGroup{}, ErrNotMember
}

// CountByMember returns how many groups userID belongs to.
func (s *Store) CountByMember(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"member_ids": userID})
}

// Count returns the number of groups.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
