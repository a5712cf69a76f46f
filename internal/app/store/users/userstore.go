// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when another account already uses the email.
var ErrDuplicateEmail = errors.New("an account with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks an account up case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts u with a new ID. PasswordHash must already be set for
// password accounts.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.FullNameCI = text.Fold(u.FullName)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateLocale stores the user's UI language.
func (s *Store) UpdateLocale(ctx context.Context, id, locale string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"locale":     locale,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddPoints adjusts a user's leaderboard points.
func (s *Store) AddPoints(ctx context.Context, id string, delta int64) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"points": delta}})
	return err
}

// ListByIDs returns the users with the given IDs, sorted by name.
func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopByPoints returns active students ordered by points, for the leaderboard.
func (s *Store) TopByPoints(ctx context.Context, skip, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, bson.M{"role": models.RoleStudent, "status": models.StatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RankOf is 1 + the number of active students with more points.
func (s *Store) RankOf(ctx context.Context, points int64) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"role":   models.RoleStudent,
		"status": models.StatusActive,
		"points": bson.M{"$gt": points},
	})
	if err != nil {
		return 0, err
	}
	return int(n) + 1, nil
}

// CountByRole returns the number of accounts per role.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64, len(models.AllRoles))
	for _, r := range models.AllRoles {
		out[r] = 0
	}
	for cur.Next(ctx) {
		var row struct {
			Role string `bson:"_id"`
			N    int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Role] = row.N
	}
	return out, cur.Err()
}

// EnsureAdmin creates an admin with email when no account uses it yet.
// It reports whether an account was created.
func (s *Store) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}
	_, err = s.Create(ctx, models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	return err == nil, err
}
