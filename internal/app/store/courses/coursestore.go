// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateCode = errors.New("a course with this code already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// Create inserts a course. Codes are stored upper-cased and must be unique.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.TitleCI = text.Fold(c.Title)
	if c.StudentIDs == nil {
		c.StudentIDs = []string{}
	}
	c.StudentCount = len(c.StudentIDs)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateCode
		}
		return models.Course{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// ListAll returns every course by title.
func (s *Store) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{})
}

// ListByTeacher returns a teacher's courses by title.
func (s *Store) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	return s.find(ctx, bson.M{"teacher_id": teacherID})
}

// ListByStudent returns the courses a student is enrolled in.
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	return s.find(ctx, bson.M{"student_ids": studentID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes title and description.
func (s *Store) Update(ctx context.Context, id, title, description string) (models.Course, error) {
	var c models.Course
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       title,
			"title_ci":    text.Fold(title),
			"description": description,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// Enroll adds a student to the course.
func (s *Store) Enroll(ctx context.Context, id, studentID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "student_ids": bson.M{"$ne": studentID}},
		bson.M{
			"$push": bson.M{"student_ids": studentID},
			"$inc":  bson.M{"student_count": 1},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Already enrolled, or no such course.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
