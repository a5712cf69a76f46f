package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the returned request adds to the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser inserts an active user.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:         uuid.NewString(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       role,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateStudent inserts a student with points.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string, points int64) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, fullName, email, models.RoleStudent)
	if points != 0 {
		_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, map[string]any{"$set": map[string]any{"points": points}})
		if err != nil {
			f.t.Fatalf("set points: %v", err)
		}
		u.Points = points
	}
	return u
}

// CreateParent inserts a parent following childIDs.
func (f *Fixtures) CreateParent(ctx context.Context, fullName, email string, childIDs ...string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:         uuid.NewString(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       models.RoleParent,
		Status:     models.StatusActive,
		ChildIDs:   childIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateStudyGroup inserts a group owned by owner, who is its first member.
func (f *Fixtures) CreateStudyGroup(ctx context.Context, name, subject string, owner models.User, maxMembers int) models.StudyGroup {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.StudyGroup{
		ID:          uuid.NewString(),
		Name:        name,
		NameCI:      text.Fold(name),
		Subject:     subject,
		OwnerID:     owner.ID,
		OwnerName:   owner.FullName,
		MemberIDs:   []string{owner.ID},
		MemberCount: 1,
		MaxMembers:  maxMembers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "study_groups", g)
	return g
}

// CreateCourse inserts a course taught by teacher with students enrolled.
func (f *Fixtures) CreateCourse(ctx context.Context, code, title string, teacher models.User, students ...models.User) models.Course {
	f.t.Helper()
	now := time.Now().UTC()
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	c := models.Course{
		ID:           uuid.NewString(),
		Code:         code,
		Title:        title,
		TitleCI:      text.Fold(title),
		TeacherID:    teacher.ID,
		TeacherName:  teacher.FullName,
		StudentIDs:   ids,
		StudentCount: len(ids),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateNote inserts a note owned by owner.
func (f *Fixtures) CreateNote(ctx context.Context, title, content string, owner models.User) models.Note {
	f.t.Helper()
	now := time.Now().UTC()
	n := models.Note{
		ID:            uuid.NewString(),
		Title:         title,
		Content:       content,
		OwnerID:       owner.ID,
		OwnerName:     owner.FullName,
		Collaborators: []models.NoteCollaborator{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "notes", n)
	return n
}
