package materialstore_test

import (
	"errors"
	"testing"

	materialstore "github.com/dalemusser/edusphere/internal/app/store/materials"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateValidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := materialstore.New(db)

	tests := []struct {
		name string
		in   models.Material
		want error
	}{
		{"ok link", models.Material{CourseID: "c1", Title: "Syllabus", Type: models.MaterialLink, URL: "https://example.com/s"}, nil},
		{"assignment without url", models.Material{CourseID: "c1", Title: "Essay", Type: models.MaterialAssignment}, nil},
		{"blank title", models.Material{CourseID: "c1", Title: "  ", Type: models.MaterialLink, URL: "https://example.com"}, materialstore.ErrTitleRequired},
		{"bad type", models.Material{CourseID: "c1", Title: "x", Type: "podcast", URL: "https://example.com"}, materialstore.ErrInvalidType},
		{"relative url", models.Material{CourseID: "c1", Title: "x", Type: models.MaterialVideo, URL: "/videos/1"}, materialstore.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	list, err := store.ListByCourse(ctx, "c1")
	if err != nil || len(list) != 2 {
		t.Errorf("ListByCourse: %d %v", len(list), err)
	}
}

func TestStore_DeleteScopedToCourse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := materialstore.New(db)

	m, err := store.Create(ctx, models.Material{CourseID: "c1", Title: "Notes", Type: models.MaterialDocument, URL: "https://example.com/n.pdf"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, "c2", m.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("delete from other course: %v", err)
	}
	if err := store.Delete(ctx, "c1", m.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
