package notestore_test

import (
	"errors"
	"testing"

	notestore "github.com/dalemusser/edusphere/internal/app/store/notes"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_SharingControlsEditing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := notestore.New(db)

	owner := fx.CreateStudent(ctx, "Owner", "owner@example.com", 0)
	reader := fx.CreateStudent(ctx, "Reader", "reader@example.com", 0)
	editor := fx.CreateStudent(ctx, "Editor", "editor@example.com", 0)
	n := fx.CreateNote(ctx, "Mitosis", "<p>phases</p>", owner)

	if _, err := store.UpdateContent(ctx, n.ID, reader.ID, "x"); !errors.Is(err, notestore.ErrForbidden) {
		t.Fatalf("unshared edit: got %v", err)
	}

	if _, err := store.Share(ctx, n.ID, owner.ID, models.NoteCollaborator{UserID: reader.ID, Permission: models.PermissionView}); err != nil {
		t.Fatalf("Share view: %v", err)
	}
	if _, err := store.Share(ctx, n.ID, owner.ID, models.NoteCollaborator{UserID: editor.ID, Permission: models.PermissionEdit}); err != nil {
		t.Fatalf("Share edit: %v", err)
	}

	if _, err := store.UpdateContent(ctx, n.ID, reader.ID, "x"); !errors.Is(err, notestore.ErrForbidden) {
		t.Errorf("view-only edit: got %v", err)
	}
	updated, err := store.UpdateContent(ctx, n.ID, editor.ID, "<p>prophase</p>")
	if err != nil {
		t.Fatalf("editor edit: %v", err)
	}
	if updated.Content != "<p>prophase</p>" || updated.Title != "Mitosis" {
		t.Errorf("updated: %+v", updated)
	}

	// Re-sharing replaces rather than duplicates.
	again, err := store.Share(ctx, n.ID, owner.ID, models.NoteCollaborator{UserID: reader.ID, Permission: models.PermissionEdit})
	if err != nil {
		t.Fatalf("re-share: %v", err)
	}
	if len(again.Collaborators) != 2 || !again.CanEdit(reader.ID) {
		t.Errorf("collaborators after re-share: %+v", again.Collaborators)
	}

	if _, err := store.Share(ctx, n.ID, reader.ID, models.NoteCollaborator{UserID: "x"}); !errors.Is(err, notestore.ErrForbidden) {
		t.Errorf("non-owner share: got %v", err)
	}
	if _, err := store.Share(ctx, n.ID, owner.ID, models.NoteCollaborator{UserID: owner.ID}); !errors.Is(err, notestore.ErrShareOwner) {
		t.Errorf("share with owner: got %v", err)
	}

	unshared, err := store.Unshare(ctx, n.ID, owner.ID, editor.ID)
	if err != nil || unshared.CanView(editor.ID) {
		t.Errorf("Unshare: %v %+v", err, unshared.Collaborators)
	}
}

func TestStore_ListForIncludesShared(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := notestore.New(db)

	a := fx.CreateStudent(ctx, "A", "a@example.com", 0)
	b := fx.CreateStudent(ctx, "B", "b@example.com", 0)
	fx.CreateNote(ctx, "mine", "", a)
	theirs := fx.CreateNote(ctx, "theirs", "", b)
	fx.CreateNote(ctx, "private", "", b)
	if _, err := store.Share(ctx, theirs.ID, b.ID, models.NoteCollaborator{UserID: a.ID, Permission: models.PermissionView}); err != nil {
		t.Fatalf("Share: %v", err)
	}

	got, err := store.ListFor(ctx, a.ID, 0)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(got) != 2 || got[0].Title != "theirs" {
		t.Errorf("ListFor: %+v", got)
	}
	if got[0].Content != "" {
		t.Error("list should not carry note bodies")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := notestore.New(db)

	owner := fx.CreateStudent(ctx, "Owner", "o@example.com", 0)
	n := fx.CreateNote(ctx, "t", "", owner)

	if err := store.Delete(ctx, n.ID, "someone"); !errors.Is(err, notestore.ErrForbidden) {
		t.Errorf("delete by other: %v", err)
	}
	if err := store.Delete(ctx, n.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, n.ID, owner.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("delete missing: %v", err)
	}
}
