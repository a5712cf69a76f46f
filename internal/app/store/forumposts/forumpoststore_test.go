package forumpoststore_test

import (
	"errors"
	"testing"
	"time"

	forumpoststore "github.com/dalemusser/edusphere/internal/app/store/forumposts"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_ListNewestFirstWithPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := forumpoststore.New(db)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, models.ForumPost{GroupID: "g1", AuthorID: "u1", Title: title}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if _, err := store.Create(ctx, models.ForumPost{GroupID: "g2", AuthorID: "u1", Title: "elsewhere"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.List(ctx, "g1", paging.Page{Start: 1, Size: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected size+1 rows, got %d", len(got))
	}
	if got[0].Title != "third" || got[1].Title != "second" {
		t.Errorf("order: got %q, %q", got[0].Title, got[1].Title)
	}

	all, err := store.List(ctx, "", paging.Page{Start: 1, Size: 10})
	if err != nil || len(all) != 4 {
		t.Errorf("all groups: %d %v", len(all), err)
	}
}

func TestStore_DeleteOnlyByAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := forumpoststore.New(db)

	p, err := store.Create(ctx, models.ForumPost{AuthorID: "author", Title: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, p.ID, "someone-else"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("delete by other: got %v", err)
	}
	if err := store.Delete(ctx, p.ID, "author"); err != nil {
		t.Errorf("delete by author: %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("count after delete: %d", n)
	}
}
