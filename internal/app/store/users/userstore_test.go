package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/indexes"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	created, err := store.Create(ctx, models.User{FullName: "Amira Haddad", Email: "Amira@Example.com", Role: models.RoleTeacher})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.EmailCI != "amira@example.com" || created.Status != models.StatusActive {
		t.Errorf("created: %+v", created)
	}

	got, err := store.GetByEmail(ctx, "AMIRA@example.COM")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail: got %q, want %q", got.ID, created.ID)
	}

	_, err = store.Create(ctx, models.User{FullName: "Other", Email: "amira@example.com", Role: models.RoleStudent})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestStore_UpdateLocale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := userstore.New(db)

	u := fx.CreateUser(ctx, "Luc Martin", "luc@example.com", models.RoleStudent)
	if err := store.UpdateLocale(ctx, u.ID, "fr"); err != nil {
		t.Fatalf("UpdateLocale: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.Locale != "fr" {
		t.Errorf("locale: got %q", got.Locale)
	}
	if err := store.UpdateLocale(ctx, "missing", "fr"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestStore_LeaderboardAndRank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := userstore.New(db)

	fx.CreateStudent(ctx, "Bea", "bea@example.com", 40)
	fx.CreateStudent(ctx, "Ali", "ali@example.com", 90)
	fx.CreateStudent(ctx, "Cyd", "cyd@example.com", 40)
	fx.CreateUser(ctx, "Teacher", "t@example.com", models.RoleTeacher)

	top, err := store.TopByPoints(ctx, 0, 10)
	if err != nil {
		t.Fatalf("TopByPoints: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d students, want 3", len(top))
	}
	if top[0].FullName != "Ali" || top[1].FullName != "Bea" || top[2].FullName != "Cyd" {
		t.Errorf("order: %s, %s, %s", top[0].FullName, top[1].FullName, top[2].FullName)
	}

	rank, err := store.RankOf(ctx, 40)
	if err != nil {
		t.Fatalf("RankOf: %v", err)
	}
	if rank != 2 {
		t.Errorf("rank for 40 points: got %d, want 2", rank)
	}
}

func TestStore_CountByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateStudent(ctx, "S1", "s1@example.com", 0)
	fx.CreateStudent(ctx, "S2", "s2@example.com", 0)
	fx.CreateParent(ctx, "P1", "p1@example.com")

	counts, err := userstore.New(db).CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if counts[models.RoleStudent] != 2 || counts[models.RoleParent] != 1 || counts[models.RoleAdmin] != 0 {
		t.Errorf("counts: %v", counts)
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := userstore.New(db)

	created, err := store.EnsureAdmin(ctx, "Admin", "admin@example.com", "hash")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin: created=%v err=%v", created, err)
	}
	created, err = store.EnsureAdmin(ctx, "Admin", "admin@example.com", "hash")
	if err != nil || created {
		t.Errorf("second EnsureAdmin: created=%v err=%v", created, err)
	}
}
