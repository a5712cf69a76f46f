package studygroupstore_test

import (
	"errors"
	"testing"

	studygroupstore "github.com/dalemusser/edusphere/internal/app/store/studygroups"
	"github.com/dalemusser/edusphere/internal/app/system/indexes"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_CreateMakesOwnerMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := studygroupstore.New(db)
	owner := fx.CreateStudent(ctx, "Nadia", "nadia@example.com", 0)

	g, err := store.Create(ctx, models.StudyGroup{Name: "Organic Chemistry", Subject: "chemistry", OwnerID: owner.ID, OwnerName: owner.FullName})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.MemberCount != 1 || len(g.MemberIDs) != 1 || g.MemberIDs[0] != owner.ID || !g.IsMember {
		t.Errorf("created: %+v", g)
	}

	_, err = store.Create(ctx, models.StudyGroup{Name: "organic chemistry", OwnerID: owner.ID})
	if !errors.Is(err, studygroupstore.ErrDuplicateName) {
		t.Errorf("duplicate: got %v", err)
	}
}

func TestStore_JoinAndLeave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := studygroupstore.New(db)

	owner := fx.CreateStudent(ctx, "Owner", "o@example.com", 0)
	a := fx.CreateStudent(ctx, "A", "a@example.com", 0)
	b := fx.CreateStudent(ctx, "B", "b@example.com", 0)
	g := fx.CreateStudyGroup(ctx, "Calculus", "math", owner, 2)

	joined, err := store.Join(ctx, g.ID, a.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined.MemberCount != 2 {
		t.Errorf("member count: got %d, want 2", joined.MemberCount)
	}

	if _, err := store.Join(ctx, g.ID, a.ID); !errors.Is(err, studygroupstore.ErrAlreadyMember) {
		t.Errorf("join twice: got %v", err)
	}
	if _, err := store.Join(ctx, g.ID, b.ID); !errors.Is(err, studygroupstore.ErrGroupFull) {
		t.Errorf("join full group: got %v", err)
	}

	if _, err := store.Leave(ctx, g.ID, owner.ID); !errors.Is(err, studygroupstore.ErrOwnerLeave) {
		t.Errorf("owner leave: got %v", err)
	}
	left, err := store.Leave(ctx, g.ID, a.ID)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if left.MemberCount != 1 {
		t.Errorf("member count after leave: got %d", left.MemberCount)
	}
	if _, err := store.Leave(ctx, g.ID, a.ID); !errors.Is(err, studygroupstore.ErrNotMember) {
		t.Errorf("leave twice: got %v", err)
	}
}

func TestStore_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := studygroupstore.New(db)

	owner := fx.CreateStudent(ctx, "Owner", "o@example.com", 0)
	other := fx.CreateStudent(ctx, "Other", "x@example.com", 0)
	fx.CreateStudyGroup(ctx, "Linear Algebra", "math", owner, 0)
	fx.CreateStudyGroup(ctx, "Cell Biology", "biology", other, 0)
	fx.CreateStudyGroup(ctx, "Algebra (ar)", "math", other, 0)

	tests := []struct {
		name   string
		filter studygroupstore.Filter
		want   int
	}{
		{"all", studygroupstore.Filter{}, 3},
		{"query", studygroupstore.Filter{Query: "ALGEBRA"}, 2},
		{"query with regex chars", studygroupstore.Filter{Query: "(ar)"}, 1},
		{"subject", studygroupstore.Filter{Subject: "biology"}, 1},
		{"member", studygroupstore.Filter{MemberID: owner.ID}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d groups, want %d", len(got), tt.want)
			}
		})
	}
}
