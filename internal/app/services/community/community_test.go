package community_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/edusphere/internal/app/services/community"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func TestRemote_GroupsAndJoin(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/community/groups", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("subject") != "math" || r.URL.Query().Get("mine") != "true" {
			t.Errorf("query: %v", r.URL.RawQuery)
		}
		testutil.WriteJSON(w, http.StatusOK, []models.StudyGroup{{ID: "g1", Name: "Calculus", IsMember: true}})
	})
	r.Post("/api/community/groups/{id}/join", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "full" {
			testutil.WriteJSON(w, http.StatusConflict, map[string]any{"error": map[string]string{"message": "group is full"}})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, models.StudyGroup{ID: chi.URLParam(r, "id"), IsMember: true, MemberCount: 3})
	})
	svc := community.NewRemote(testutil.NewBackend(t, r))
	ctx, cancel := testutil.TestContext()
	defer cancel()
	v := testutil.StudentUser().Viewer()

	groups, err := svc.GetStudyGroups(ctx, v, community.GroupFilter{Subject: "math", Mine: true})
	if err != nil || len(groups) != 1 || !groups[0].IsMember {
		t.Fatalf("GetStudyGroups: %+v %v", groups, err)
	}

	g, err := svc.JoinStudyGroup(ctx, v, "g1")
	if err != nil || g.MemberCount != 3 {
		t.Errorf("JoinStudyGroup: %+v %v", g, err)
	}

	_, err = svc.JoinStudyGroup(ctx, v, "full")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("join full group: kind %q (%v)", apperr.KindOf(err), err)
	}
}

func TestRemote_CreatePostAndLeaderboardPaging(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/community/posts", func(w http.ResponseWriter, r *http.Request) {
		var in community.CreatePostInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		testutil.WriteJSON(w, http.StatusCreated, models.ForumPost{ID: "p1", Title: in.Title, GroupID: in.GroupID})
	})
	r.Get("/api/community/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("skip") != "25" || r.URL.Query().Get("limit") != "26" {
			t.Errorf("paging query: %v", r.URL.RawQuery)
		}
		testutil.WriteJSON(w, http.StatusOK, []models.LeaderboardEntry{{Rank: 26, Name: "Omar", Points: 1200}})
	})
	svc := community.NewRemote(testutil.NewBackend(t, r))
	ctx, cancel := testutil.TestContext()
	defer cancel()
	v := testutil.StudentUser().Viewer()

	p, err := svc.CreateForumPost(ctx, v, community.CreatePostInput{GroupID: "g1", Title: "Help with limits", Body: "<p>?</p>"})
	if err != nil || p.Title != "Help with limits" || p.GroupID != "g1" {
		t.Errorf("CreateForumPost: %+v %v", p, err)
	}

	board, err := svc.GetLeaderboard(ctx, v, paging.Page{Start: 26, Size: 25})
	if err != nil || len(board) != 1 || board[0].Rank != 26 {
		t.Errorf("GetLeaderboard: %+v %v", board, err)
	}
}

func TestLocal_JoinLeaveAndErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc := community.NewLocal(db)

	owner := fx.CreateStudent(ctx, "Owner", "owner@example.com", 0)
	joiner := fx.CreateStudent(ctx, "Joiner", "joiner@example.com", 0)
	late := fx.CreateStudent(ctx, "Late", "late@example.com", 0)
	parent := fx.CreateParent(ctx, "Parent", "parent@example.com", joiner.ID)
	g := fx.CreateStudyGroup(ctx, "Physics", "physics", owner, 2)

	v := models.Viewer{ID: joiner.ID, Name: joiner.FullName, Role: models.RoleStudent}
	joined, err := svc.JoinStudyGroup(ctx, v, g.ID)
	if err != nil || !joined.IsMember {
		t.Fatalf("JoinStudyGroup: %+v %v", joined, err)
	}

	tests := []struct {
		name string
		v    models.Viewer
		id   string
		kind apperr.Kind
		key  string
	}{
		{"full", models.Viewer{ID: late.ID, Role: models.RoleStudent}, g.ID, apperr.KindConflict, "community.error.group_full"},
		{"again", v, g.ID, apperr.KindConflict, "community.error.already_member"},
		{"missing", v, "nope", apperr.KindNotFound, "error.not_found"},
		{"parent", models.Viewer{ID: parent.ID, Role: models.RoleParent}, g.ID, apperr.KindForbidden, "error.forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.JoinStudyGroup(ctx, tt.v, tt.id)
			if apperr.KindOf(err) != tt.kind || apperr.LocalizationKey(err) != tt.key {
				t.Errorf("got kind %q key %q (%v)", apperr.KindOf(err), apperr.LocalizationKey(err), err)
			}
		})
	}

	mine, err := svc.GetStudyGroups(ctx, v, community.GroupFilter{Mine: true})
	if err != nil || len(mine) != 1 || !mine[0].IsMember {
		t.Errorf("mine: %+v %v", mine, err)
	}

	if _, err := svc.LeaveStudyGroup(ctx, models.Viewer{ID: owner.ID, Role: models.RoleStudent}, g.ID); apperr.LocalizationKey(err) != "community.error.owner_leave" {
		t.Errorf("owner leave: %v", err)
	}
}

func TestLocal_PostsEarnPointsAndLeaderboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc := community.NewLocal(db)

	a := fx.CreateStudent(ctx, "Aya", "aya@example.com", 10)
	b := fx.CreateStudent(ctx, "Ben", "ben@example.com", 10)
	g := fx.CreateStudyGroup(ctx, "History", "history", a, 0)

	va := models.Viewer{ID: a.ID, Name: a.FullName, Role: models.RoleStudent}
	vb := models.Viewer{ID: b.ID, Name: b.FullName, Role: models.RoleStudent}

	if _, err := svc.CreateForumPost(ctx, vb, community.CreatePostInput{GroupID: g.ID, Title: "t", Body: "b"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("non-member post: %v", err)
	}
	if _, err := svc.CreateForumPost(ctx, va, community.CreatePostInput{Title: "t", Body: "<p></p>"}); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Errorf("empty body: %v", err)
	}
	p, err := svc.CreateForumPost(ctx, va, community.CreatePostInput{GroupID: g.ID, Title: "Dates", Body: `<p>1066<script>x</script></p>`})
	if err != nil {
		t.Fatalf("CreateForumPost: %v", err)
	}
	if p.Body != "<p>1066</p>" {
		t.Errorf("body not sanitized: %q", p.Body)
	}

	board, err := svc.GetLeaderboard(ctx, va, paging.Page{Start: 1, Size: 10})
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(board) != 2 || board[0].UserID != a.ID || board[0].Points != 11 || board[1].Rank != 2 {
		t.Errorf("leaderboard: %+v", board)
	}

	posts, err := svc.GetForumPosts(ctx, va, community.PostFilter{GroupID: g.ID, Page: paging.Page{Start: 1, Size: 10}})
	if err != nil || len(posts) != 1 {
		t.Errorf("GetForumPosts: %+v %v", posts, err)
	}
}
