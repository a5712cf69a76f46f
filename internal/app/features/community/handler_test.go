package community

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	communitysvc "github.com/dalemusser/edusphere/internal/app/services/community"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"go.uber.org/zap"
)

type fakeCommunity struct {
	groups    []models.StudyGroup
	joinErr   error
	created   []communitysvc.CreateGroupInput
	posts     []communitysvc.CreatePostInput
	lastGroup communitysvc.GroupFilter
}

func (f *fakeCommunity) GetStudyGroups(_ context.Context, _ models.Viewer, gf communitysvc.GroupFilter) ([]models.StudyGroup, error) {
	f.lastGroup = gf
	return f.groups, nil
}

func (f *fakeCommunity) CreateStudyGroup(_ context.Context, _ models.Viewer, in communitysvc.CreateGroupInput) (models.StudyGroup, error) {
	if in.Name == "Taken" {
		return models.StudyGroup{}, apperr.EK(apperr.KindConflict, "community.error.duplicate_name", "dup")
	}
	f.created = append(f.created, in)
	return models.StudyGroup{ID: "g-new", Name: in.Name}, nil
}

func (f *fakeCommunity) JoinStudyGroup(_ context.Context, _ models.Viewer, id string) (models.StudyGroup, error) {
	if f.joinErr != nil {
		return models.StudyGroup{}, f.joinErr
	}
	return models.StudyGroup{ID: id, Name: "Algebra", MemberCount: 7}, nil
}

func (f *fakeCommunity) LeaveStudyGroup(_ context.Context, _ models.Viewer, id string) (models.StudyGroup, error) {
	return models.StudyGroup{ID: id, Name: "Algebra", MemberCount: 5}, nil
}

func (f *fakeCommunity) GetForumPosts(context.Context, models.Viewer, communitysvc.PostFilter) ([]models.ForumPost, error) {
	return nil, nil
}

func (f *fakeCommunity) CreateForumPost(_ context.Context, _ models.Viewer, in communitysvc.CreatePostInput) (models.ForumPost, error) {
	f.posts = append(f.posts, in)
	return models.ForumPost{ID: "p-1", GroupID: in.GroupID}, nil
}

func (f *fakeCommunity) GetLeaderboard(context.Context, models.Viewer, paging.Page) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func newHandler(svc communitysvc.Service) *Handler {
	return NewHandler(svc, uierrors.NewErrorLogger(zap.NewNop(), nil), zap.NewNop())
}

func TestFilterGroups(t *testing.T) {
	groups := []models.StudyGroup{
		{ID: "1", Subject: "Math"},
		{ID: "2", Subject: "physics"},
		{ID: "3", Subject: "math"},
		{ID: "4", Subject: ""},
	}

	all, subjects := filterGroups(groups, "")
	if len(all) != 4 {
		t.Errorf("unfiltered: got %d groups, want 4", len(all))
	}
	if len(subjects) != 2 || subjects[0] != "math" || subjects[1] != "physics" {
		t.Errorf("subjects: got %v, want [math physics]", subjects)
	}

	math, subjects := filterGroups(groups, " MATH ")
	if len(math) != 2 {
		t.Errorf("math filter: got %d groups, want 2", len(math))
	}
	if len(subjects) != 2 {
		t.Errorf("subject options must survive filtering, got %v", subjects)
	}
}

func TestToggleMembership_OptimisticJoinConfirmed(t *testing.T) {
	h := newHandler(&fakeCommunity{})
	current := models.StudyGroup{ID: "g-1", Name: "Algebra", MemberCount: 6}

	out := h.toggleMembership(context.Background(), testutil.StudentUser().Viewer(), current, true)

	if out.RolledBack || out.Err != nil {
		t.Fatalf("unexpected rollback: %+v", out)
	}
	if !out.State.IsMember || out.State.MemberCount != 7 {
		t.Errorf("state: got member=%v count=%d, want true 7", out.State.IsMember, out.State.MemberCount)
	}
}

func TestToggleMembership_RollsBackOnRejection(t *testing.T) {
	h := newHandler(&fakeCommunity{joinErr: apperr.EK(apperr.KindConflict, "community.error.group_full", "full")})
	current := models.StudyGroup{ID: "g-1", Name: "Algebra", MemberCount: 6, MaxMembers: 6}

	out := h.toggleMembership(context.Background(), testutil.StudentUser().Viewer(), current, true)

	if !out.RolledBack {
		t.Fatal("expected rollback")
	}
	if out.State.IsMember || out.State.MemberCount != 6 {
		t.Errorf("rolled-back state: got member=%v count=%d, want false 6", out.State.IsMember, out.State.MemberCount)
	}
	if apperr.LocalizationKey(out.Err) != "community.error.group_full" {
		t.Errorf("error key: got %q", apperr.LocalizationKey(out.Err))
	}
}

func TestSetMembership_Idempotent(t *testing.T) {
	g := models.StudyGroup{IsMember: true, MemberCount: 3}
	if got := setMembership(true)(g); got.MemberCount != 3 {
		t.Errorf("joining twice changed count to %d", got.MemberCount)
	}
	if got := setMembership(false)(models.StudyGroup{MemberCount: 0, IsMember: true}); got.MemberCount != 0 {
		t.Errorf("count went negative: %d", got.MemberCount)
	}
}

func TestCardState_ReadsHiddenFields(t *testing.T) {
	req := testutil.PostForm("/community/groups/g-9/join", url.Values{
		"name": {" Chem  Club "}, "subject": {"Chemistry"}, "member_count": {"4"}, "max_members": {"-2"}, "is_member": {"true"},
	})
	req = testutil.WithChiURLParam(req, "id", "g-9")
	_ = req.ParseForm()

	g := cardState(req)
	if g.ID != "g-9" || g.Name != "Chem Club" || g.Subject != "chemistry" || g.MemberCount != 4 || g.MaxMembers != 0 || !g.IsMember {
		t.Errorf("card state: %+v", g)
	}
}

func TestHandleJoin_NonHTMXRollbackRedirectsWithBanner(t *testing.T) {
	h := newHandler(&fakeCommunity{joinErr: apperr.E(apperr.KindConflict, "full")})
	req := testutil.PostForm("/community/groups/g-1/join", url.Values{"member_count": {"2"}})
	req = testutil.WithUser(testutil.WithChiURLParam(req, "id", "g-1"), testutil.StudentUser())

	rec := testutil.Serve(h.HandleJoin, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/community/groups" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleCreateGroup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"empty name", url.Values{"name": {"  "}, "subject": {"math"}}, http.StatusUnprocessableEntity},
		{"empty subject", url.Values{"name": {"Algebra"}}, http.StatusUnprocessableEntity},
		{"bad size", url.Values{"name": {"Algebra"}, "subject": {"math"}, "max_members": {"lots"}}, http.StatusUnprocessableEntity},
		{"too large", url.Values{"name": {"Algebra"}, "subject": {"math"}, "max_members": {"501"}}, http.StatusUnprocessableEntity},
		{"duplicate", url.Values{"name": {"Taken"}, "subject": {"math"}}, http.StatusConflict},
		{"ok", url.Values{"name": {"Algebra"}, "subject": {"Math"}, "max_members": {"12"}}, http.StatusSeeOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCommunity{}
			h := newHandler(svc)
			req := testutil.WithUser(testutil.PostForm("/community/groups", tc.form), testutil.StudentUser())

			rec := testutil.Serve(h.HandleCreateGroup, req)
			if rec.Code != tc.status {
				t.Errorf("status: got %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusUnprocessableEntity && len(svc.created) != 0 {
				t.Error("invalid form reached the service")
			}
			if tc.name == "ok" && (len(svc.created) != 1 || svc.created[0].Subject != "math" || svc.created[0].MaxMembers != 12) {
				t.Errorf("created: %+v", svc.created)
			}
		})
	}
}

func TestHandleCreatePost_MarkupOnlyBodyRejected(t *testing.T) {
	svc := &fakeCommunity{}
	h := newHandler(svc)
	req := testutil.WithUser(testutil.PostForm("/community/forum", url.Values{"title": {"Hello"}, "body": {"<p> </p>"}}), testutil.StudentUser())

	rec := testutil.Serve(h.HandleCreatePost, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
	if len(svc.posts) != 0 {
		t.Error("service must not be called")
	}
}

func TestHandleCreatePost_SanitizesAndRedirects(t *testing.T) {
	svc := &fakeCommunity{}
	h := newHandler(svc)
	req := testutil.WithUser(testutil.PostForm("/community/forum", url.Values{
		"group_id": {"g-1"}, "title": {"Hello"}, "body": {`<p>hi</p><script>x()</script>`}, "tags": {"Math, math ,exam"},
	}), testutil.StudentUser())

	rec := testutil.Serve(h.HandleCreatePost, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/community/forum?group=g-1" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if got := svc.posts[0].Body; got != "<p>hi</p>" {
		t.Errorf("body: got %q", got)
	}
	if got := svc.posts[0].Tags; len(got) != 2 {
		t.Errorf("tags: got %v", got)
	}
}

func TestServeGroups_PassesQueryNotSubject(t *testing.T) {
	svc := &fakeCommunity{}
	h := newHandler(svc)
	req := testutil.WithUser(testutil.NewRequest("GET", "/community/groups?q=alg&subject=math&mine=1"), testutil.StudentUser())

	testutil.Serve(h.ServeGroups, req)
	if svc.lastGroup.Query != "alg" || !svc.lastGroup.Mine || svc.lastGroup.Subject != "" {
		t.Errorf("filter: %+v", svc.lastGroup)
	}
}
