package community

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls the backend's /api/community endpoints.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

func pageQuery(q url.Values, p paging.Page) url.Values {
	q.Set("skip", strconv.FormatInt(p.Skip(), 10))
	q.Set("limit", strconv.FormatInt(p.LimitPlusOne(), 10))
	return q
}

func (s *Remote) GetStudyGroups(ctx context.Context, v models.Viewer, f GroupFilter) ([]models.StudyGroup, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.Mine {
		q.Set("mine", "true")
	}
	var out []models.StudyGroup
	err := s.c.Get(ctx, v.Token, "/api/community/groups", q, &out)
	return out, err
}

func (s *Remote) CreateStudyGroup(ctx context.Context, v models.Viewer, in CreateGroupInput) (models.StudyGroup, error) {
	var out models.StudyGroup
	err := s.c.Post(ctx, v.Token, "/api/community/groups", in, &out)
	return out, err
}

func (s *Remote) JoinStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error) {
	var out models.StudyGroup
	err := s.c.Post(ctx, v.Token, "/api/community/groups/"+backend.PathEscape(groupID)+"/join", nil, &out)
	return out, err
}

func (s *Remote) LeaveStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error) {
	var out models.StudyGroup
	err := s.c.Post(ctx, v.Token, "/api/community/groups/"+backend.PathEscape(groupID)+"/leave", nil, &out)
	return out, err
}

func (s *Remote) GetForumPosts(ctx context.Context, v models.Viewer, f PostFilter) ([]models.ForumPost, error) {
	q := pageQuery(url.Values{}, f.Page)
	if f.GroupID != "" {
		q.Set("group_id", f.GroupID)
	}
	var out []models.ForumPost
	err := s.c.Get(ctx, v.Token, "/api/community/posts", q, &out)
	return out, err
}

func (s *Remote) CreateForumPost(ctx context.Context, v models.Viewer, in CreatePostInput) (models.ForumPost, error) {
	var out models.ForumPost
	err := s.c.Post(ctx, v.Token, "/api/community/posts", in, &out)
	return out, err
}

func (s *Remote) GetLeaderboard(ctx context.Context, v models.Viewer, p paging.Page) ([]models.LeaderboardEntry, error) {
	var out []models.LeaderboardEntry
	err := s.c.Get(ctx, v.Token, "/api/community/leaderboard", pageQuery(url.Values{}, p), &out)
	return out, err
}
