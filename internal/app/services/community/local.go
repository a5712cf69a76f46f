package community

import (
	"context"
	"errors"
	"strings"

	forumpoststore "github.com/dalemusser/edusphere/internal/app/store/forumposts"
	studygroupstore "github.com/dalemusser/edusphere/internal/app/store/studygroups"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edusphere/internal/app/system/paging"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
)

// Local serves the community from MongoDB.
type Local struct {
	users  *userstore.Store
	groups *studygroupstore.Store
	posts  *forumpoststore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{
		users:  userstore.New(db),
		groups: studygroupstore.New(db),
		posts:  forumpoststore.New(db),
	}
}

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, studygroupstore.ErrGroupFull):
		return apperr.EK(apperr.KindConflict, "community.error.group_full", err.Error())
	case errors.Is(err, studygroupstore.ErrAlreadyMember):
		return apperr.EK(apperr.KindConflict, "community.error.already_member", err.Error())
	case errors.Is(err, studygroupstore.ErrNotMember):
		return apperr.EK(apperr.KindConflict, "community.error.not_member", err.Error())
	case errors.Is(err, studygroupstore.ErrOwnerLeave):
		return apperr.EK(apperr.KindForbidden, "community.error.owner_leave", err.Error())
	case errors.Is(err, studygroupstore.ErrDuplicateName):
		return apperr.EK(apperr.KindConflict, "community.error.duplicate_name", err.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, "study group not found")
	}
	return err
}

func requireParticipant(v models.Viewer) error {
	if v.IsZero() {
		return apperr.E(apperr.KindUnauthorized, "sign in required")
	}
	if v.Role != models.RoleStudent && v.Role != models.RoleTeacher && v.Role != models.RoleAdmin {
		return apperr.E(apperr.KindForbidden, "only students, teachers and admins take part in study groups")
	}
	return nil
}

func (s *Local) GetStudyGroups(ctx context.Context, v models.Viewer, f GroupFilter) ([]models.StudyGroup, error) {
	filter := studygroupstore.Filter{Query: f.Query, Subject: f.Subject}
	if f.Mine {
		filter.MemberID = v.ID
	}
	groups, err := s.groups.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return lo.Map(groups, func(g models.StudyGroup, _ int) models.StudyGroup {
		g.IsMember = lo.Contains(g.MemberIDs, v.ID)
		return g
	}), nil
}

func (s *Local) CreateStudyGroup(ctx context.Context, v models.Viewer, in CreateGroupInput) (models.StudyGroup, error) {
	if err := requireParticipant(v); err != nil {
		return models.StudyGroup{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.StudyGroup{}, apperr.E(apperr.KindInvalidInput, "name is required")
	}
	g, err := s.groups.Create(ctx, models.StudyGroup{
		Name:        in.Name,
		Subject:     in.Subject,
		Description: in.Description,
		MaxMembers:  in.MaxMembers,
		OwnerID:     v.ID,
		OwnerName:   v.Name,
	})
	return g, localErr(err)
}

func (s *Local) JoinStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error) {
	if err := requireParticipant(v); err != nil {
		return models.StudyGroup{}, err
	}
	g, err := s.groups.Join(ctx, groupID, v.ID)
	return g, localErr(err)
}

func (s *Local) LeaveStudyGroup(ctx context.Context, v models.Viewer, groupID string) (models.StudyGroup, error) {
	if err := requireParticipant(v); err != nil {
		return models.StudyGroup{}, err
	}
	g, err := s.groups.Leave(ctx, groupID, v.ID)
	return g, localErr(err)
}

func (s *Local) GetForumPosts(ctx context.Context, v models.Viewer, f PostFilter) ([]models.ForumPost, error) {
	return s.posts.List(ctx, f.GroupID, f.Page)
}

func (s *Local) CreateForumPost(ctx context.Context, v models.Viewer, in CreatePostInput) (models.ForumPost, error) {
	if err := requireParticipant(v); err != nil {
		return models.ForumPost{}, err
	}
	if strings.TrimSpace(in.Title) == "" || htmlsanitize.StripTags(in.Body) == "" {
		return models.ForumPost{}, apperr.E(apperr.KindInvalidInput, "title and body are required")
	}
	if in.GroupID != "" {
		g, err := s.groups.GetByID(ctx, in.GroupID)
		if err != nil {
			return models.ForumPost{}, localErr(err)
		}
		if !lo.Contains(g.MemberIDs, v.ID) {
			return models.ForumPost{}, apperr.EK(apperr.KindForbidden, "community.error.not_member", "members only")
		}
	}
	p, err := s.posts.Create(ctx, models.ForumPost{
		GroupID:    in.GroupID,
		AuthorID:   v.ID,
		AuthorName: v.Name,
		Title:      in.Title,
		Body:       htmlsanitize.Sanitize(in.Body),
		Tags:       in.Tags,
	})
	if err != nil {
		return models.ForumPost{}, err
	}
	// Posting earns a point on the leaderboard.
	if err := s.users.AddPoints(ctx, v.ID, 1); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Local) GetLeaderboard(ctx context.Context, v models.Viewer, p paging.Page) ([]models.LeaderboardEntry, error) {
	users, err := s.users.TopByPoints(ctx, p.Skip(), p.LimitPlusOne())
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u models.User, i int) models.LeaderboardEntry {
		return models.LeaderboardEntry{
			Rank:   int(p.Skip()) + i + 1,
			UserID: u.ID,
			Name:   u.FullName,
			Points: u.Points,
		}
	}), nil
}
