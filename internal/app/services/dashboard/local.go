package dashboard

import (
	"context"

	coursestore "github.com/dalemusser/edusphere/internal/app/store/courses"
	flashcardstore "github.com/dalemusser/edusphere/internal/app/store/flashcards"
	forumpoststore "github.com/dalemusser/edusphere/internal/app/store/forumposts"
	notestore "github.com/dalemusser/edusphere/internal/app/store/notes"
	studygroupstore "github.com/dalemusser/edusphere/internal/app/store/studygroups"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	whiteboardstore "github.com/dalemusser/edusphere/internal/app/store/whiteboards"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Local builds the summaries from the MongoDB stores.
type Local struct {
	users       *userstore.Store
	groups      *studygroupstore.Store
	posts       *forumpoststore.Store
	notes       *notestore.Store
	flashcards  *flashcardstore.Store
	courses     *coursestore.Store
	whiteboards *whiteboardstore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{
		users:       userstore.New(db),
		groups:      studygroupstore.New(db),
		posts:       forumpoststore.New(db),
		notes:       notestore.New(db),
		flashcards:  flashcardstore.New(db),
		courses:     coursestore.New(db),
		whiteboards: whiteboardstore.New(db),
	}
}

func (s *Local) Summary(ctx context.Context, v models.Viewer) (Summary, error) {
	out := Summary{Role: v.Role}
	var err error
	switch v.Role {
	case models.RoleStudent:
		out.Student, err = s.student(ctx, v.ID)
	case models.RoleTeacher:
		out.Teacher, err = s.teacher(ctx, v.ID)
	case models.RoleParent:
		out.Parent, err = s.parent(ctx, v.ID)
	case models.RoleAdmin:
		out.Admin, err = s.admin(ctx)
	default:
		return Summary{}, errNoDashboard
	}
	if err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *Local) student(ctx context.Context, id string) (*models.StudentSummary, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &models.StudentSummary{Points: u.Points}
	if out.Groups, err = s.groups.List(ctx, studygroupstore.Filter{MemberID: id, Limit: GroupsShown}); err != nil {
		return nil, err
	}
	if out.RecentNotes, err = s.notes.ListFor(ctx, id, RecentNotes); err != nil {
		return nil, err
	}
	if out.FlashcardCount, err = s.flashcards.CountByOwner(ctx, id); err != nil {
		return nil, err
	}
	if out.Rank, err = s.users.RankOf(ctx, u.Points); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Local) teacher(ctx context.Context, id string) (*models.TeacherSummary, error) {
	courses, err := s.courses.ListByTeacher(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.whiteboards.ListFor(ctx, id, RecentSessions)
	if err != nil {
		return nil, err
	}
	return &models.TeacherSummary{Courses: courses, RecentSessions: sessions}, nil
}

func (s *Local) parent(ctx context.Context, id string) (*models.ParentSummary, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	children, err := s.users.ListByIDs(ctx, u.ChildIDs)
	if err != nil {
		return nil, err
	}
	out := &models.ParentSummary{Children: make([]models.ChildProgress, 0, len(children))}
	for _, c := range children {
		rank, err := s.users.RankOf(ctx, c.Points)
		if err != nil {
			return nil, err
		}
		groups, err := s.groups.CountByMember(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, models.ChildProgress{
			UserID:     c.ID,
			Name:       c.FullName,
			Points:     c.Points,
			Rank:       rank,
			GroupCount: int(groups),
		})
	}
	return out, nil
}

// admin loads its four counts concurrently.
func (s *Local) admin(ctx context.Context) (*models.AdminSummary, error) {
	out := &models.AdminSummary{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.UsersByRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Groups, err = s.groups.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Posts, err = s.posts.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Courses, err = s.courses.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
