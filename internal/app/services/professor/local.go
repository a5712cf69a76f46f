package professor

import (
	"context"
	"errors"
	"strings"

	coursestore "github.com/dalemusser/edusphere/internal/app/store/courses"
	materialstore "github.com/dalemusser/edusphere/internal/app/store/materials"
	userstore "github.com/dalemusser/edusphere/internal/app/store/users"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/mongo"
)

// Local serves course management from MongoDB.
type Local struct {
	courses   *coursestore.Store
	materials *materialstore.Store
	users     *userstore.Store
}

func NewLocal(db *mongo.Database) *Local {
	return &Local{
		courses:   coursestore.New(db),
		materials: materialstore.New(db),
		users:     userstore.New(db),
	}
}

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, materialstore.ErrTitleRequired):
		return apperr.EK(apperr.KindInvalidInput, "courses.error.title_required", err.Error())
	case errors.Is(err, materialstore.ErrInvalidType):
		return apperr.EK(apperr.KindInvalidInput, "courses.error.material_type", err.Error())
	case errors.Is(err, materialstore.ErrInvalidURL):
		return apperr.EK(apperr.KindInvalidInput, "courses.error.material_url", err.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, err, "not found")
	}
	return err
}

// course loads id and checks that v teaches it or is an admin.
func (s *Local) course(ctx context.Context, v models.Viewer, id string) (models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return models.Course{}, localErr(err)
	}
	if v.Role != models.RoleAdmin && c.TeacherID != v.ID {
		return models.Course{}, apperr.E(apperr.KindForbidden, "not your course")
	}
	return c, nil
}

func (s *Local) ListCourses(ctx context.Context, v models.Viewer) ([]models.Course, error) {
	switch v.Role {
	case models.RoleAdmin:
		return s.courses.ListAll(ctx)
	case models.RoleTeacher:
		return s.courses.ListByTeacher(ctx, v.ID)
	}
	return nil, apperr.E(apperr.KindForbidden, "teachers only")
}

func (s *Local) GetCourse(ctx context.Context, v models.Viewer, id string) (models.Course, error) {
	return s.course(ctx, v, id)
}

func (s *Local) UpdateCourse(ctx context.Context, v models.Viewer, id string, in CourseInput) (models.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Course{}, apperr.EK(apperr.KindInvalidInput, "courses.error.title_required", "title is required")
	}
	if _, err := s.course(ctx, v, id); err != nil {
		return models.Course{}, err
	}
	c, err := s.courses.Update(ctx, id, in.Title, in.Description)
	return c, localErr(err)
}

func (s *Local) GetMaterials(ctx context.Context, v models.Viewer, courseID string) ([]models.Material, error) {
	if _, err := s.course(ctx, v, courseID); err != nil {
		return nil, err
	}
	return s.materials.ListByCourse(ctx, courseID)
}

func (s *Local) CreateMaterial(ctx context.Context, v models.Viewer, courseID string, in MaterialInput) (models.Material, error) {
	if _, err := s.course(ctx, v, courseID); err != nil {
		return models.Material{}, err
	}
	m, err := s.materials.Create(ctx, models.Material{
		CourseID:    courseID,
		Title:       strings.TrimSpace(in.Title),
		Type:        in.Type,
		URL:         strings.TrimSpace(in.URL),
		Description: in.Description,
	})
	return m, localErr(err)
}

func (s *Local) DeleteMaterial(ctx context.Context, v models.Viewer, courseID, materialID string) error {
	if _, err := s.course(ctx, v, courseID); err != nil {
		return err
	}
	return localErr(s.materials.Delete(ctx, courseID, materialID))
}

// GetCourseStudents lists enrolled students. Progress is not tracked
// locally and is always zero.
func (s *Local) GetCourseStudents(ctx context.Context, v models.Viewer, courseID string) ([]models.CourseStudent, error) {
	c, err := s.course(ctx, v, courseID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByIDs(ctx, c.StudentIDs)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u models.User, _ int) models.CourseStudent {
		return models.CourseStudent{UserID: u.ID, Name: u.FullName, Email: u.Email, Points: u.Points}
	}), nil
}
