package professor

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls the backend's /api/professor endpoints.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

func coursePath(id string) string {
	return "/api/professor/courses/" + backend.PathEscape(id)
}

func (s *Remote) ListCourses(ctx context.Context, v models.Viewer) ([]models.Course, error) {
	var out []models.Course
	err := s.c.Get(ctx, v.Token, "/api/professor/courses", nil, &out)
	return out, err
}

func (s *Remote) GetCourse(ctx context.Context, v models.Viewer, id string) (models.Course, error) {
	var out models.Course
	err := s.c.Get(ctx, v.Token, coursePath(id), nil, &out)
	return out, err
}

func (s *Remote) UpdateCourse(ctx context.Context, v models.Viewer, id string, in CourseInput) (models.Course, error) {
	var out models.Course
	err := s.c.Put(ctx, v.Token, coursePath(id), in, &out)
	return out, err
}

func (s *Remote) GetMaterials(ctx context.Context, v models.Viewer, courseID string) ([]models.Material, error) {
	var out []models.Material
	err := s.c.Get(ctx, v.Token, coursePath(courseID)+"/materials", nil, &out)
	return out, err
}

func (s *Remote) CreateMaterial(ctx context.Context, v models.Viewer, courseID string, in MaterialInput) (models.Material, error) {
	var out models.Material
	err := s.c.Post(ctx, v.Token, coursePath(courseID)+"/materials", in, &out)
	return out, err
}

func (s *Remote) DeleteMaterial(ctx context.Context, v models.Viewer, courseID, materialID string) error {
	return s.c.Delete(ctx, v.Token, coursePath(courseID)+"/materials/"+backend.PathEscape(materialID))
}

func (s *Remote) GetCourseStudents(ctx context.Context, v models.Viewer, courseID string) ([]models.CourseStudent, error) {
	var out []models.CourseStudent
	err := s.c.Get(ctx, v.Token, coursePath(courseID)+"/students", nil, &out)
	return out, err
}
