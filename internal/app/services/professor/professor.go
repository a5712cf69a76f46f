// Package professor wraps course management for teachers and admins.
package professor

import (
	"context"

	"github.com/dalemusser/edusphere/internal/domain/models"
)

// CourseInput is the editable part of a course.
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MaterialInput creates a course material.
type MaterialInput struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Service is the ProfessorService wrapper.
type Service interface {
	ListCourses(ctx context.Context, v models.Viewer) ([]models.Course, error)
	GetCourse(ctx context.Context, v models.Viewer, id string) (models.Course, error)
	UpdateCourse(ctx context.Context, v models.Viewer, id string, in CourseInput) (models.Course, error)
	GetMaterials(ctx context.Context, v models.Viewer, courseID string) ([]models.Material, error)
	CreateMaterial(ctx context.Context, v models.Viewer, courseID string, in MaterialInput) (models.Material, error)
	DeleteMaterial(ctx context.Context, v models.Viewer, courseID, materialID string) error
	GetCourseStudents(ctx context.Context, v models.Viewer, courseID string) ([]models.CourseStudent, error)
}
