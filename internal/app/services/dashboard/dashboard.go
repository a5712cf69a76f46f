// Package dashboard wraps the per-role dashboard aggregates.
package dashboard

import (
	"context"

	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Summary holds the aggregate for the viewer's role; exactly one of the
// role fields is set.
type Summary struct {
	Role    string
	Student *models.StudentSummary
	Teacher *models.TeacherSummary
	Parent  *models.ParentSummary
	Admin   *models.AdminSummary
}

// Service is the DashboardService wrapper.
type Service interface {
	Summary(ctx context.Context, v models.Viewer) (Summary, error)
}

// Recent list sizes shown on the dashboards.
const (
	RecentNotes    = 5
	RecentSessions = 5
	GroupsShown    = 6
)
