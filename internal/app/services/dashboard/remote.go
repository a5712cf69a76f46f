package dashboard

import (
	"context"

	"github.com/dalemusser/edusphere/internal/app/backend"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Remote calls GET /api/dashboard/{role}.
type Remote struct {
	c *backend.Client
}

func NewRemote(c *backend.Client) *Remote {
	return &Remote{c: c}
}

func (s *Remote) Summary(ctx context.Context, v models.Viewer) (Summary, error) {
	out := Summary{Role: v.Role}
	path := "/api/dashboard/" + backend.PathEscape(v.Role)
	var target any
	switch v.Role {
	case models.RoleStudent:
		out.Student = &models.StudentSummary{}
		target = out.Student
	case models.RoleTeacher:
		out.Teacher = &models.TeacherSummary{}
		target = out.Teacher
	case models.RoleParent:
		out.Parent = &models.ParentSummary{}
		target = out.Parent
	case models.RoleAdmin:
		out.Admin = &models.AdminSummary{}
		target = out.Admin
	default:
		return Summary{}, errNoDashboard
	}
	if err := s.c.Get(ctx, v.Token, path, nil, target); err != nil {
		return Summary{}, err
	}
	return out, nil
}

var errNoDashboard = apperr.E(apperr.KindForbidden, "no dashboard for this role")
