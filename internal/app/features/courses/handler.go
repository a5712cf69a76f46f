// internal/app/features/courses/handler.go
package courses

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/edusphere/internal/app/features/errors"
	profsvc "github.com/dalemusser/edusphere/internal/app/services/professor"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/app/system/auth"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/formutil"
	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/edusphere/internal/app/system/normalize"
	"github.com/dalemusser/edusphere/internal/app/system/timeouts"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the professor's course pages.
type Handler struct {
	Courses profsvc.Service
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(svc profsvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Courses: svc,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type courseInput struct {
	Title       string `validate:"required,max=200" label:"courses.field.title"`
	Description string `validate:"max=5000" label:"courses.field.description"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type listData struct {
	viewdata.BaseVM
	Courses []models.Course
	Total   int
}

// ServeList shows the courses the viewer teaches (all courses for admins).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Courses.ListCourses(ctx, auth.ViewerFrom(r))
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list courses failed", err, "/dashboard")
		return
	}
	templates.Render(w, r, "courses_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "courses.title", "/dashboard"),
		Courses: list,
		Total:   len(list),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{id}                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type slot struct {
	URL   string
	Label string
}

type courseData struct {
	viewdata.BaseVM
	Course    models.Course
	Materials slot
}

// ServeCourse shows one course. The materials list loads as a panel.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.GetCourse(ctx, auth.ViewerFrom(r), id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load course failed", err, "/courses")
		return
	}
	data := courseData{BaseVM: viewdata.NewBaseVM(r, "", "/courses"), Course: c}
	data.Title = c.Title
	data.Materials = slot{URL: "/courses/" + c.ID + "/materials", Label: data.Tr.T("courses.materials.loading")}
	templates.Render(w, r, "courses_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{id}/edit, POST /courses/{id}                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type editData struct {
	formutil.Base
	ID          string
	Code        string
	Title       string
	Description string
	Return      string
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, status int, data editData, res *inputval.Result, errKey string) {
	formutil.SetBase(&data.Base, r, "courses.edit_title", "/courses/"+data.ID)
	data.Return = navigation.SafeBackURL(r, navigation.CoursesBackURL)
	data.ApplyResult(res)
	if errKey != "" {
		data.SetError(errKey)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "courses_edit", data)
}

// ServeEdit renders the course form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.GetCourse(ctx, auth.ViewerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load course failed", err, "/courses")
		return
	}
	h.renderEdit(w, r, http.StatusOK, editData{ID: c.ID, Code: c.Code, Title: c.Title, Description: c.Description}, nil, "")
}

// HandleUpdate saves the course title and description, then returns to
// ?return= when it points inside /courses.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "error.invalid_input", "/courses/"+id)
		return
	}
	data := editData{
		ID:          id,
		Code:        normalize.QueryParam(r.FormValue("code")),
		Title:       normalize.Name(r.FormValue("title")),
		Description: normalize.Text(r.FormValue("description")),
	}
	if res := inputval.Validate(courseInput{Title: data.Title, Description: data.Description}); res.HasErrors() {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, data, res, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Courses.UpdateCourse(ctx, auth.ViewerFrom(r), id, profsvc.CourseInput{Title: data.Title, Description: data.Description}); err != nil {
		if apperr.Is(err, apperr.KindInvalidInput) {
			h.renderEdit(w, r, http.StatusUnprocessableEntity, data, nil, apperr.LocalizationKey(err))
			return
		}
		h.ErrLog.Banner(w, r, "update course failed", err, "/courses/"+id+"/edit")
		return
	}

	h.Log.Info("course updated", zap.String("course_id", id))
	if h.ErrLog.Flash != nil {
		_ = h.ErrLog.Flash.Add(w, r, flash.Success("courses.updated"))
	}
	ret := "/courses/" + id
	if r.FormValue("return") != "" {
		ret = navigation.SafeBackURL(r, navigation.CoursesBackURL)
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /courses/{id}/students                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type studentsData struct {
	viewdata.BaseVM
	Course   models.Course
	Students []models.CourseStudent
}

// ServeStudents lists the students enrolled in a course with progress.
func (h *Handler) ServeStudents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := auth.ViewerFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Courses.GetCourse(ctx, v, id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "load course failed", err, "/courses")
		return
	}
	students, err := h.Courses.GetCourseStudents(ctx, v, id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "list course students failed", err, "/courses/"+id)
		return
	}
	data := studentsData{BaseVM: viewdata.NewBaseVM(r, "courses.students.title", "/courses/"+id), Course: c, Students: students}
	templates.Render(w, r, "courses_students", data)
}
