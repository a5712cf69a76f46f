// Package formutil provides helpers for re-rendering forms with validation
// errors.
//
// A failed submission re-renders the form with the values the user typed,
// a localized error, and any per-field messages:
//
//	type groupNewData struct {
//		formutil.Base
//		Name    string
//		Subject string
//	}
//
//	data := groupNewData{Name: in.Name, Subject: in.Subject}
//	formutil.SetBase(&data.Base, r, "community.groups.new_title", "/community/groups")
//	data.ApplyResult(res)
//	templates.Render(w, r, "community_group_new", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/system/inputval"
	"github.com/dalemusser/edusphere/internal/app/system/viewdata"
)

// Base contains common fields for form pages.
type Base struct {
	viewdata.BaseVM
	Error       string
	FieldErrors map[string]string
}

// SetBase populates the embedded BaseVM from the request.
func SetBase(b *Base, r *http.Request, titleKey, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, titleKey, backDefault)
}

// SetError sets the form-level message to the translation of key.
func (b *Base) SetError(key string, args ...any) {
	b.Error = b.Tr.T(key, args...)
}

// ApplyResult copies validation failures into Error and FieldErrors.
func (b *Base) ApplyResult(res *inputval.Result) {
	if res == nil || !res.HasErrors() {
		return
	}
	b.Error = res.FirstFor(b.Tr)
	b.FieldErrors = make(map[string]string, len(res.Errors))
	for _, fe := range res.Errors {
		if _, seen := b.FieldErrors[fe.Field]; !seen {
			b.FieldErrors[fe.Field] = inputval.Message(b.Tr, fe)
		}
	}
}

// FieldError returns the message for field, or "".
func (b Base) FieldError(field string) string {
	return b.FieldErrors[field]
}
