// Package inputval validates form input structs with go-playground/validator
// struct tags and renders the failures as localized messages.
//
// Labels come from the `label` tag and are treated as catalog keys; a label
// that is not a catalog key is shown as written.
//
//	type createGroupInput struct {
//		Name string `validate:"required,max=120" label:"community.field.name"`
//	}
//
//	if res := inputval.Validate(input); res.HasErrors() {
//		data.Error = res.FirstFor(tr)
//	}
package inputval

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule. Message is the base-locale rendering.
type FieldError struct {
	Field   string
	Label   string
	Tag     string
	Param   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message in the base locale, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// FirstFor renders the first failure for tr's locale.
func (r *Result) FirstFor(tr i18n.Translator) string {
	if len(r.Errors) == 0 {
		return ""
	}
	return Message(tr, r.Errors[0])
}

// Field returns the localized message for a struct field, or "".
func (r *Result) Field(tr i18n.Translator, field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return Message(tr, e)
		}
	}
	return ""
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || IsValidHTTPURL(s)
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
			_, ok := i18n.Lookup(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("strictemail", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate runs the struct's validate tags.
func Validate(input any) *Result {
	res := &Result{}
	err := instance().Struct(input)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Tag: "invalid", Message: err.Error()})
		return res
	}
	base := i18n.For(i18n.BaseLocale)
	for _, fe := range verrs {
		e := FieldError{
			Field: fe.StructField(),
			Label: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		}
		e.Message = Message(base, e)
		res.Errors = append(res.Errors, e)
	}
	return res
}

// Message renders e for tr's locale.
func Message(tr i18n.Translator, e FieldError) string {
	label := tr.T(e.Label)
	switch e.Tag {
	case "required":
		return tr.T("validation.required", label)
	case "max":
		return tr.T("validation.max", label, paramInt(e.Param))
	case "min":
		return tr.T("validation.min", label, paramInt(e.Param))
	case "email", "strictemail":
		return tr.T("validation.email")
	case "httpurl", "url":
		return tr.T("validation.url", label)
	case "oneof", "role", "locale":
		return tr.T("validation.oneof", label)
	case "invalid":
		return e.Message
	default:
		return tr.T("validation.invalid", label)
	}
}

func paramInt(p string) int {
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0
	}
	return n
}
