// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/edusphere/internal/app/i18n"
	"github.com/dalemusser/edusphere/internal/app/system/authz"
	"github.com/dalemusser/edusphere/internal/app/system/flash"
	"github.com/dalemusser/edusphere/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the header and page titles.
const SiteName = "EduSphere"

// NoticeVM is a dismissible banner ready for display.
type NoticeVM struct {
	Kind string // success, info, warning, error
	Text string
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type notesListData struct {
//	    viewdata.BaseVM
//	    Notes []noteRow
//	}
//
//	data := notesListData{BaseVM: viewdata.NewBaseVM(r, "notes.title", "/dashboard")}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string
	UserID     string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Localization. Templates call {{$.Tr.T "key"}} and set
	// <html lang="{{.Lang}}" dir="{{.Dir}}">.
	Tr        i18n.Translator
	Lang      string
	Dir       string
	Languages []i18n.Option

	Menu    []navigation.Item
	Notices []NoticeVM
}

// NewBaseVM builds the BaseVM for a page. titleKey is a catalog key; it is
// translated for the request locale.
func NewBaseVM(r *http.Request, titleKey, backDefault string) BaseVM {
	role, name, userID, signedIn := authz.UserCtx(r)
	tr := i18n.FromContext(r.Context())
	path := httpnav.CurrentPath(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		UserID:      userID,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: path,
		CSRFToken:   csrf.Token(r),
		Tr:          tr,
		Lang:        tr.Lang(),
		Dir:         tr.Dir(),
		Languages:   i18n.Options(tr.Locale, r.URL.Path, r.URL.RawQuery),
		Notices:     Notices(tr, flash.FromContext(r.Context())),
	}
	if titleKey != "" {
		vm.Title = tr.T(titleKey)
	}
	if signedIn {
		vm.Menu = navigation.Menu(role, r.URL.Path)
	}
	return vm
}

// AddError appends an error banner with already-localized text.
func (vm *BaseVM) AddError(text string) {
	vm.Notices = append(vm.Notices, NoticeVM{Kind: string(flash.KindError), Text: text})
}

// AddNotice appends a banner for a catalog key.
func (vm *BaseVM) AddNotice(kind flash.Kind, key string) {
	vm.Notices = append(vm.Notices, NoticeVM{Kind: string(kind), Text: vm.Tr.T(key)})
}

// Notices localizes flash notices.
func Notices(tr i18n.Translator, in []flash.Notice) []NoticeVM {
	if len(in) == 0 {
		return nil
	}
	out := make([]NoticeVM, 0, len(in))
	for _, n := range in {
		text := n.Text
		if text == "" {
			text = tr.T(n.Key)
		}
		out = append(out, NoticeVM{Kind: string(n.Kind), Text: text})
	}
	return out
}

// PanelErrorVM feeds the "panel_error" partial: a banner plus a retry
// button that reloads the panel from URL.
type PanelErrorVM struct {
	Notices []NoticeVM
	URL     string
	Retry   string
}

// PanelError builds the error state for an HTMX panel that failed to load.
func PanelError(tr i18n.Translator, key, url string) PanelErrorVM {
	return PanelErrorVM{
		Notices: []NoticeVM{{Kind: string(flash.KindError), Text: tr.T(key)}},
		URL:     url,
		Retry:   tr.T("common.retry"),
	}
}
