// Package navigation provides safe back-URL resolution and the role-aware
// navigation menu.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/notes").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/delete").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", rejects
// anything that is not a local path, optionally validates the prefix, and
// excludes specified subpaths.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	if ret != "" && isLocalPath(ret) {
		valid := true
		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}
		if valid {
			return ret
		}
	}

	if opts.Fallback == "" {
		return "/"
	}
	return opts.Fallback
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

// Common back URL configurations for reuse across packages.
var (
	GroupsBackURL = BackURLOptions{
		AllowedPrefix:    "/community",
		ExcludedSubpaths: []string{"/join", "/leave", "/new"},
		Fallback:         "/community/groups",
	}

	NotesBackURL = BackURLOptions{
		AllowedPrefix:    "/notes",
		ExcludedSubpaths: []string{"/delete", "/new"},
		Fallback:         "/notes",
	}

	CoursesBackURL = BackURLOptions{
		AllowedPrefix:    "/courses",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/courses",
	}

	// AnyLocal accepts any local path and falls back to the home page.
	AnyLocal = BackURLOptions{Fallback: "/"}
)
