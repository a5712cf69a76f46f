// Package resources holds the templates every feature renders through:
// the page layout, the language switcher, banners and loading skeletons.
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

// SetName is the template set the shared partials are registered under.
const SetName = "shared"

var registerOnce sync.Once

// LoadSharedTemplates registers the shared set. Safe to call more than once.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     SetName,
			FS:       FS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}
