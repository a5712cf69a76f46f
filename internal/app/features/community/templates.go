// internal/app/features/community/templates.go
package community

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "community",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
