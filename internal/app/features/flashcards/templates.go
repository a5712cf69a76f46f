// internal/app/features/flashcards/templates.go
package flashcards

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "flashcards",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
