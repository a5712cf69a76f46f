package resources

import (
	"html/template"
	"io/fs"
	"testing"
)

func TestSharedTemplatesParse(t *testing.T) {
	files, err := fs.Glob(FS, "templates/*.gohtml")
	if err != nil || len(files) == 0 {
		t.Fatalf("no shared templates: %v", err)
	}
	tmpl, err := template.New("shared").ParseFS(FS, "templates/*.gohtml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, name := range []string{"layout_head", "layout_foot", "banners", "skeleton_panel", "panel_error", "language_switcher"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("missing template %q", name)
		}
	}
}
