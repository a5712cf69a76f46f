package navigation

import (
	"net/http/httptest"
	"testing"
)

func hrefs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Href
	}
	return out
}

func has(items []Item, href string) bool {
	for _, it := range items {
		if it.Href == href {
			return true
		}
	}
	return false
}

func TestMenuIsRoleConditional(t *testing.T) {
	tests := []struct {
		role    string
		want    []string
		wantNot []string
	}{
		{"student", []string{"/dashboard", "/community/groups", "/notes", "/flashcards"}, []string{"/courses"}},
		{"teacher", []string{"/dashboard", "/courses", "/whiteboards"}, []string{"/flashcards"}},
		{"parent", []string{"/dashboard", "/inbox", "/community/leaderboard"}, []string{"/notes", "/courses", "/community/groups"}},
		{"admin", []string{"/dashboard", "/courses", "/community/groups"}, []string{"/flashcards"}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			items := Menu(tt.role, "/dashboard")
			for _, h := range tt.want {
				if !has(items, h) {
					t.Errorf("menu for %s missing %s (got %v)", tt.role, h, hrefs(items))
				}
			}
			for _, h := range tt.wantNot {
				if has(items, h) {
					t.Errorf("menu for %s should not include %s", tt.role, h)
				}
			}
		})
	}
}

func TestMenuVisitorIsEmpty(t *testing.T) {
	if got := Menu("visitor", "/"); len(got) != 0 {
		t.Errorf("visitor menu: got %v, want empty", hrefs(got))
	}
}

func TestMenuMarksActive(t *testing.T) {
	items := Menu("student", "/notes/abc")
	for _, it := range items {
		if want := it.Href == "/notes"; it.Active != want {
			t.Errorf("%s active: got %v, want %v", it.Href, it.Active, want)
		}
	}
}

func TestSafeBackURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   BackURLOptions
		want   string
	}{
		{"no return uses fallback", "/notes/1", NotesBackURL, "/notes"},
		{"valid return", "/x?return=/notes/abc", NotesBackURL, "/notes/abc"},
		{"wrong prefix", "/x?return=/courses/1", NotesBackURL, "/notes"},
		{"excluded subpath", "/x?return=/notes/abc/delete", NotesBackURL, "/notes"},
		{"absolute URL rejected", "/x?return=https://evil.example/", AnyLocal, "/"},
		{"protocol-relative rejected", "/x?return=//evil.example/", AnyLocal, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if got := SafeBackURL(r, tt.opts); got != tt.want {
				t.Errorf("SafeBackURL: got %q, want %q", got, tt.want)
			}
		})
	}
}
