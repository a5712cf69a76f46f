package navigation

import (
	"strings"

	"github.com/dalemusser/edusphere/internal/domain/models"
)

// Item is one entry in the top navigation. Key is a catalog key.
type Item struct {
	Key    string
	Href   string
	Active bool
}

type entry struct {
	key   string
	href  string
	roles []string
}

var entries = []entry{
	{"nav.dashboard", "/dashboard", models.AllRoles},
	{"nav.community", "/community/groups", []string{models.RoleStudent, models.RoleTeacher, models.RoleAdmin}},
	{"nav.leaderboard", "/community/leaderboard", models.AllRoles},
	{"nav.inbox", "/inbox", models.AllRoles},
	{"nav.notes", "/notes", []string{models.RoleStudent, models.RoleTeacher, models.RoleAdmin}},
	{"nav.whiteboards", "/whiteboards", []string{models.RoleStudent, models.RoleTeacher, models.RoleAdmin}},
	{"nav.flashcards", "/flashcards", []string{models.RoleStudent}},
	{"nav.courses", "/courses", []string{models.RoleTeacher, models.RoleAdmin}},
}

// Menu returns the navigation items visible to role, marking the one
// whose href prefixes currentPath as active. Visitors get an empty menu.
func Menu(role, currentPath string) []Item {
	role = models.NormalizeRole(role)
	if role == "" {
		return nil
	}
	var out []Item
	for _, e := range entries {
		if !contains(e.roles, role) {
			continue
		}
		out = append(out, Item{
			Key:    e.key,
			Href:   e.href,
			Active: currentPath == e.href || strings.HasPrefix(currentPath, e.href+"/"),
		})
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
