package shell

import (
	"strings"

	"synaphack/platform/internal/auth"
)

// Route describes one navigable destination. Public routes bypass the access
// policy entirely. Required narrows a protected route to a single role; zero
// admits any authenticated identity. Prefix routes own their whole subtree.
type Route struct {
	Path     string
	Public   bool
	Required auth.Role
	Prefix   bool
	// RoleHome marks the generic dashboard entry that forwards each visitor
	// to their own role's dashboard.
	RoleHome bool
}

// DefaultRoutes mirrors the web client's router: a public landing surface and
// three role-gated dashboard subtrees.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Public: true},
		{Path: "/login", Public: true},
		{Path: "/register", Public: true},
		{Path: "/events", Public: true},
		{Path: "/leaderboard", Public: true},
		{Path: "/about", Public: true},
		{Path: "/dashboard", RoleHome: true},
		{Path: "/dashboard/participant", Required: auth.RoleParticipant, Prefix: true},
		{Path: "/dashboard/organizer", Required: auth.RoleOrganizer, Prefix: true},
		{Path: "/dashboard/judge", Required: auth.RoleJudge, Prefix: true},
	}
}

func matchRoute(routes []Route, path string) (Route, bool) {
	var best Route
	found := false
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
		if r.Prefix && strings.HasPrefix(path, r.Path+"/") {
			if !found || len(r.Path) > len(best.Path) {
				best = r
				found = true
			}
		}
	}
	return best, found
}
