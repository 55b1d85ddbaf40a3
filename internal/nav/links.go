// Package nav maps a role to its ordered navigation destinations. The
// sequences are configuration, fixed per role; the function is pure.
package nav

import "synaphack/platform/internal/auth"

// Entry is one labeled destination in the dashboard chrome. Icon is a symbolic
// name the renderer resolves to whatever glyph set it uses.
type Entry struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var participantLinks = []Entry{
	{Path: "/dashboard/participant", Label: "Home", Icon: "home"},
	{Path: "/dashboard/participant/events", Label: "Events", Icon: "calendar"},
	{Path: "/dashboard/participant/teams", Label: "Teams", Icon: "users"},
	{Path: "/dashboard/participant/submissions", Label: "Submissions", Icon: "file-text"},
	{Path: "/dashboard/participant/announcements", Label: "Announcements", Icon: "message-square"},
	{Path: "/dashboard/participant/profile", Label: "Profile", Icon: "settings"},
}

var organizerLinks = []Entry{
	{Path: "/dashboard/organizer", Label: "Home", Icon: "home"},
	{Path: "/dashboard/organizer/create-event", Label: "Create Event", Icon: "plus"},
	{Path: "/dashboard/organizer/manage-events", Label: "Manage Events", Icon: "calendar"},
	{Path: "/dashboard/organizer/announcements", Label: "Announcements", Icon: "megaphone"},
	{Path: "/dashboard/organizer/profile", Label: "Profile", Icon: "settings"},
}

var judgeLinks = []Entry{
	{Path: "/dashboard/judge", Label: "Home", Icon: "home"},
	{Path: "/dashboard/judge/reviews", Label: "Project Reviews", Icon: "clipboard-list"},
	{Path: "/dashboard/judge/announcements", Label: "Announcements", Icon: "megaphone"},
	{Path: "/dashboard/judge/profile", Label: "Profile", Icon: "settings"},
}

// LinksFor returns the navigation sequence for a role. An invalid or zero role
// yields an empty slice, telling the caller to omit the chrome entirely. The
// result is a fresh copy each call; mutating it cannot corrupt the model.
func LinksFor(role auth.Role) []Entry {
	var src []Entry
	switch role {
	case auth.RoleParticipant:
		src = participantLinks
	case auth.RoleOrganizer:
		src = organizerLinks
	case auth.RoleJudge:
		src = judgeLinks
	default:
		return nil
	}

	out := make([]Entry, len(src))
	copy(out, src)
	return out
}
