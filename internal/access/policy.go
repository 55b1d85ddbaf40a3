// Package access decides whether a navigation request may proceed. Decide is a
// pure function of the session snapshot and the request; it performs no I/O,
// reads no clock, and never fails. Every input maps to a decision.
package access

import (
	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/session"
)

const LoginPath = "/login"

type Kind int

const (
	// Pending means the session is still restoring; the caller must render a
	// loading state and re-ask once it resolves. Not a grant and not a denial.
	Pending Kind = iota
	Allowed
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of evaluating a navigation request. Target is set
// only for Redirect.
type Decision struct {
	Kind   Kind
	Target string
}

// Decide evaluates a request for path against the session snapshot. required
// is the role the destination demands; zero means any authenticated identity.
//
// A role mismatch redirects to the requester's own dashboard, never to the
// login page: "wrong role" and "no session" are distinct outcomes.
func Decide(snap session.Snapshot, path string, required auth.Role) Decision {
	if snap.Loading {
		return Decision{Kind: Pending}
	}
	if snap.Identity == nil {
		return Decision{Kind: Redirect, Target: LoginPath}
	}
	if required != "" && snap.Identity.Role != required {
		return Decision{Kind: Redirect, Target: DashboardPath(snap.Identity.Role)}
	}
	return Decision{Kind: Allowed}
}

// DashboardPath is the default landing destination for a role.
func DashboardPath(role auth.Role) string {
	switch role {
	case auth.RoleOrganizer:
		return "/dashboard/organizer"
	case auth.RoleJudge:
		return "/dashboard/judge"
	default:
		return "/dashboard/participant"
	}
}
