package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. A user has exactly one role and it
// never changes for the lifetime of a session.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
)

func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleOrganizer, RoleJudge:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes a role string. An empty input defaults to participant,
// matching the registration form's default choice.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleParticipant, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
