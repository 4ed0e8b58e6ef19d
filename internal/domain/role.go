package domain

import "strings"

// Role is the closed set of caller roles understood by progress queries.
type Role int

const (
	RoleUnknown Role = iota
	RoleChild
	RoleParent
	RoleTeacher
	RoleCounselor
)

// ParseRole maps a caller-supplied role string onto a Role. Matching ignores
// case and surrounding whitespace; anything unrecognized is RoleUnknown.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "child":
		return RoleChild
	case "parent":
		return RoleParent
	case "teacher":
		return RoleTeacher
	case "counselor":
		return RoleCounselor
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleChild:
		return "child"
	case RoleParent:
		return "parent"
	case RoleTeacher:
		return "teacher"
	case RoleCounselor:
		return "counselor"
	default:
		return "unknown"
	}
}

// Privileged reports whether the role may see every child's attempts.
func (r Role) Privileged() bool {
	return r == RoleTeacher || r == RoleCounselor
}
