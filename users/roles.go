package users

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-portfolio/internal/errors"
)

// Role is the closed set of roles the admin boundary understands.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin        // Can edit all site content and settings
	RoleTeacher      // Can edit projects, education and experience
	RoleViewer       // Read-only access to the admin panel
)

// ParseRole maps a claim value onto a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "teacher":
		return RoleTeacher, nil
	case "viewer":
		return RoleViewer, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: %q", errors.ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teacher"
	case RoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// CanEditSettings reports whether the role may change site settings.
func (r Role) CanEditSettings() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleTeacher, RoleViewer, RoleUnknown:
		return false
	default:
		return false
	}
}

// CanEditContent reports whether the role may change list content.
func (r Role) CanEditContent() bool {
	switch r {
	case RoleAdmin, RoleTeacher:
		return true
	case RoleViewer, RoleUnknown:
		return false
	default:
		return false
	}
}

// Roles is a permitted set used by the route guard.
type Roles []Role

// Permits reports whether r is in the set. RoleUnknown is never permitted.
func (rs Roles) Permits(r Role) bool {
	if r == RoleUnknown {
		return false
	}
	for _, allowed := range rs {
		if allowed == r {
			return true
		}
	}
	return false
}
