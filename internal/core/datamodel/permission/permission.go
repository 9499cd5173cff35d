package permission

import (
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
)

// Set holds the five capability flags owned one-to-one by a person. A missing
// record means "no permissions", never an error.
type Set struct {
	ID                string `json:"id,omitempty"`
	PersonID          string `json:"person_id"`
	Dashboard         bool   `json:"dashboard"`
	ViewOwnHistory    bool   `json:"view_own_history"`
	ViewOthersHistory bool   `json:"view_others_history"`
	AdminPanel        bool   `json:"admin_panel"`
	EditPermissions   bool   `json:"edit_permissions"`
}

// None is the all-false set used when a person has no permission record.
func None(personID string) Set {
	return Set{PersonID: personID}
}

// RoleFromSet derives a role from the flags. Total over all combinations.
// This is a display fallback only; access control reads the role stored on
// the person record.
func RoleFromSet(p Set) person.Role {
	switch {
	case p.AdminPanel && p.EditPermissions:
		return person.RoleAdmin
	case p.ViewOthersHistory:
		return person.RoleProfesor
	default:
		return person.RoleAlumno
	}
}

// DefaultsForRole returns the fixed flag defaults used once, at first-time
// account bootstrap.
func DefaultsForRole(r person.Role) Set {
	switch {
	case r.Matches(string(person.RoleAdmin)):
		return Set{
			Dashboard:         true,
			ViewOwnHistory:    true,
			ViewOthersHistory: true,
			AdminPanel:        true,
			EditPermissions:   true,
		}
	case r.Matches(string(person.RoleProfesor)):
		return Set{
			Dashboard:         true,
			ViewOwnHistory:    true,
			ViewOthersHistory: true,
		}
	default:
		return Set{
			Dashboard:      true,
			ViewOwnHistory: true,
		}
	}
}
