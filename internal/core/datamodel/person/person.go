package person

import "strings"

// Role is the closed set of account roles. The backend stores the capitalized
// Spanish spellings; older clients and the permission service have shipped
// lowercase and English variants, so comparisons must always go through
// Normalize rather than assuming one canonical casing.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleProfesor Role = "Profesor"
	RoleAlumno   Role = "Alumno"
)

// Normalize folds a role spelling to its lowercase canonical token. Unknown
// spellings fold to plain lowercase so equality still behaves sensibly.
func Normalize(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator":
		return "admin"
	case "profesor", "teacher":
		return "profesor"
	case "alumno", "student":
		return "alumno"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

// ParseRole resolves any accepted spelling into the canonical Role.
func ParseRole(s string) (Role, bool) {
	switch Normalize(s) {
	case "admin":
		return RoleAdmin, true
	case "profesor":
		return RoleProfesor, true
	case "alumno":
		return RoleAlumno, true
	default:
		return "", false
	}
}

// RoleEquals compares two role spellings case-insensitively. Every role
// comparison in the codebase must go through here or Role.Matches.
func RoleEquals(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Matches reports whether s names this role, in any accepted spelling.
func (r Role) Matches(s string) bool {
	return RoleEquals(string(r), s)
}

// Lower returns the lowercase canonical token for the role.
func (r Role) Lower() string {
	return Normalize(string(r))
}

// DashboardPath is the landing surface for an authenticated user of this
// role. Misrouted but authenticated users are redirected here, never to a
// generic error page.
func (r Role) DashboardPath() string {
	switch Normalize(string(r)) {
	case "admin":
		return "/dashboard/admin"
	case "profesor":
		return "/dashboard/profesor"
	default:
		return "/dashboard/alumno"
	}
}

// Person is the identity record owned by the attendance backend. The password
// hash never crosses the gateway boundary outward.
type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	GoogleID       string `json:"google_id,omitempty"`
	PasswordHash   string `json:"-"`
}

// HasRole reports whether the person's stored role matches r.
func (p *Person) HasRole(r Role) bool {
	return r.Matches(p.Role)
}
