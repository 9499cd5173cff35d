package guard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
)

// Status is the resolution state of the viewer's session.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

// Outcome is what the guard decides for a protected surface.
type Outcome int

const (
	// Wait renders nothing and performs no redirect; the session is still
	// resolving and protected content must not flash.
	Wait Outcome = iota
	Allow
	RedirectSignIn
	RedirectDashboard
)

// Decision pairs an outcome with its redirect target, when there is one.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Evaluate is the pure authorization rule. An authenticated user whose role
// does not satisfy the requirement is sent to their own role's dashboard,
// never to a generic error page. An empty requirement admits any
// authenticated user.
func Evaluate(status Status, sess *session.Session, signInPath string, required ...person.Role) Decision {
	switch status {
	case StatusLoading:
		return Decision{Outcome: Wait}
	case StatusUnauthenticated:
		return Decision{Outcome: RedirectSignIn, Target: signInPath}
	}

	if sess == nil {
		return Decision{Outcome: RedirectSignIn, Target: signInPath}
	}

	if len(required) == 0 {
		return Decision{Outcome: Allow}
	}

	for _, role := range required {
		if role.Matches(sess.Role) {
			return Decision{Outcome: Allow}
		}
	}

	actual, ok := person.ParseRole(sess.Role)
	if !ok {
		actual = person.RoleAlumno
	}
	return Decision{Outcome: RedirectDashboard, Target: actual.DashboardPath()}
}

// Guard wraps protected routes. It resolves the session token, evaluates the
// role requirement and either passes the request through with the session in
// context or answers with the decided redirect. Instances compose: nesting a
// narrower Require inside a broader one is safe.
type Guard struct {
	sessions   *session.Manager
	signInPath string
	logger     *slog.Logger
}

func New(sessions *session.Manager, signInPath string, logger *slog.Logger) *Guard {
	if signInPath == "" {
		signInPath = "/login"
	}
	return &Guard{
		sessions:   sessions,
		signInPath: signInPath,
		logger:     logger,
	}
}

// Require admits sessions whose role matches any of the given roles; with no
// roles it admits any authenticated session.
func (g *Guard) Require(required ...person.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := g.resolve(r)

			status := StatusAuthenticated
			if sess == nil {
				status = StatusUnauthenticated
			}

			decision := Evaluate(status, sess, g.signInPath, required...)
			switch decision.Outcome {
			case Allow:
				next.ServeHTTP(w, r.WithContext(session.ContextWithSession(r.Context(), sess)))
			case RedirectSignIn:
				g.deny(w, r, http.StatusUnauthorized, decision.Target)
			case RedirectDashboard:
				g.logger.Warn("role requirement not met, redirecting to own dashboard",
					"person_id", sess.ID,
					"role", sess.Role,
					"target", decision.Target)
				g.deny(w, r, http.StatusForbidden, decision.Target)
			default:
				// Wait never happens server-side; the token either resolves
				// or it does not.
				g.deny(w, r, http.StatusUnauthorized, g.signInPath)
			}
		})
	}
}

// RequireFlag admits sessions whose permission set has the picked flag set.
// Used for surfaces gated on a capability rather than a role.
func (g *Guard) RequireFlag(name string, pick func(permission.Set) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				sess = g.resolve(r)
			}
			if sess == nil {
				g.deny(w, r, http.StatusUnauthorized, g.signInPath)
				return
			}

			if sess.Permissions == nil || !pick(*sess.Permissions) {
				g.logger.Warn("access denied: missing permission flag",
					"person_id", sess.ID,
					"flag", name)
				actual, okRole := person.ParseRole(sess.Role)
				if !okRole {
					actual = person.RoleAlumno
				}
				g.deny(w, r, http.StatusForbidden, actual.DashboardPath())
				return
			}

			next.ServeHTTP(w, r.WithContext(session.ContextWithSession(r.Context(), sess)))
		})
	}
}

// RequireAdminPanel gates the administration surfaces.
func (g *Guard) RequireAdminPanel() func(http.Handler) http.Handler {
	return g.RequireFlag("admin_panel", func(p permission.Set) bool { return p.AdminPanel })
}

// RequireEditPermissions gates permission management.
func (g *Guard) RequireEditPermissions() func(http.Handler) http.Handler {
	return g.RequireFlag("edit_permissions", func(p permission.Set) bool { return p.EditPermissions })
}

// resolve extracts and validates the session token, from the Authorization
// header or the session cookie. Any validation failure means unauthenticated.
func (g *Guard) resolve(r *http.Request) *session.Session {
	token := bearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie(CookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil
	}

	claims, err := g.sessions.Validate(token)
	if err != nil {
		g.logger.Debug("session token rejected", "error", err)
		return nil
	}

	return session.Project(claims)
}

// CookieName is the session cookie used by browser navigation.
const CookieName = "syn_session"

// deny answers a blocked request: a browser navigation gets the redirect, an
// API caller gets the status plus the target to navigate to.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, status int, target string) {
	if wantsHTML(r) {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message":  http.StatusText(status),
		"redirect": target,
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return authHeader[7:]
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
