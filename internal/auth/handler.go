package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway"
	"github.com/The-synnapse-Project/front-end-sub000/internal/guard"
	"github.com/The-synnapse-Project/front-end-sub000/internal/identity"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
	"github.com/The-synnapse-Project/front-end-sub000/internal/transport"
	"github.com/The-synnapse-Project/front-end-sub000/pkg/logger"
)

// Resolver runs the identity reconciliation process for one sign-in.
type Resolver interface {
	ResolveCredential(ctx context.Context, email, password string) (*identity.Identity, error)
	ResolveGoogle(ctx context.Context, assertion identity.GoogleAssertion) (*identity.Identity, error)
}

// Backend is the slice of the gateway the auth endpoints use directly.
type Backend interface {
	GetPerson(ctx context.Context, id string) (*person.Person, error)
	GetPermissionByPerson(ctx context.Context, personID string) (permission.Set, error)
	Register(ctx context.Context, name, surname, email, password string) (gateway.AuthResult, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) (gateway.AuthResult, error)
}

type Handler struct {
	*transport.BaseHandler
	resolver Resolver
	backend  Backend
	sessions *session.Manager
}

func NewHandler(resolver Resolver, backend Backend, sessions *session.Manager) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		resolver:    resolver,
		backend:     backend,
		sessions:    sessions,
	}
}

// Login signs a user in with credentials. Every reconciliation failure is
// answered with the same message so callers cannot probe for known emails.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident, err := h.resolver.ResolveCredential(r.Context(), dto.Email, dto.Password)
	if err != nil {
		h.Logger.Warn("credential sign-in denied", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueSession(w, ident)
}

// GoogleLogin signs a user in from a federated assertion, creating the
// account on first contact.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var dto GoogleLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident, err := h.resolver.ResolveGoogle(r.Context(), identity.GoogleAssertion{
		ProviderAccountID: dto.ProviderAccountID,
		Email:             dto.Email,
		Name:              dto.Name,
	})
	if err != nil {
		h.Logger.Warn("federated sign-in denied", "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueSession(w, ident)
}

// Refresh reissues the session from current backend state, so role or
// permission changes made while the user's tab was idle take effect. Clients
// call it on an interval and on window focus.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims := h.validClaims(r)
	if claims == nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	p, err := h.backend.GetPerson(r.Context(), claims.APIID)
	if err != nil {
		h.Logger.Warn("session refresh: person fetch failed", "person_id", claims.APIID, "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	perms, err := h.backend.GetPermissionByPerson(r.Context(), p.ID)
	if err != nil {
		h.Logger.Warn("session refresh: permission fetch failed", "person_id", p.ID, "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	h.issueSession(w, &identity.Identity{
		APIID:       p.ID,
		Name:        p.Name,
		Surname:     p.Surname,
		Email:       p.Email,
		Role:        p.Role,
		Permissions: perms,
		GoogleID:    p.GoogleID,
		Picture:     p.ProfilePicture,
	})
}

// Session projects the current token into the client-visible session object.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	claims := h.validClaims(r)
	if claims == nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	h.WriteJSON(w, http.StatusOK, session.Project(claims))
}

// Logout clears the session cookie. The token itself simply expires; there
// is no server-side revocation list.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     guard.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Register proxies credential registration to the backend.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.backend.Register(r.Context(), dto.Name, dto.Surname, dto.Email, dto.Password)
	if err != nil {
		h.WriteGatewayError(w, err)
		return
	}
	if !res.OK {
		h.WriteError(w, http.StatusUnprocessableEntity, "registration rejected")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// ChangePassword proxies a password change to the backend.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.backend.ChangePassword(r.Context(), dto.Email, dto.OldPassword, dto.NewPassword)
	if err != nil {
		h.WriteGatewayError(w, err)
		return
	}
	if !res.OK {
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// issueSession signs the reconciled identity into a token, sets the browser
// cookie and returns the token with its projection.
func (h *Handler) issueSession(w http.ResponseWriter, ident *identity.Identity) {
	token, err := h.sessions.Issue(ident)
	if err != nil {
		h.Logger.Error("failed to sign session token", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	claims, err := h.sessions.Validate(token)
	if err != nil {
		h.Logger.Error("freshly issued token failed validation", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     guard.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, SessionResponse{
		Token:   token,
		Session: session.Project(claims),
	})
}

// validClaims resolves the request's token from header or cookie.
func (h *Handler) validClaims(r *http.Request) *session.Claims {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		if cookie, err := r.Cookie(guard.CookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil
	}

	claims, err := h.sessions.Validate(token)
	if err != nil {
		return nil
	}
	return claims
}
