package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/identity"
)

// Claims is what goes into the signed session token. APIID is the
// backend-assigned person id; the federated provider id is metadata and must
// never be used for backend calls.
type Claims struct {
	APIID       string          `json:"api_id"`
	Surname     string          `json:"surname"`
	Role        string          `json:"role"`
	Permissions *permission.Set `json:"permissions,omitempty"`
	GoogleID    string          `json:"google_id,omitempty"`
	jwt.RegisteredClaims
}

// Session is the client-visible projection of the token. APIToken is always
// the backend person id, spelled out so callers never reach for GoogleID by
// mistake.
type Session struct {
	ID          string          `json:"id"`
	APIToken    string          `json:"api_token"`
	Surname     string          `json:"surname"`
	Role        string          `json:"role"`
	Permissions *permission.Set `json:"permissions"`
	GoogleID    string          `json:"google_id,omitempty"`
}

// Manager signs and validates session tokens (HS256, expiring).
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue packs a reconciled identity into a signed, expiring token.
func (m *Manager) Issue(ident *identity.Identity) (string, error) {
	now := time.Now()
	perms := ident.Permissions

	claims := &Claims{
		APIID:    ident.APIID,
		Surname:  ident.Surname,
		Role:     ident.Role,
		GoogleID: ident.GoogleID,
		Permissions: &permission.Set{
			ID:                perms.ID,
			PersonID:          perms.PersonID,
			Dashboard:         perms.Dashboard,
			ViewOwnHistory:    perms.ViewOwnHistory,
			ViewOthersHistory: perms.ViewOthersHistory,
			AdminPanel:        perms.AdminPanel,
			EditPermissions:   perms.EditPermissions,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.APIID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies a session token.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}

// Project turns validated claims into the session object the rest of the
// application consumes. ID falls back to the raw subject when apiID is
// absent; APIToken is always the apiID.
func Project(c *Claims) *Session {
	id := c.APIID
	if id == "" {
		id = c.Subject
	}

	return &Session{
		ID:          id,
		APIToken:    c.APIID,
		Surname:     c.Surname,
		Role:        c.Role,
		Permissions: c.Permissions,
		GoogleID:    c.GoogleID,
	}
}

type ctxKey string

const sessionKey ctxKey = "session"

// ContextWithSession stores the projected session for downstream handlers.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session stored by the guard middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}
