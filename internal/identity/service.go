package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway"
)

// ErrDenied is the single failure surfaced by reconciliation. Every internal
// cause (unknown provider id, missing person, gateway failure) collapses to
// it so the response never reveals whether an email exists.
var ErrDenied = errors.New("sign-in denied")

// Backend is the slice of the gateway the reconciliation process needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (gateway.AuthResult, error)
	LoginWithGoogle(ctx context.Context, googleID, email string) (gateway.GoogleAuthResult, error)
	RegisterWithGoogle(ctx context.Context, googleID, email, name, surname string) (gateway.GoogleAuthResult, error)
	RegisterFederated(ctx context.Context, name, surname, email, googleID string) (gateway.AuthResult, error)
	ListPersons(ctx context.Context) ([]person.Person, error)
	UpdateGoogleID(ctx context.Context, personID, googleID string) error
	GetPermissionByPerson(ctx context.Context, personID string) (permission.Set, error)
	CreatePermission(ctx context.Context, set permission.Set) error
}

// Identity is the reconciled result of one sign-in: a durable person, a role
// and a permission set. APIID is always the backend-assigned person id; the
// federated provider id rides along as metadata only.
type Identity struct {
	APIID       string
	Name        string
	Surname     string
	Email       string
	Role        string
	Permissions permission.Set
	GoogleID    string
	Picture     string
}

// GoogleAssertion is a verified federated sign-in: the provider account id,
// the account email and the provider's display name.
type GoogleAssertion struct {
	ProviderAccountID string
	Email             string
	Name              string
}

// Service runs the reconciliation process once per sign-in event. Steps are
// strictly sequential: each gateway round-trip decides whether the next one
// runs. There is no retry beyond the single documented login retry after
// registration, and no cancellation cleanup: every write is idempotent or
// creates at most one record keyed by email.
type Service struct {
	backend Backend
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// ResolveCredential reconciles an email/password sign-in. The backend's login
// endpoint verifies the password but returns no person id, so the person list
// is scanned for the exact email afterwards.
func (s *Service) ResolveCredential(ctx context.Context, email, password string) (*Identity, error) {
	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("credential login call failed", "error", err)
		return nil, internal.ErrInvalidCredentials
	}
	if !res.OK {
		return nil, internal.ErrInvalidCredentials
	}

	p, err := s.findPersonByEmail(ctx, email)
	if err != nil || p == nil {
		s.logger.Warn("credential login verified but no matching person", "error", err)
		return nil, internal.ErrInvalidCredentials
	}

	ident, err := s.finishWithPermissions(ctx, p)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	return ident, nil
}

// ResolveGoogle reconciles a federated sign-in, creating the person and
// bootstrapping default permissions when the account is new.
func (s *Service) ResolveGoogle(ctx context.Context, assertion GoogleAssertion) (*Identity, error) {
	googleID := assertion.ProviderAccountID
	email := assertion.Email

	// Lookup by provider id.
	login, err := s.backend.LoginWithGoogle(ctx, googleID, email)
	if err == nil && login.OK && login.User != nil {
		return s.finishFederated(ctx, login.User, googleID)
	}
	if err != nil {
		s.logger.Warn("google login lookup failed", "error", err)
	}

	given, surname := SplitDisplayName(assertion.Name)

	// Unknown provider id: attempt registration.
	reg, err := s.backend.RegisterWithGoogle(ctx, googleID, email, given, surname)
	if err == nil && reg.User != nil {
		return s.finishFederated(ctx, reg.User, googleID)
	}
	if err != nil {
		s.logger.Warn("google registration failed", "error", err)
	}

	// Registration may have succeeded without returning the user; one retry
	// of the lookup covers that race.
	login, err = s.backend.LoginWithGoogle(ctx, googleID, email)
	if err == nil && login.OK && login.User != nil {
		return s.finishFederated(ctx, login.User, googleID)
	}
	if err != nil {
		s.logger.Warn("google login retry failed", "error", err)
	}

	// Fall back to matching an existing account by email and linking the
	// provider id to it.
	existing, err := s.findPersonByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("person lookup by email failed", "error", err)
		return nil, ErrDenied
	}
	if existing != nil {
		if existing.GoogleID == "" {
			// Best effort: a failed link does not abort the sign-in.
			if err := s.backend.UpdateGoogleID(ctx, existing.ID, googleID); err != nil {
				s.logger.Warn("failed to link google id to person",
					"person_id", existing.ID,
					"error", err)
			}
		}
		return s.finishFederated(ctx, existing, googleID)
	}

	// First contact: create the person and bootstrap student defaults.
	created, err := s.createFederated(ctx, given, surname, email, googleID)
	if err != nil {
		return nil, ErrDenied
	}
	return s.finishFederated(ctx, created, googleID)
}

// createFederated registers a passwordless person carrying the provider id,
// then re-reads the person list to learn the backend-assigned id (the
// registration endpoint does not return it) and persists Alumno default
// permissions for the new account.
func (s *Service) createFederated(ctx context.Context, given, surname, email, googleID string) (*person.Person, error) {
	if _, err := s.backend.RegisterFederated(ctx, given, surname, email, googleID); err != nil {
		s.logger.Warn("federated registration failed", "error", err)
		return nil, err
	}

	created, err := s.findPersonByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if created == nil {
		s.logger.Warn("federated registration did not produce a person", "email", email)
		return nil, ErrDenied
	}

	defaults := permission.DefaultsForRole(person.RoleAlumno)
	defaults.PersonID = created.ID
	if err := s.backend.CreatePermission(ctx, defaults); err != nil {
		s.logger.Warn("default permission bootstrap failed", "person_id", created.ID, "error", err)
		return nil, err
	}

	if created.Role == "" {
		created.Role = string(person.RoleAlumno)
	}
	return created, nil
}

func (s *Service) finishFederated(ctx context.Context, p *person.Person, googleID string) (*Identity, error) {
	ident, err := s.finishWithPermissions(ctx, p)
	if err != nil {
		return nil, ErrDenied
	}
	if ident.GoogleID == "" {
		ident.GoogleID = googleID
	}
	return ident, nil
}

// finishWithPermissions is the terminal step: attach the permission set (a
// missing record means all-false) and carry the role as stored on the person
// record rather than re-deriving it.
func (s *Service) finishWithPermissions(ctx context.Context, p *person.Person) (*Identity, error) {
	set, err := s.backend.GetPermissionByPerson(ctx, p.ID)
	if err != nil {
		s.logger.Warn("permission fetch failed", "person_id", p.ID, "error", err)
		return nil, err
	}

	role := p.Role
	if role == "" {
		role = string(permission.RoleFromSet(set))
	}

	return &Identity{
		APIID:       p.ID,
		Name:        p.Name,
		Surname:     p.Surname,
		Email:       p.Email,
		Role:        role,
		Permissions: set,
		GoogleID:    p.GoogleID,
		Picture:     p.ProfilePicture,
	}, nil
}

func (s *Service) findPersonByEmail(ctx context.Context, email string) (*person.Person, error) {
	persons, err := s.backend.ListPersons(ctx)
	if err != nil {
		return nil, err
	}
	for i := range persons {
		if persons[i].Email == email {
			return &persons[i], nil
		}
	}
	return nil, nil
}

// SplitDisplayName splits a federated display name on the first whitespace
// run: the first token is the given name, the remainder the surname.
func SplitDisplayName(full string) (given, surname string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
