package identity_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway"
	"github.com/The-synnapse-Project/front-end-sub000/internal/identity"
)

func TestIdentityService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Service Suite")
}

// MockBackend implements identity.Backend for testing.
type MockBackend struct {
	persons     []person.Person
	permissions map[string]permission.Set
	passwords   map[string]string

	loginErr       error
	googleLoginErr error
	registerErr    error
	listErr        error
	permissionErr  error
	linkErr        error
	createPermErr  error

	// when false, RegisterWithGoogle succeeds without returning the user,
	// forcing callers through the lookup retry
	registerReturnsUser bool

	calls []string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		permissions:         map[string]permission.Set{},
		passwords:           map[string]string{},
		registerReturnsUser: true,
	}
}

func (m *MockBackend) AddPerson(p person.Person, password string) {
	m.persons = append(m.persons, p)
	if password != "" {
		m.passwords[p.Email] = password
	}
}

func (m *MockBackend) SetPermissions(personID string, set permission.Set) {
	set.PersonID = personID
	m.permissions[personID] = set
}

func (m *MockBackend) findByEmail(email string) *person.Person {
	for i := range m.persons {
		if m.persons[i].Email == email {
			return &m.persons[i]
		}
	}
	return nil
}

func (m *MockBackend) findByGoogleID(googleID string) *person.Person {
	for i := range m.persons {
		if m.persons[i].GoogleID != "" && m.persons[i].GoogleID == googleID {
			return &m.persons[i]
		}
	}
	return nil
}

func (m *MockBackend) Login(_ context.Context, email, password string) (gateway.AuthResult, error) {
	m.calls = append(m.calls, "Login")
	if m.loginErr != nil {
		return gateway.AuthResult{}, m.loginErr
	}
	if stored, ok := m.passwords[email]; ok && stored == password {
		return gateway.AuthResult{OK: true}, nil
	}
	return gateway.AuthResult{OK: false, Message: "invalid credentials"}, nil
}

func (m *MockBackend) LoginWithGoogle(_ context.Context, googleID, _ string) (gateway.GoogleAuthResult, error) {
	m.calls = append(m.calls, "LoginWithGoogle")
	if m.googleLoginErr != nil {
		return gateway.GoogleAuthResult{}, m.googleLoginErr
	}
	if p := m.findByGoogleID(googleID); p != nil {
		return gateway.GoogleAuthResult{OK: true, User: p}, nil
	}
	return gateway.GoogleAuthResult{OK: false, Message: "unknown google account"}, nil
}

func (m *MockBackend) RegisterWithGoogle(_ context.Context, googleID, email, name, surname string) (gateway.GoogleAuthResult, error) {
	m.calls = append(m.calls, "RegisterWithGoogle")
	if m.registerErr != nil {
		return gateway.GoogleAuthResult{}, m.registerErr
	}
	if p := m.findByEmail(email); p != nil {
		p.GoogleID = googleID
		if m.registerReturnsUser {
			return gateway.GoogleAuthResult{OK: true, User: p}, nil
		}
		return gateway.GoogleAuthResult{OK: true}, nil
	}
	return gateway.GoogleAuthResult{OK: false, Message: "unknown account"}, nil
}

func (m *MockBackend) RegisterFederated(_ context.Context, name, surname, email, googleID string) (gateway.AuthResult, error) {
	m.calls = append(m.calls, "RegisterFederated")
	if m.registerErr != nil {
		return gateway.AuthResult{}, m.registerErr
	}
	m.persons = append(m.persons, person.Person{
		ID:       "backend-" + email,
		Name:     name,
		Surname:  surname,
		Email:    email,
		Role:     string(person.RoleAlumno),
		GoogleID: googleID,
	})
	return gateway.AuthResult{OK: true}, nil
}

func (m *MockBackend) ListPersons(_ context.Context) ([]person.Person, error) {
	m.calls = append(m.calls, "ListPersons")
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.persons, nil
}

func (m *MockBackend) UpdateGoogleID(_ context.Context, personID, googleID string) error {
	m.calls = append(m.calls, "UpdateGoogleID")
	if m.linkErr != nil {
		return m.linkErr
	}
	for i := range m.persons {
		if m.persons[i].ID == personID {
			m.persons[i].GoogleID = googleID
		}
	}
	return nil
}

func (m *MockBackend) GetPermissionByPerson(_ context.Context, personID string) (permission.Set, error) {
	m.calls = append(m.calls, "GetPermissionByPerson")
	if m.permissionErr != nil {
		return permission.Set{}, m.permissionErr
	}
	if set, ok := m.permissions[personID]; ok {
		return set, nil
	}
	return permission.None(personID), nil
}

func (m *MockBackend) CreatePermission(_ context.Context, set permission.Set) error {
	m.calls = append(m.calls, "CreatePermission")
	if m.createPermErr != nil {
		return m.createPermErr
	}
	m.permissions[set.PersonID] = set
	return nil
}

func (m *MockBackend) CallCount(name string) int {
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

var _ = Describe("Identity Service", func() {
	var (
		backend *MockBackend
		service *identity.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = NewMockBackend()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = identity.NewService(backend, lg)
		ctx = context.Background()
	})

	Describe("ResolveCredential", func() {
		BeforeEach(func() {
			backend.AddPerson(person.Person{
				ID:      "p-7",
				Name:    "Marta",
				Surname: "López",
				Email:   "marta@example.com",
				Role:    "Profesor",
			}, "secret-pass")
			backend.SetPermissions("p-7", permission.Set{
				Dashboard:         true,
				ViewOwnHistory:    true,
				ViewOthersHistory: true,
			})
		})

		It("should resolve a known account with its stored role and permissions", func() {
			ident, err := service.ResolveCredential(ctx, "marta@example.com", "secret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(ident.APIID).To(Equal("p-7"))
			Expect(ident.Role).To(Equal("Profesor"))
			Expect(ident.Permissions.ViewOthersHistory).To(BeTrue())
		})

		It("should deny a wrong password with the uniform error", func() {
			_, err := service.ResolveCredential(ctx, "marta@example.com", "wrong")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("should deny an unknown email with the same error as a wrong password", func() {
			_, unknownErr := service.ResolveCredential(ctx, "ghost@example.com", "whatever")
			_, wrongErr := service.ResolveCredential(ctx, "marta@example.com", "wrong")
			Expect(unknownErr).To(Equal(wrongErr))
		})

		It("should deny when the backend is unreachable, without leaking the cause", func() {
			backend.loginErr = errors.New("connection refused")
			_, err := service.ResolveCredential(ctx, "marta@example.com", "secret-pass")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("should deny when login verifies but no person record matches", func() {
			backend.passwords["orphan@example.com"] = "pass"
			_, err := service.ResolveCredential(ctx, "orphan@example.com", "pass")
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("should derive the role from permissions only when the stored role is empty", func() {
			backend.AddPerson(person.Person{
				ID:    "p-8",
				Email: "noroll@example.com",
			}, "pass")
			backend.SetPermissions("p-8", permission.Set{
				AdminPanel:      true,
				EditPermissions: true,
			})

			ident, err := service.ResolveCredential(ctx, "noroll@example.com", "pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(ident.Role).To(Equal("Admin"))
		})
	})

	Describe("ResolveGoogle", func() {
		assertion := identity.GoogleAssertion{
			ProviderAccountID: "google-oauth2|555",
			Email:             "ana@example.com",
			Name:              "Ana Pérez García",
		}

		Context("when the provider id is already known", func() {
			BeforeEach(func() {
				backend.AddPerson(person.Person{
					ID:       "p-1",
					Name:     "Ana",
					Surname:  "Pérez García",
					Email:    "ana@example.com",
					Role:     "Alumno",
					GoogleID: "google-oauth2|555",
				}, "")
			})

			It("should resolve directly without registering", func() {
				ident, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())
				Expect(ident.APIID).To(Equal("p-1"))
				Expect(backend.CallCount("RegisterWithGoogle")).To(BeZero())
				Expect(backend.CallCount("RegisterFederated")).To(BeZero())
			})

			It("should carry the backend person id, never the provider id", func() {
				ident, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())
				Expect(ident.APIID).To(Equal("p-1"))
				Expect(ident.APIID).NotTo(Equal(assertion.ProviderAccountID))
				Expect(ident.GoogleID).To(Equal("google-oauth2|555"))
			})
		})

		Context("when the email exists but carries no provider id", func() {
			BeforeEach(func() {
				backend.registerReturnsUser = false
				backend.AddPerson(person.Person{
					ID:      "p-2",
					Name:    "Ana",
					Surname: "Pérez García",
					Email:   "ana@example.com",
					Role:    "Profesor",
				}, "old-password")
			})

			It("should adopt the account and keep its stored role", func() {
				ident, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())
				Expect(ident.APIID).To(Equal("p-2"))
				Expect(ident.Role).To(Equal("Profesor"))
			})

			It("should retry the provider lookup once after registering", func() {
				_, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())
				Expect(backend.CallCount("LoginWithGoogle")).To(Equal(2))
			})

			It("should still sign in when linking the provider id fails", func() {
				backend.registerErr = errors.New("registration unavailable")
				backend.linkErr = errors.New("link unavailable")

				ident, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())
				Expect(ident.APIID).To(Equal("p-2"))
			})
		})

		Context("when the account is completely new", func() {
			It("should create the person and bootstrap student defaults", func() {
				ident, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())

				Expect(ident.APIID).To(Equal("backend-ana@example.com"))
				Expect(ident.Name).To(Equal("Ana"))
				Expect(ident.Surname).To(Equal("Pérez García"))
				Expect(ident.Role).To(Equal("Alumno"))

				Expect(ident.Permissions.Dashboard).To(BeTrue())
				Expect(ident.Permissions.ViewOwnHistory).To(BeTrue())
				Expect(ident.Permissions.ViewOthersHistory).To(BeFalse())
				Expect(ident.Permissions.AdminPanel).To(BeFalse())
			})

			It("should persist the defaults keyed by the backend id", func() {
				_, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).NotTo(HaveOccurred())

				set, ok := backend.permissions["backend-ana@example.com"]
				Expect(ok).To(BeTrue())
				Expect(set.Dashboard).To(BeTrue())
			})

			It("should deny when the permission bootstrap fails", func() {
				backend.createPermErr = errors.New("permission store down")
				_, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).To(MatchError(identity.ErrDenied))
			})
		})

		Context("when everything is down", func() {
			BeforeEach(func() {
				backend.googleLoginErr = errors.New("unreachable")
				backend.registerErr = errors.New("unreachable")
				backend.listErr = errors.New("unreachable")
			})

			It("should collapse to the single denial error", func() {
				_, err := service.ResolveGoogle(ctx, assertion)
				Expect(err).To(MatchError(identity.ErrDenied))
			})
		})
	})

	Describe("SplitDisplayName", func() {
		It("should split on the first whitespace run", func() {
			given, surname := identity.SplitDisplayName("Ana Pérez García")
			Expect(given).To(Equal("Ana"))
			Expect(surname).To(Equal("Pérez García"))
		})

		It("should handle a single name", func() {
			given, surname := identity.SplitDisplayName("Cher")
			Expect(given).To(Equal("Cher"))
			Expect(surname).To(BeEmpty())
		})

		It("should handle an empty name", func() {
			given, surname := identity.SplitDisplayName("   ")
			Expect(given).To(BeEmpty())
			Expect(surname).To(BeEmpty())
		})
	})
})
