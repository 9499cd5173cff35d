package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/identity"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

const testSecret = "0123456789abcdef0123456789abcdef"

var _ = Describe("Manager", func() {
	var (
		manager *session.Manager
		ident   *identity.Identity
	)

	BeforeEach(func() {
		manager = session.NewManager(testSecret, time.Hour)
		ident = &identity.Identity{
			APIID:   "person-42",
			Name:    "Ana",
			Surname: "Pérez García",
			Email:   "ana@example.com",
			Role:    "Profesor",
			Permissions: permission.Set{
				PersonID:          "person-42",
				Dashboard:         true,
				ViewOwnHistory:    true,
				ViewOthersHistory: true,
			},
			GoogleID: "google-oauth2|123",
		}
	})

	Describe("Issue and Validate", func() {
		It("should round-trip the identity through a signed token", func() {
			token, err := manager.Issue(ident)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			claims, err := manager.Validate(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.APIID).To(Equal("person-42"))
			Expect(claims.Subject).To(Equal("person-42"))
			Expect(claims.Surname).To(Equal("Pérez García"))
			Expect(claims.Role).To(Equal("Profesor"))
			Expect(claims.GoogleID).To(Equal("google-oauth2|123"))
			Expect(claims.Permissions).NotTo(BeNil())
			Expect(claims.Permissions.ViewOthersHistory).To(BeTrue())
			Expect(claims.Permissions.AdminPanel).To(BeFalse())
		})

		It("should reject a token signed with a different secret", func() {
			other := session.NewManager("another-secret-another-secret-32", time.Hour)
			token, err := other.Issue(ident)
			Expect(err).NotTo(HaveOccurred())

			_, err = manager.Validate(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("should reject an expired token", func() {
			short := session.NewManager(testSecret, time.Minute)
			now := time.Now().Add(-time.Hour)
			claims := &session.Claims{
				APIID: "person-42",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "person-42",
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			_, err = short.Validate(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("should reject garbage input", func() {
			_, err := manager.Validate("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("should reject a token signed with a non-HMAC method", func() {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, &session.Claims{APIID: "person-42"})
			signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			_, err = manager.Validate(signed)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("Project", func() {
		It("should expose the backend person id as both ID and APIToken", func() {
			token, err := manager.Issue(ident)
			Expect(err).NotTo(HaveOccurred())
			claims, err := manager.Validate(token)
			Expect(err).NotTo(HaveOccurred())

			sess := session.Project(claims)
			Expect(sess.ID).To(Equal("person-42"))
			Expect(sess.APIToken).To(Equal("person-42"))
			Expect(sess.Role).To(Equal("Profesor"))
		})

		It("should fall back to the subject when the api id claim is absent", func() {
			claims := &session.Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "legacy-7"},
			}
			sess := session.Project(claims)
			Expect(sess.ID).To(Equal("legacy-7"))
		})
	})

	Describe("context round-trip", func() {
		It("should store and recover the session", func() {
			sess := &session.Session{ID: "person-42"}
			ctx := session.ContextWithSession(context.Background(), sess)

			got, ok := session.FromContext(ctx)
			Expect(ok).To(BeTrue())
			Expect(got.ID).To(Equal("person-42"))
		})

		It("should report absence", func() {
			_, ok := session.FromContext(context.Background())
			Expect(ok).To(BeFalse())
		})
	})
})
