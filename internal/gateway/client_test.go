package gateway_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway/gatewaytest"
)

func TestGatewayClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Client Suite")
}

const sharedSecret = "test-shared-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Client", func() {
	var (
		backend *gatewaytest.Server
		client  *gateway.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		backend, err = gatewaytest.New(sharedSecret)
		Expect(err).NotTo(HaveOccurred())

		client = gateway.NewClient(gateway.Config{
			BaseURL:        backend.URL(),
			SharedSecret:   sharedSecret,
			RequestTimeout: 2 * time.Second,
		}, testLogger())

		ctx = context.Background()
	})

	AfterEach(func() {
		backend.Close()
	})

	Describe("request signing", func() {
		It("should be accepted by a backend sharing the secret", func() {
			persons, err := client.ListPersons(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(persons).To(BeEmpty())
		})

		It("should be rejected when the secrets differ", func() {
			wrong := gateway.NewClient(gateway.Config{
				BaseURL:      backend.URL(),
				SharedSecret: "some-other-secret",
			}, testLogger())

			_, err := wrong.ListPersons(ctx)
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryUnauthorized))
		})

		It("should produce a stable signature per path", func() {
			Expect(client.Sign("/api/person")).To(Equal(client.Sign("/api/person")))
			Expect(client.Sign("/api/person")).NotTo(Equal(client.Sign("/api/entry")))
		})
	})

	Describe("error taxonomy", func() {
		It("should classify a missing record as not found", func() {
			_, err := client.GetPerson(ctx, "nope")
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryNotFound))
			Expect(apiErr.Status).To(Equal(http.StatusNotFound))
		})

		It("should classify an unreachable backend as a network failure", func() {
			backend.Close()

			_, err := client.ListPersons(ctx)
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryNetwork))
			Expect(apiErr.Status).To(BeZero())
		})

		It("should classify a rejected body as validation", func() {
			err := client.CreatePerson(ctx, person.Person{Name: "No Email"})
			Expect(err).NotTo(HaveOccurred())

			// duplicate email is the backend's validation failure
			id := backend.SeedPerson(person.Person{Email: "dup@example.com", Role: "Alumno"}, "")
			Expect(id).NotTo(BeEmpty())
			err = client.CreatePerson(ctx, person.Person{Email: "dup@example.com"})
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryValidation))
		})

		It("should surface the backend message when the body parses", func() {
			_, err := client.GetPerson(ctx, "missing-id")
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Message).To(Equal("person not found"))
		})

		It("should classify a malformed success body as unknown", func() {
			garbled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("this is not json"))
			}))
			defer garbled.Close()

			c := gateway.NewClient(gateway.Config{
				BaseURL:      garbled.URL,
				SharedSecret: sharedSecret,
			}, testLogger())

			_, err := c.ListPersons(ctx)
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryUnknown))
		})

		It("should classify a 5xx as a server failure", func() {
			broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer broken.Close()

			c := gateway.NewClient(gateway.Config{
				BaseURL:      broken.URL,
				SharedSecret: sharedSecret,
			}, testLogger())

			_, err := c.ListPersons(ctx)
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryServer))
		})
	})

	Describe("partial updates", func() {
		It("should merge the patch over the current record and keep untouched fields", func() {
			id := backend.SeedPerson(person.Person{
				Name:    "Ana",
				Surname: "Pérez",
				Email:   "ana@example.com",
				Role:    "Alumno",
			}, "")

			err := client.UpdatePerson(ctx, id, map[string]interface{}{"role": "Profesor"})
			Expect(err).NotTo(HaveOccurred())

			got, err := client.GetPerson(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Role).To(Equal("Profesor"))
			Expect(got.Name).To(Equal("Ana"))
			Expect(got.Surname).To(Equal("Pérez"))
			Expect(got.Email).To(Equal("ana@example.com"))
		})

		It("should let the last write win on the patched field", func() {
			id := backend.SeedPerson(person.Person{Email: "b@example.com", Name: "Before", Role: "Alumno"}, "")

			Expect(client.UpdatePerson(ctx, id, map[string]interface{}{"name": "Middle"})).To(Succeed())
			Expect(client.UpdatePerson(ctx, id, map[string]interface{}{"name": "After"})).To(Succeed())

			got, err := client.GetPerson(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("After"))
		})

		It("should fail the merge when the record does not exist", func() {
			err := client.UpdatePerson(ctx, "ghost", map[string]interface{}{"name": "X"})
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryNotFound))
		})
	})

	Describe("permissions", func() {
		It("should treat a missing permission record as the all-false set", func() {
			set, err := client.GetPermissionByPerson(ctx, "p-has-none")
			Expect(err).NotTo(HaveOccurred())
			Expect(set.PersonID).To(Equal("p-has-none"))
			Expect(set.Dashboard).To(BeFalse())
			Expect(set.AdminPanel).To(BeFalse())
		})

		It("should fetch an existing record by person", func() {
			backend.SeedPermissions(permission.Set{
				PersonID:       "p-1",
				Dashboard:      true,
				ViewOwnHistory: true,
			})

			set, err := client.GetPermissionByPerson(ctx, "p-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Dashboard).To(BeTrue())
			Expect(set.ViewOwnHistory).To(BeTrue())
			Expect(set.ViewOthersHistory).To(BeFalse())
		})
	})

	Describe("entries", func() {
		It("should filter by date and person", func() {
			morning := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
			backend.SeedEntry(entry.Entry{PersonID: "p-1", Instant: morning, Action: entry.ActionEntry})
			backend.SeedEntry(entry.Entry{PersonID: "p-2", Instant: morning.Add(time.Hour), Action: entry.ActionEntry})
			backend.SeedEntry(entry.Entry{PersonID: "p-1", Instant: morning.Add(48 * time.Hour), Action: entry.ActionEntry})

			byDate, err := client.EntriesByDate(ctx, "2026-03-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(byDate).To(HaveLen(2))

			byBoth, err := client.EntriesByDateAndPerson(ctx, "2026-03-10", "p-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(byBoth).To(HaveLen(1))
			Expect(byBoth[0].PersonID).To(Equal("p-1"))

			byPerson, err := client.EntriesByPerson(ctx, "p-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(byPerson).To(HaveLen(2))
		})
	})

	Describe("auth operations", func() {
		It("should report ok for valid credentials", func() {
			backend.SeedPerson(person.Person{Email: "ok@example.com", Role: "Alumno"}, "hunter22")

			result, err := client.Login(ctx, "ok@example.com", "hunter22")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OK).To(BeTrue())
		})

		It("should reject bad credentials with an unauthorized category", func() {
			backend.SeedPerson(person.Person{Email: "ok@example.com", Role: "Alumno"}, "hunter22")

			_, err := client.Login(ctx, "ok@example.com", "wrong")
			apiErr, ok := internal.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Category).To(Equal(internal.CategoryUnauthorized))
		})

		It("should return the person on a known federated id", func() {
			backend.SeedPerson(person.Person{
				Email:    "fed@example.com",
				GoogleID: "google-123",
				Role:     "Profesor",
			}, "")

			result, err := client.LoginWithGoogle(ctx, "google-123", "fed@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OK).To(BeTrue())
			Expect(result.User).NotTo(BeNil())
			Expect(result.User.Email).To(Equal("fed@example.com"))
		})

		It("should answer not-ok for an unknown federated id without failing", func() {
			result, err := client.LoginWithGoogle(ctx, "google-unknown", "x@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OK).To(BeFalse())
			Expect(result.User).To(BeNil())
		})
	})

	Describe("Ping", func() {
		It("should succeed against a live backend", func() {
			Expect(client.Ping(ctx)).To(Succeed())
		})
	})
})
