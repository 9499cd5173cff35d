package entry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	entrydm "github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
	permdm "github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
	entryhandler "github.com/The-synnapse-Project/front-end-sub000/internal/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
)

var _ = Describe("Entry Handler", func() {
	var (
		backend *MockBackend
		handler *entryhandler.Handler
		router  *chi.Mux
	)

	withSession := func(req *http.Request, sess *session.Session) *http.Request {
		return req.WithContext(session.ContextWithSession(req.Context(), sess))
	}

	student := func(id string) *session.Session {
		return &session.Session{
			ID:       id,
			APIToken: id,
			Role:     "Alumno",
			Permissions: &permdm.Set{
				PersonID:       id,
				Dashboard:      true,
				ViewOwnHistory: true,
			},
		}
	}

	teacher := func(id string) *session.Session {
		return &session.Session{
			ID:       id,
			APIToken: id,
			Role:     "Profesor",
			Permissions: &permdm.Set{
				PersonID:          id,
				Dashboard:         true,
				ViewOwnHistory:    true,
				ViewOthersHistory: true,
			},
		}
	}

	BeforeEach(func() {
		backend = &MockBackend{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = entryhandler.NewHandler(entryhandler.NewService(backend, events.NewBus(lg), lg))

		router = chi.NewRouter()
		router.Get("/entries/by-person/{personId}", handler.ByPerson)
		router.Get("/entries/by-date/{date}", handler.ByDate)
		router.Get("/entries/by-date/{date}/{personId}", handler.ByDateAndPerson)
		router.Post("/entries", handler.Mark)
		router.Get("/reports/daily/{date}", handler.DailyReport)
	})

	Describe("history visibility", func() {
		It("should let a student read their own history", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/entries/by-person/p-1", nil), student("p-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should forbid a student from reading someone else's history", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/entries/by-person/p-2", nil), student("p-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should let a teacher read anyone's history", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/entries/by-person/p-2", nil), teacher("t-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should forbid the day listing without the others-history flag", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/entries/by-date/2026-03-10", nil), student("p-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should reject a malformed date", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/entries/by-date/not-a-date", nil), teacher("t-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should answer 401 without a session", func() {
			req := httptest.NewRequest(http.MethodGet, "/entries/by-person/p-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Mark", func() {
		post := func(sess *session.Session, dto entryhandler.MarkEntryDTO) *httptest.ResponseRecorder {
			payload, err := json.Marshal(dto)
			Expect(err).NotTo(HaveOccurred())
			req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(payload))
			if sess != nil {
				req = withSession(req, sess)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("should let anyone mark their own attendance", func() {
			rec := post(student("p-1"), entryhandler.MarkEntryDTO{PersonID: "p-1", Action: "Entry"})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(backend.entries).To(HaveLen(1))
		})

		It("should forbid marking someone else without the others-history flag", func() {
			rec := post(student("p-1"), entryhandler.MarkEntryDTO{PersonID: "p-2", Action: "Entry"})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should let a teacher mark a student", func() {
			at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
			rec := post(teacher("t-1"), entryhandler.MarkEntryDTO{PersonID: "p-2", Action: "Exit", Instant: at})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(backend.entries[0].Instant).To(Equal(at))
		})

		It("should reject an unknown action", func() {
			rec := post(student("p-1"), entryhandler.MarkEntryDTO{PersonID: "p-1", Action: "Lunch"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DailyReport", func() {
		It("should require the others-history flag", func() {
			req := withSession(httptest.NewRequest(http.MethodGet, "/reports/daily/2026-03-10", nil), student("p-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should answer rows for a privileged viewer", func() {
			day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
			backend.CreateEntry(context.Background(), entrydm.Entry{PersonID: "p-1", Instant: day, Action: entrydm.ActionEntry})

			req := withSession(httptest.NewRequest(http.MethodGet, "/reports/daily/2026-03-10", nil), teacher("t-1"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var rows []entryhandler.ReportRow
			Expect(json.Unmarshal(rec.Body.Bytes(), &rows)).To(Succeed())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].PersonID).To(Equal("p-1"))
		})
	})
})
