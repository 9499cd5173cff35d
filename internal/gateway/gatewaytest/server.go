// Package gatewaytest runs an in-memory stand-in for the attendance backend.
// Tests point a gateway.Client at Server.URL() and get the real wire contract:
// signed requests, the {status, message} envelope and full-replacement PUTs.
package gatewaytest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
)

type PersonModel struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Surname  string `gorm:"column:surname" json:"surname"`
	Email    string `gorm:"column:email;uniqueIndex" json:"email"`
	Role     string `gorm:"column:role" json:"role"`
	GoogleID string `gorm:"column:google_id" json:"google_id,omitempty"`
	Password string `gorm:"column:password" json:"-"`
}

func (PersonModel) TableName() string { return "persons" }

type PermissionModel struct {
	ID                string `gorm:"primaryKey" json:"id"`
	PersonID          string `gorm:"column:person_id;uniqueIndex" json:"person_id"`
	Dashboard         bool   `gorm:"column:dashboard" json:"dashboard"`
	ViewOwnHistory    bool   `gorm:"column:view_own_history" json:"view_own_history"`
	ViewOthersHistory bool   `gorm:"column:view_others_history" json:"view_others_history"`
	AdminPanel        bool   `gorm:"column:admin_panel" json:"admin_panel"`
	EditPermissions   bool   `gorm:"column:edit_permissions" json:"edit_permissions"`
}

func (PermissionModel) TableName() string { return "permissions" }

type EntryModel struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	PersonID string    `gorm:"column:person_id;index" json:"person_id"`
	Instant  time.Time `gorm:"column:instant" json:"instant"`
	Action   string    `gorm:"column:action" json:"action"`
}

func (EntryModel) TableName() string { return "entries" }

type Server struct {
	DB     *gorm.DB
	secret string
	http   *httptest.Server
}

func New(secret string) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PersonModel{}, &PermissionModel{}, &EntryModel{}); err != nil {
		return nil, err
	}

	s := &Server{DB: db, secret: secret}
	router := chi.NewRouter()
	router.Use(s.checkSignature)
	s.routes(router)
	s.http = httptest.NewServer(router)
	return s, nil
}

func (s *Server) URL() string { return s.http.URL }

func (s *Server) Close() { s.http.Close() }

// checkSignature enforces the per-request HMAC over the URL path.
func (s *Server) checkSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mac := hmac.New(sha256.New, []byte(s.secret))
		mac.Write([]byte(r.URL.Path))
		want := hex.EncodeToString(mac.Sum(nil))
		if r.Header.Get("X-Syn-Api-Key") != want {
			writeEnvelope(w, http.StatusUnauthorized, "error", "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes(r chi.Router) {
	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", "")
	})

	r.Route("/api/person", func(pr chi.Router) {
		pr.Get("/", s.listPersons)
		pr.Post("/", s.createPerson)
		pr.Get("/{id}", s.getPerson)
		pr.Put("/{id}", s.putPerson)
		pr.Delete("/{id}", s.deletePerson)
	})

	r.Route("/api/permission", func(pr chi.Router) {
		pr.Get("/", s.listPermissions)
		pr.Post("/", s.createPermission)
		pr.Get("/{id}", s.getPermission)
		pr.Put("/{id}", s.putPermission)
		pr.Get("/by-person/{personId}", s.permissionByPerson)
	})

	r.Route("/api/entry", func(er chi.Router) {
		er.Get("/", s.listEntries)
		er.Post("/", s.createEntry)
		er.Get("/{id}", s.getEntry)
		er.Put("/{id}", s.putEntry)
		er.Delete("/{id}", s.deleteEntry)
		er.Get("/by-person/{personId}", s.entriesByPerson)
		er.Get("/by-date/{date}", s.entriesByDate)
		er.Get("/by-date/{date}/{personId}", s.entriesByDateAndPerson)
	})

	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/login", s.login)
		ar.Post("/register", s.register)
		ar.Post("/change-password", s.changePassword)
		ar.Post("/google-login", s.googleLogin)
		ar.Post("/google-register", s.googleRegister)
		ar.Post("/update-google-id", s.updateGoogleID)
	})
}

// ---- seeding helpers ----

// SeedPerson stores a person, returning its id. Password is kept in the clear;
// this is a test double, not a backend.
func (s *Server) SeedPerson(p person.Person, password string) string {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.DB.Create(&PersonModel{
		ID:       p.ID,
		Name:     p.Name,
		Surname:  p.Surname,
		Email:    p.Email,
		Role:     p.Role,
		GoogleID: p.GoogleID,
		Password: password,
	})
	return p.ID
}

func (s *Server) SeedPermissions(set permission.Set) string {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	s.DB.Create(&PermissionModel{
		ID:                set.ID,
		PersonID:          set.PersonID,
		Dashboard:         set.Dashboard,
		ViewOwnHistory:    set.ViewOwnHistory,
		ViewOthersHistory: set.ViewOthersHistory,
		AdminPanel:        set.AdminPanel,
		EditPermissions:   set.EditPermissions,
	})
	return set.ID
}

func (s *Server) SeedEntry(e entry.Entry) string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.DB.Create(&EntryModel{
		ID:       e.ID,
		PersonID: e.PersonID,
		Instant:  e.Instant,
		Action:   string(e.Action),
	})
	return e.ID
}

// ---- person handlers ----

func (s *Server) listPersons(w http.ResponseWriter, _ *http.Request) {
	var persons []PersonModel
	s.DB.Find(&persons)
	writeJSON(w, http.StatusOK, persons)
}

func (s *Server) getPerson(w http.ResponseWriter, r *http.Request) {
	var p PersonModel
	if err := s.DB.First(&p, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "person not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPerson(w http.ResponseWriter, r *http.Request) {
	var p PersonModel
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.DB.Create(&p).Error; err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", "")
}

// putPerson is full replacement, like the real backend.
func (s *Server) putPerson(w http.ResponseWriter, r *http.Request) {
	var existing PersonModel
	if err := s.DB.First(&existing, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "person not found")
		return
	}
	var p PersonModel
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	p.ID = existing.ID
	p.Password = existing.Password
	s.DB.Save(&p)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	s.DB.Delete(&PersonModel{}, "id = ?", chi.URLParam(r, "id"))
	writeEnvelope(w, http.StatusOK, "ok", "")
}

// ---- permission handlers ----

func (s *Server) listPermissions(w http.ResponseWriter, _ *http.Request) {
	var sets []PermissionModel
	s.DB.Find(&sets)
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) getPermission(w http.ResponseWriter, r *http.Request) {
	var set PermissionModel
	if err := s.DB.First(&set, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "permission not found")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) permissionByPerson(w http.ResponseWriter, r *http.Request) {
	var set PermissionModel
	if err := s.DB.First(&set, "person_id = ?", chi.URLParam(r, "personId")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "permission not found")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) createPermission(w http.ResponseWriter, r *http.Request) {
	var set PermissionModel
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if err := s.DB.Create(&set).Error; err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) putPermission(w http.ResponseWriter, r *http.Request) {
	var existing PermissionModel
	if err := s.DB.First(&existing, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "permission not found")
		return
	}
	var set PermissionModel
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	set.ID = existing.ID
	s.DB.Save(&set)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

// ---- entry handlers ----

func (s *Server) listEntries(w http.ResponseWriter, _ *http.Request) {
	var entries []EntryModel
	s.DB.Find(&entries)
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	var e EntryModel
	if err := s.DB.First(&e, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var e EntryModel
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.DB.Create(&e).Error; err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) putEntry(w http.ResponseWriter, r *http.Request) {
	var existing EntryModel
	if err := s.DB.First(&existing, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "entry not found")
		return
	}
	var e EntryModel
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	e.ID = existing.ID
	s.DB.Save(&e)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	s.DB.Delete(&EntryModel{}, "id = ?", chi.URLParam(r, "id"))
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) entriesByPerson(w http.ResponseWriter, r *http.Request) {
	var entries []EntryModel
	s.DB.Find(&entries, "person_id = ?", chi.URLParam(r, "personId"))
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) entriesByDate(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dayBounds(chi.URLParam(r, "date"))
	if !ok {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid date")
		return
	}
	var entries []EntryModel
	s.DB.Find(&entries, "instant >= ? AND instant < ?", from, to)
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) entriesByDateAndPerson(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dayBounds(chi.URLParam(r, "date"))
	if !ok {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid date")
		return
	}
	var entries []EntryModel
	s.DB.Find(&entries, "person_id = ? AND instant >= ? AND instant < ?",
		chi.URLParam(r, "personId"), from, to)
	writeJSON(w, http.StatusOK, entries)
}

func dayBounds(date string) (time.Time, time.Time, bool) {
	day, err := time.Parse(entry.DateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return day, day.Add(24 * time.Hour), true
}

// ---- auth handlers ----

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	var p PersonModel
	if err := s.DB.First(&p, "email = ?", req.Email).Error; err != nil || p.Password == "" || p.Password != req.Password {
		writeEnvelope(w, http.StatusUnauthorized, "error", "invalid credentials")
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Surname  string `json:"surname"`
		Email    string `json:"email"`
		Password string `json:"password"`
		GoogleID string `json:"google_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	if req.Email == "" {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "email is required")
		return
	}
	var existing PersonModel
	if err := s.DB.First(&existing, "email = ?", req.Email).Error; err == nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "email already registered")
		return
	}
	p := PersonModel{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Role:     string(person.RoleAlumno),
		GoogleID: req.GoogleID,
		Password: req.Password,
	}
	s.DB.Create(&p)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	var p PersonModel
	if err := s.DB.First(&p, "email = ?", req.Email).Error; err != nil || p.Password != req.OldPassword {
		writeEnvelope(w, http.StatusUnauthorized, "error", "invalid credentials")
		return
	}
	p.Password = req.NewPassword
	s.DB.Save(&p)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleID string `json:"google_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	var p PersonModel
	if err := s.DB.First(&p, "google_id = ? AND google_id != ''", req.GoogleID).Error; err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": "unknown google account",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"user":   p,
	})
}

// googleRegister adopts an existing account by email; it does not create new
// persons, so clients exercise the full first-time registration path.
func (s *Server) googleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleID string `json:"google_id"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	var p PersonModel
	if err := s.DB.First(&p, "email = ?", req.Email).Error; err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": "unknown account",
		})
		return
	}
	p.GoogleID = req.GoogleID
	s.DB.Save(&p)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"user":   p,
	})
}

func (s *Server) updateGoogleID(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonID string `json:"person_id"`
		GoogleID string `json:"google_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusUnprocessableEntity, "error", "invalid body")
		return
	}
	var p PersonModel
	if err := s.DB.First(&p, "id = ?", req.PersonID).Error; err != nil {
		writeEnvelope(w, http.StatusNotFound, "error", "person not found")
		return
	}
	p.GoogleID = req.GoogleID
	s.DB.Save(&p)
	writeEnvelope(w, http.StatusOK, "ok", "")
}

// ---- response helpers ----

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeEnvelope(w http.ResponseWriter, status int, result, message string) {
	writeJSON(w, status, map[string]string{"status": result, "message": message})
}
