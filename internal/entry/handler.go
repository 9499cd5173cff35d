package entry

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
	"github.com/The-synnapse-Project/front-end-sub000/internal/transport"
	"github.com/The-synnapse-Project/front-end-sub000/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

// canViewHistory decides whether the viewer may read personID's entries: own
// history needs view_own_history, anyone else's needs view_others_history.
func canViewHistory(sess *session.Session, personID string) bool {
	if sess.Permissions == nil {
		return false
	}
	if personID == sess.ID {
		return sess.Permissions.ViewOwnHistory
	}
	return sess.Permissions.ViewOthersHistory
}

// ByDate handles GET /entries/by-date/{date}.
func (h *Handler) ByDate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if sess.Permissions == nil || !sess.Permissions.ViewOthersHistory {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	date := chi.URLParam(r, "date")
	if !ValidDate(date) {
		h.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.ByDate(r.Context(), date))
}

// ByPerson handles GET /entries/by-person/{personId}.
func (h *Handler) ByPerson(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	personID := chi.URLParam(r, "personId")
	if !canViewHistory(sess, personID) {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.ByPerson(r.Context(), personID))
}

// ByDateAndPerson handles GET /entries/by-date/{date}/{personId}.
func (h *Handler) ByDateAndPerson(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	date := chi.URLParam(r, "date")
	personID := chi.URLParam(r, "personId")
	if !ValidDate(date) {
		h.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}
	if !canViewHistory(sess, personID) {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.ByDateAndPerson(r.Context(), date, personID))
}

// Mark handles POST /entries: record an Entry/Exit event. Marking for
// another person requires view_others_history (teachers marking their
// class), marking for yourself is always allowed.
func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto MarkEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if dto.PersonID != sess.ID {
		if sess.Permissions == nil || !sess.Permissions.ViewOthersHistory {
			h.WriteError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
	}

	if err := h.Service.Mark(r.Context(), dto.PersonID, entry.Action(dto.Action), dto.Instant); err != nil {
		h.Logger.Error("entry mark failed", "person_id", dto.PersonID, "error", err)
		h.WriteGatewayError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// Update handles PATCH /entries/{id}. Admin surface.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto UpdateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := dto.Patch()
	if len(patch) == 0 {
		h.WriteError(w, http.StatusBadRequest, "empty patch")
		return
	}

	if err := h.Service.Update(r.Context(), id, patch); err != nil {
		h.Logger.Error("entry update failed", "entry_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete handles DELETE /entries/{id}. Admin surface.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("entry delete failed", "entry_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DailyReport handles GET /reports/daily/{date}.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if sess.Permissions == nil || !sess.Permissions.ViewOthersHistory {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	date := chi.URLParam(r, "date")
	if !ValidDate(date) {
		h.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.DailyReport(r.Context(), date))
}
