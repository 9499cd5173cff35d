package permission

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

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

// List handles GET /permissions. Degrades to an empty list on failure.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.List(r.Context()))
}

// GetByPerson handles GET /permissions/by-person/{personId}.
func (h *Handler) GetByPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")
	set, err := h.Service.GetByPerson(r.Context(), personID)
	if err != nil {
		h.Logger.Warn("permission fetch failed", "person_id", personID, "error", err)
		h.WriteGatewayError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, set)
}

// Update handles PATCH /permissions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto UpdatePermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := dto.Patch()
	if len(patch) == 0 {
		h.WriteError(w, http.StatusBadRequest, "empty patch")
		return
	}

	if err := h.Service.Update(r.Context(), id, patch, dto.SyncRole); err != nil {
		h.Logger.Error("permission update failed", "permission_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
