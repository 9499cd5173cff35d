package person

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

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

// List handles GET /persons. Degrades to an empty list on gateway failure.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.List(r.Context()))
}

// Get handles GET /persons/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Logger.Warn("person fetch failed", "person_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Me handles GET /persons/me: the signed-in user's own record.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.Service.Get(r.Context(), sess.ID)
	if err != nil {
		h.Logger.Warn("own person fetch failed", "person_id", sess.ID, "error", err)
		h.WriteGatewayError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Update handles PATCH /persons/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto UpdatePersonDTO
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
		h.Logger.Error("person update failed", "person_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete handles DELETE /persons/{id}. Administrative only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Error("person delete failed", "person_id", id, "error", err)
		h.WriteGatewayError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
