package notify

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/The-synnapse-Project/front-end-sub000/internal/transport"
	"github.com/The-synnapse-Project/front-end-sub000/pkg/logger"
)

// Handler streams change events to the client as server-sent events. Clients
// surface a dropped connection as a dismissible toast and reconnect; nothing
// here blocks on their behalf.
type Handler struct {
	*transport.BaseHandler
	relay *Relay
}

func NewHandler(relay *Relay) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		relay:       relay,
	}
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.relay.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.Logger.Error("failed to encode change event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
