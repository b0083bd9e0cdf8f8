package handler

import (
	"net/http"

	"github.com/nohumanman/descenders-modding/internal/api/request"
	"github.com/nohumanman/descenders-modding/internal/api/response"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/registry"
)

// SpectateHandler handles the monitoring endpoints
type SpectateHandler struct {
	registry *registry.Registry
}

// NewSpectateHandler creates a new spectate handler
func NewSpectateHandler(reg *registry.Registry) *SpectateHandler {
	return &SpectateHandler{registry: reg}
}

// Spectate handles POST /api/v1/spectate
func (h *SpectateHandler) Spectate(w http.ResponseWriter, r *http.Request) {
	var req request.SpectateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ObserverID == "" {
		WriteError(w, NewInvalidRequestError("observer_id is required"))
		return
	}
	if req.TargetID == "" {
		WriteError(w, NewInvalidRequestError("target_id is required"))
		return
	}

	err := h.registry.SetSpectate(model.PlayerID(req.ObserverID), req.ObserverName, model.PlayerID(req.TargetID))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeMonitored(w)
}

// Monitored handles GET /api/v1/monitored
func (h *SpectateHandler) Monitored(w http.ResponseWriter, r *http.Request) {
	h.writeMonitored(w)
}

// Spectated handles GET /api/v1/spectated
func (h *SpectateHandler) Spectated(w http.ResponseWriter, r *http.Request) {
	player, ok := h.registry.Spectated()
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	st := player.State()
	st.Monitored = h.registry.IsMonitored(player.ID)
	response.OK(w, response.PlayerFromState(st))
}

func (h *SpectateHandler) writeMonitored(w http.ResponseWriter) {
	player, ok := h.registry.GetMonitored()
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	st := player.State()
	st.Monitored = true
	response.OK(w, response.PlayerFromState(st))
}
