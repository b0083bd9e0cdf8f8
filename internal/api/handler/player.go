package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nohumanman/descenders-modding/internal/api/request"
	"github.com/nohumanman/descenders-modding/internal/api/response"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/registry"
)

// CommandSender forwards orders to connected game clients
type CommandSender interface {
	Send(ctx context.Context, playerID model.PlayerID, order string) error
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	registry *registry.Registry
	commands CommandSender
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(reg *registry.Registry, commands CommandSender) *PlayerHandler {
	return &PlayerHandler{
		registry: reg,
		commands: commands,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.PlayersFromStates(h.registry.Snapshot()))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.registry.FindByID(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	st := player.State()
	st.Monitored = h.registry.IsMonitored(id)
	response.OK(w, response.PlayerFromState(st))
}

// Command handles POST /api/v1/players/{id}/command
func (h *PlayerHandler) Command(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.CommandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Order) == "" {
		WriteError(w, NewInvalidRequestError("order is required"))
		return
	}

	if err := h.commands.Send(r.Context(), id, req.Order); err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.StatusResponse{Status: "sent"})
}
