package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nohumanman/descenders-modding/internal/api/request"
	"github.com/nohumanman/descenders-modding/internal/api/response"
	"github.com/nohumanman/descenders-modding/internal/model"
)

// TimeModerator reads and moderates recorded runs
type TimeModerator interface {
	Get(ctx context.Context, id model.TimeID) (*model.TimeRecord, error)
	Verify(ctx context.Context, id model.TimeID) (*model.TimeRecord, error)
	SetIgnored(ctx context.Context, id model.TimeID, ignored bool) (*model.TimeRecord, error)
	Leaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error)
	Recent(ctx context.Context, limit int) ([]model.TimeRecord, error)
	Trails(ctx context.Context) ([]string, error)
	Worlds(ctx context.Context) ([]string, error)
}

// TimeHandler handles time record endpoints
type TimeHandler struct {
	records TimeModerator
}

// NewTimeHandler creates a new time handler
func NewTimeHandler(records TimeModerator) *TimeHandler {
	return &TimeHandler{records: records}
}

// Get handles GET /api/v1/times/{id}
func (h *TimeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.Get(r.Context(), model.TimeID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.TimeRecordFromModel(rec))
}

// Verify handles POST /api/v1/times/{id}/verify
func (h *TimeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.Verify(r.Context(), model.TimeID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.TimeRecordFromModel(rec))
}

// Ignore handles POST /api/v1/times/{id}/ignore
func (h *TimeHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	var req request.IgnoreTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Ignored == nil {
		WriteError(w, NewInvalidRequestError("ignored is required"))
		return
	}

	rec, err := h.records.SetIgnored(r.Context(), model.TimeID(mux.Vars(r)["id"]), *req.Ignored)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.TimeRecordFromModel(rec))
}

// Leaderboard handles GET /api/v1/leaderboard/{trail}
func (h *TimeHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	trail := mux.Vars(r)["trail"]
	recs, err := h.records.Leaderboard(r.Context(), trail, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.LeaderboardResponse{
		Trail: trail,
		Times: response.TimeRecordsFromModel(recs),
	})
}

// Recent handles GET /api/v1/times
func (h *TimeHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	recs, err := h.records.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.TimesResponse{Times: response.TimeRecordsFromModel(recs)})
}

// Trails handles GET /api/v1/trails
func (h *TimeHandler) Trails(w http.ResponseWriter, r *http.Request) {
	trails, err := h.records.Trails(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.TrailsResponse{Trails: trails})
}

// Worlds handles GET /api/v1/worlds
func (h *TimeHandler) Worlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := h.records.Worlds(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.WorldsResponse{Worlds: worlds})
}

// parseLimit reads the optional ?limit= query parameter. Zero means the
// service default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
		return 0, false
	}
	return limit, true
}
