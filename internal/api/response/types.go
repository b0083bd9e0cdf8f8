package response

import (
	"sort"
	"time"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Trail represents one trail's progress in API responses
type Trail struct {
	Name          string    `json:"name"`
	Started       bool      `json:"started"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	StartingSpeed float64   `json:"starting_speed"`
	LastTime      float64   `json:"last_time"`
}

// Player represents a connected player in API responses
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Spectating  string    `json:"spectating"`
	Monitored   bool      `json:"monitored"`
	BikeType    string    `json:"bike_type"`
	Reputation  int       `json:"reputation"`
	WorldName   string    `json:"world_name"`
	LastTrick   string    `json:"last_trick"`
	Version     string    `json:"version"`
	Trails      []Trail   `json:"trails"`
	ConnectedAt time.Time `json:"connected_at"`
}

// PlayerFromState converts a model.PlayerState to a response Player
func PlayerFromState(st model.PlayerState) Player {
	trails := make([]Trail, 0, len(st.Trails))
	for name, t := range st.Trails {
		trails = append(trails, Trail{
			Name:          name,
			Started:       t.Started,
			StartedAt:     t.StartedAt,
			StartingSpeed: t.StartingSpeed,
			LastTime:      t.LastTime,
		})
	}
	sort.Slice(trails, func(i, j int) bool { return trails[i].Name < trails[j].Name })
	return Player{
		ID:          string(st.ID),
		Name:        st.DisplayName,
		Spectating:  st.Spectating,
		Monitored:   st.Monitored,
		BikeType:    string(st.BikeType),
		Reputation:  st.Reputation,
		WorldName:   st.WorldName,
		LastTrick:   st.LastTrick,
		Version:     st.Version,
		Trails:      trails,
		ConnectedAt: st.ConnectedAt,
	}
}

// PlayersResponse lists connected players
type PlayersResponse struct {
	Players []Player `json:"players"`
}

// PlayersFromStates converts a registry snapshot
func PlayersFromStates(states []model.PlayerState) PlayersResponse {
	players := make([]Player, len(states))
	for i, st := range states {
		players[i] = PlayerFromState(st)
	}
	return PlayersResponse{Players: players}
}

// PermissionResponse reports the caller's verdict
type PermissionResponse struct {
	Permission model.Verdict `json:"permission"`
}

// TimeRecord represents a recorded run in API responses
type TimeRecord struct {
	ID            string     `json:"id"`
	PlayerID      string     `json:"player_id"`
	PlayerName    string     `json:"player_name"`
	TrailName     string     `json:"trail_name"`
	WorldName     string     `json:"world_name"`
	TotalTime     float64    `json:"total_time"`
	BikeType      string     `json:"bike_type"`
	StartingSpeed float64    `json:"starting_speed"`
	Version       string     `json:"version"`
	Ignored       bool       `json:"ignored"`
	Verified      bool       `json:"verified"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

// TimeRecordFromModel converts a model.TimeRecord to a response TimeRecord
func TimeRecordFromModel(rec *model.TimeRecord) TimeRecord {
	out := TimeRecord{
		ID:            string(rec.ID),
		PlayerID:      string(rec.PlayerID),
		PlayerName:    rec.PlayerName,
		TrailName:     rec.TrailName,
		WorldName:     rec.WorldName,
		TotalTime:     rec.TotalTime,
		BikeType:      string(rec.BikeType),
		StartingSpeed: rec.StartingSpeed,
		Version:       rec.Version,
		Ignored:       rec.Ignored,
		Verified:      rec.Verified,
		SubmittedAt:   rec.SubmittedAt,
	}
	if !rec.VerifiedAt.IsZero() {
		at := rec.VerifiedAt
		out.VerifiedAt = &at
	}
	return out
}

// TimeRecordsFromModel converts a list of runs, never returning nil
func TimeRecordsFromModel(recs []model.TimeRecord) []TimeRecord {
	out := make([]TimeRecord, len(recs))
	for i := range recs {
		out[i] = TimeRecordFromModel(&recs[i])
	}
	return out
}

// LeaderboardResponse ranks the best runs on one trail
type LeaderboardResponse struct {
	Trail string       `json:"trail"`
	Times []TimeRecord `json:"times"`
}

// TimesResponse lists runs
type TimesResponse struct {
	Times []TimeRecord `json:"times"`
}

// TrailsResponse lists trail names
type TrailsResponse struct {
	Trails []string `json:"trails"`
}

// WorldsResponse lists world names
type WorldsResponse struct {
	Worlds []string `json:"worlds"`
}

// MeResponse describes the logged-in operator
type MeResponse struct {
	ID         string        `json:"id"`
	Username   string        `json:"username,omitempty"`
	Email      string        `json:"email,omitempty"`
	SteamID    string        `json:"steam_id,omitempty"`
	Permission model.Verdict `json:"permission"`
}

// StatusResponse is a generic acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}
