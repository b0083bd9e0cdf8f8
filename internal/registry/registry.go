package registry

import (
	"log/slog"
	"sync"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Registry is the set of currently connected players.
// A single RWMutex guards the join-ordered player list, the id index and the
// monitored cell. Callers that also lock a player must take the registry
// lock first.
type Registry struct {
	logger *slog.Logger

	mu        sync.RWMutex
	players   []*model.Player
	byID      map[model.PlayerID]int // index into players
	monitored model.PlayerID         // "" when nobody is monitored
}

// New creates an empty registry
func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With(slog.String("component", "registry")),
		byID:   make(map[model.PlayerID]int),
	}
}

// FindByID returns the live player with the given id
func (r *Registry) FindByID(id model.PlayerID) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.findByIDLocked(id)
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}
	return p, nil
}

// FindByDisplayName returns the first player, in join order, with the given
// display name
func (r *Registry) FindByDisplayName(name string) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.findByNameLocked(name)
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}
	return p, nil
}

// All returns the live player handles in join order.
// The returned slice is a copy; the players are not.
func (r *Registry) All() []*model.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Player, len(r.players))
	copy(out, r.players)
	return out
}

// Len returns the number of connected players
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Snapshot copies every player's state under a single read lock, with the
// monitored flag filled in
func (r *Registry) Snapshot() []model.PlayerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PlayerState, 0, len(r.players))
	for _, p := range r.players {
		st := p.State()
		st.Monitored = r.monitored != "" && p.ID == r.monitored
		out = append(out, st)
	}
	return out
}

// IsMonitored reports whether the player with the given id is the one
// currently being monitored
func (r *Registry) IsMonitored(id model.PlayerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.monitored != "" && r.monitored == id
}

// Add inserts a newly connected player. If a player with the same id is
// already present it is replaced in place and the previous handle returned,
// so the caller can close the stale connection. The replacement keeps the
// join position, and if that id was being monitored it stays monitored.
func (r *Registry) Add(p *model.Player) (*model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byID[p.ID]; ok {
		prev := r.players[idx]
		r.players[idx] = p
		r.logger.Info("player reconnected",
			slog.String("player_id", string(p.ID)),
			slog.String("display_name", p.DisplayName),
		)
		return prev, true
	}

	r.byID[p.ID] = len(r.players)
	r.players = append(r.players, p)
	r.logger.Info("player joined",
		slog.String("player_id", string(p.ID)),
		slog.String("display_name", p.DisplayName),
		slog.Int("player_count", len(r.players)),
	)
	return nil, false
}

// Remove deletes the player with the given id. If that player was being
// monitored, monitoring is cleared in the same critical section.
func (r *Registry) Remove(id model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return false
	}
	r.removeLocked(idx)
	return true
}

// Detach removes p only if it is still the registered entry for its id.
// A connection that has been replaced by a reconnect must not remove the
// newer player when it shuts down.
func (r *Registry) Detach(p *model.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[p.ID]
	if !ok || r.players[idx] != p {
		return false
	}
	r.removeLocked(idx)
	return true
}

func (r *Registry) removeLocked(idx int) {
	p := r.players[idx]

	copy(r.players[idx:], r.players[idx+1:])
	r.players[len(r.players)-1] = nil
	r.players = r.players[:len(r.players)-1]

	delete(r.byID, p.ID)
	for i := idx; i < len(r.players); i++ {
		r.byID[r.players[i].ID] = i
	}

	if r.monitored == p.ID {
		r.monitored = ""
	}

	r.logger.Info("player left",
		slog.String("player_id", string(p.ID)),
		slog.Int("player_count", len(r.players)),
	)
}

func (r *Registry) findByIDLocked(id model.PlayerID) *model.Player {
	idx, ok := r.byID[id]
	if !ok {
		return nil
	}
	return r.players[idx]
}

func (r *Registry) findByNameLocked(name string) *model.Player {
	for _, p := range r.players {
		if p.DisplayName == name {
			return p
		}
	}
	return nil
}
