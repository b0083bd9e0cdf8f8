package registry

import (
	"log/slog"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// SetSpectate records that observer is watching target and makes target the
// single monitored player. Both players must be connected. The observer's
// display name is only used for logging; the registry's own name for the
// observer is authoritative.
func (r *Registry) SetSpectate(observerID model.PlayerID, observerDisplayName string, targetID model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	observer := r.findByIDLocked(observerID)
	if observer == nil {
		return model.ErrPlayerNotFound
	}
	target := r.findByIDLocked(targetID)
	if target == nil {
		return model.ErrPlayerNotFound
	}

	if observerDisplayName != "" && observerDisplayName != observer.DisplayName {
		r.logger.Warn("spectate request display name mismatch",
			slog.String("observer_id", string(observerID)),
			slog.String("claimed_name", observerDisplayName),
			slog.String("registered_name", observer.DisplayName),
		)
	}

	previous := r.monitored
	r.monitored = target.ID
	observer.SetSpectating(target.DisplayName)

	r.logger.Info("spectate target set",
		slog.String("observer_id", string(observerID)),
		slog.String("target_id", string(targetID)),
		slog.String("previous_monitored", string(previous)),
	)
	return nil
}

// GetMonitored returns the player currently being monitored, if any
func (r *Registry) GetMonitored() (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.monitored == "" {
		return nil, false
	}
	p := r.findByIDLocked(r.monitored)
	return p, p != nil
}

// Spectated returns the player watched by the first observer, in join order,
// that has a spectating target. The target is resolved by display name.
func (r *Registry) Spectated() (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		name := p.Spectating()
		if name == "" {
			continue
		}
		if target := r.findByNameLocked(name); target != nil {
			return target, true
		}
		return nil, false
	}
	return nil, false
}
