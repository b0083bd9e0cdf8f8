package model

import (
	"context"
	"sync"
	"time"
)

// PlayerID is the stable platform account id of a connected player
type PlayerID string

// BikeType is the bike class a player is currently riding
type BikeType string

const (
	BikeUnknown  BikeType = ""
	BikeEnduro   BikeType = "enduro"
	BikeDownhill BikeType = "downhill"
	BikeHardtail BikeType = "hardtail"
)

// BikeTypeFromCode maps the digit used by the SET_BIKE command to a bike type
func BikeTypeFromCode(code string) (BikeType, bool) {
	switch code {
	case "0":
		return BikeEnduro, true
	case "1":
		return BikeDownhill, true
	case "2":
		return BikeHardtail, true
	default:
		return BikeUnknown, false
	}
}

// ParseBikeType parses a bike type name reported by the game client
func ParseBikeType(s string) (BikeType, bool) {
	switch BikeType(s) {
	case BikeEnduro, BikeDownhill, BikeHardtail:
		return BikeType(s), true
	default:
		return BikeUnknown, false
	}
}

// Conn is the outbound half of a player's live game connection
type Conn interface {
	Send(ctx context.Context, message string) error
}

// TrailProgress tracks a player's most recent run on one trail
type TrailProgress struct {
	Started       bool
	StartedAt     time.Time
	StartingSpeed float64
	LastTime      float64 // seconds, zero until the first finish
}

// Player is a connected session participant.
// ID and DisplayName are fixed for the lifetime of the connection; the
// remaining attributes change with gameplay events and are guarded by mu.
type Player struct {
	ID          PlayerID
	DisplayName string
	Conn        Conn
	ConnectedAt time.Time

	mu         sync.RWMutex
	spectating string // display name of the player this player observes
	bikeType   BikeType
	reputation int
	worldName  string
	lastTrick  string
	version    string
	trails     map[string]TrailProgress
}

// NewPlayer creates a player for a freshly connected session
func NewPlayer(id PlayerID, displayName string, conn Conn, connectedAt time.Time) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
		Conn:        conn,
		ConnectedAt: connectedAt,
		trails:      make(map[string]TrailProgress),
	}
}

// PlayerState is a point-in-time copy of a player, safe to hand out
type PlayerState struct {
	ID          PlayerID
	DisplayName string
	Spectating  string
	Monitored   bool
	BikeType    BikeType
	Reputation  int
	WorldName   string
	LastTrick   string
	Version     string
	Trails      map[string]TrailProgress
	ConnectedAt time.Time
}

// State copies the player's current attributes. Monitored is left false;
// only the registry knows who is monitored.
func (p *Player) State() PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	trails := make(map[string]TrailProgress, len(p.trails))
	for name, t := range p.trails {
		trails[name] = t
	}

	return PlayerState{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Spectating:  p.spectating,
		BikeType:    p.bikeType,
		Reputation:  p.reputation,
		WorldName:   p.worldName,
		LastTrick:   p.lastTrick,
		Version:     p.version,
		Trails:      trails,
		ConnectedAt: p.ConnectedAt,
	}
}

// Spectating returns the display name this player observes, or ""
func (p *Player) Spectating() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.spectating
}

// SetSpectating records the display name this player observes.
// Only the registry's spectate transition should call this.
func (p *Player) SetSpectating(name string) {
	p.mu.Lock()
	p.spectating = name
	p.mu.Unlock()
}

func (p *Player) BikeType() BikeType {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bikeType
}

func (p *Player) SetBikeType(b BikeType) {
	p.mu.Lock()
	p.bikeType = b
	p.mu.Unlock()
}

func (p *Player) SetReputation(rep int) {
	p.mu.Lock()
	p.reputation = rep
	p.mu.Unlock()
}

func (p *Player) SetWorldName(name string) {
	p.mu.Lock()
	p.worldName = name
	p.mu.Unlock()
}

func (p *Player) SetLastTrick(trick string) {
	p.mu.Lock()
	p.lastTrick = trick
	p.mu.Unlock()
}

func (p *Player) SetVersion(version string) {
	p.mu.Lock()
	p.version = version
	p.mu.Unlock()
}

// StartTrail marks a run as started on the given trail
func (p *Player) StartTrail(trail string, at time.Time, startingSpeed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trails == nil {
		p.trails = make(map[string]TrailProgress)
	}
	t := p.trails[trail]
	t.Started = true
	t.StartedAt = at
	t.StartingSpeed = startingSpeed
	p.trails[trail] = t
}

// FinishTrail records the result of a run and returns the progress as it was
// when the run started (zero value if the start was never seen)
func (p *Player) FinishTrail(trail string, seconds float64) TrailProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trails == nil {
		p.trails = make(map[string]TrailProgress)
	}
	t := p.trails[trail]
	started := t
	t.Started = false
	t.LastTime = seconds
	p.trails[trail] = t
	return started
}
