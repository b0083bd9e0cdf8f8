package storage

import (
	"context"
	"time"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Allow-list operations
	GetAuthorizedIDs(ctx context.Context) ([]model.IdentityID, error)
	AddAuthorizedID(ctx context.Context, id model.IdentityID) error
	RemoveAuthorizedID(ctx context.Context, id model.IdentityID) error

	// Operator operations
	SaveOperator(ctx context.Context, op *model.Operator) error
	GetOperator(ctx context.Context, id model.IdentityID) (*model.Operator, error)

	// Time record operations
	SaveTime(ctx context.Context, rec *model.TimeRecord) error
	GetTime(ctx context.Context, id model.TimeID) (*model.TimeRecord, error)
	SetTimeVerified(ctx context.Context, id model.TimeID, at time.Time) error
	SetTimeIgnored(ctx context.Context, id model.TimeID, ignored bool) error

	// Leaderboard and listing queries. A limit of zero or less means no limit.
	GetLeaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error)
	GetRecentTimes(ctx context.Context, limit int) ([]model.TimeRecord, error)
	GetTrails(ctx context.Context) ([]string, error)
	GetWorlds(ctx context.Context) ([]string, error)

	Close() error
}
