package records

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nohumanman/descenders-modding/internal/dependencies/clock"
	"github.com/nohumanman/descenders-modding/internal/dependencies/random"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/notify"
	"github.com/nohumanman/descenders-modding/internal/storage"
)

const timeIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// List sizes used when the caller does not ask for one
const (
	DefaultLeaderboardSize = 10
	DefaultRecentTimes     = 50
	MaxListSize            = 500
)

// Service manages recorded runs and their moderation state
type Service struct {
	storage  storage.Storage
	notifier notify.Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// New creates a new records Service
func New(
	storage storage.Storage,
	notifier notify.Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		notifier: notifier,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "records-service")),
	}
}

// Get retrieves a time record by ID
func (s *Service) Get(ctx context.Context, id model.TimeID) (*model.TimeRecord, error) {
	return s.storage.GetTime(ctx, id)
}

// Submit stores a finished run, assigning an ID and submission time when
// the caller left them empty
func (s *Service) Submit(ctx context.Context, rec *model.TimeRecord) (*model.TimeRecord, error) {
	if rec.ID == "" {
		rec.ID = model.TimeID(s.random.String(16, timeIDAlphabet))
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = s.clock.Now()
	}
	rec.TrailName = strings.TrimSpace(rec.TrailName)

	if err := s.storage.SaveTime(ctx, rec); err != nil {
		s.logger.Error("failed to save time",
			slog.String("time_id", string(rec.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("time submitted",
		slog.String("time_id", string(rec.ID)),
		slog.String("player_id", string(rec.PlayerID)),
		slog.String("trail", rec.TrailName),
		slog.Float64("total_time", rec.TotalTime),
	)
	return rec, nil
}

// Verify marks a run as verified and announces it. A failed announcement is
// logged; the verification still stands.
func (s *Service) Verify(ctx context.Context, id model.TimeID) (*model.TimeRecord, error) {
	if err := s.storage.SetTimeVerified(ctx, id, s.clock.Now()); err != nil {
		return nil, err
	}

	rec, err := s.storage.GetTime(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyTimeVerified(ctx, rec); err != nil {
		s.logger.Warn("failed to announce verified time",
			slog.String("time_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("time verified", slog.String("time_id", string(id)))
	return rec, nil
}

// SetIgnored hides or restores a run on the leaderboards. Ignored runs
// remain readable by ID and in the recent list.
func (s *Service) SetIgnored(ctx context.Context, id model.TimeID, ignored bool) (*model.TimeRecord, error) {
	if err := s.storage.SetTimeIgnored(ctx, id, ignored); err != nil {
		return nil, err
	}

	s.logger.Info("time ignore flag set",
		slog.String("time_id", string(id)),
		slog.Bool("ignored", ignored),
	)
	return s.storage.GetTime(ctx, id)
}

// Leaderboard returns each player's best non-ignored run on a trail, fastest
// first
func (s *Service) Leaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error) {
	trail = strings.TrimSpace(trail)
	if trail == "" {
		return nil, model.ErrTrailRequired
	}
	return s.storage.GetLeaderboard(ctx, trail, clampLimit(limit, DefaultLeaderboardSize))
}

// Recent returns the latest submitted runs, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]model.TimeRecord, error) {
	return s.storage.GetRecentTimes(ctx, clampLimit(limit, DefaultRecentTimes))
}

// Trails lists the trails that have at least one run
func (s *Service) Trails(ctx context.Context) ([]string, error) {
	return s.storage.GetTrails(ctx)
}

// Worlds lists the worlds that have at least one run
func (s *Service) Worlds(ctx context.Context) ([]string, error) {
	return s.storage.GetWorlds(ctx)
}

func clampLimit(limit, def int) int {
	switch {
	case limit <= 0:
		return def
	case limit > MaxListSize:
		return MaxListSize
	default:
		return limit
	}
}
