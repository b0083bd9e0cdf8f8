package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	authorized map[model.IdentityID]struct{}
	operators  map[model.IdentityID]model.Operator
	times      map[model.TimeID]model.TimeRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		authorized: make(map[model.IdentityID]struct{}),
		operators:  make(map[model.IdentityID]model.Operator),
		times:      make(map[model.TimeID]model.TimeRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// Allow-list operations

func (s *Storage) GetAuthorizedIDs(ctx context.Context) ([]model.IdentityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.IdentityID, 0, len(s.authorized))
	for id := range s.authorized {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Storage) AddAuthorizedID(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorized[id] = struct{}{}
	return nil
}

func (s *Storage) RemoveAuthorizedID(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.authorized, id)
	return nil
}

// Operator operations

func (s *Storage) SaveOperator(ctx context.Context, op *model.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators[op.ID] = *op
	return nil
}

func (s *Storage) GetOperator(ctx context.Context, id model.IdentityID) (*model.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.operators[id]
	if !ok {
		return nil, model.ErrOperatorNotFound
	}
	return &op, nil
}

// Time record operations

func (s *Storage) SaveTime(ctx context.Context, rec *model.TimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times[rec.ID] = *rec
	return nil
}

func (s *Storage) GetTime(ctx context.Context, id model.TimeID) (*model.TimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.times[id]
	if !ok {
		return nil, model.ErrTimeNotFound
	}
	return &rec, nil
}

func (s *Storage) SetTimeVerified(ctx context.Context, id model.TimeID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.times[id]
	if !ok {
		return model.ErrTimeNotFound
	}
	rec.Verified = true
	rec.VerifiedAt = at
	s.times[id] = rec
	return nil
}

func (s *Storage) SetTimeIgnored(ctx context.Context, id model.TimeID, ignored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.times[id]
	if !ok {
		return model.ErrTimeNotFound
	}
	rec.Ignored = ignored
	s.times[id] = rec
	return nil
}

// Leaderboard and listing queries

func (s *Storage) GetLeaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error) {
	return storage.RankLeaderboard(s.allTimes(), trail, limit), nil
}

func (s *Storage) GetRecentTimes(ctx context.Context, limit int) ([]model.TimeRecord, error) {
	return storage.SortRecent(s.allTimes(), limit), nil
}

func (s *Storage) GetTrails(ctx context.Context) ([]string, error) {
	return s.distinct(func(rec model.TimeRecord) string { return rec.TrailName }), nil
}

func (s *Storage) GetWorlds(ctx context.Context) ([]string, error) {
	return s.distinct(func(rec model.TimeRecord) string { return rec.WorldName }), nil
}

func (s *Storage) allTimes() []model.TimeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]model.TimeRecord, 0, len(s.times))
	for _, rec := range s.times {
		recs = append(recs, rec)
	}
	return recs
}

func (s *Storage) distinct(field func(model.TimeRecord) string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, rec := range s.times {
		v := field(rec)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
