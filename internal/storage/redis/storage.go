package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Allow-list operations

func (s *Storage) GetAuthorizedIDs(ctx context.Context) ([]model.IdentityID, error) {
	members, err := s.client.SMembers(ctx, allowListKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)

	ids := make([]model.IdentityID, len(members))
	for i, m := range members {
		ids[i] = model.IdentityID(m)
	}
	return ids, nil
}

func (s *Storage) AddAuthorizedID(ctx context.Context, id model.IdentityID) error {
	return s.client.SAdd(ctx, allowListKey(), string(id)).Err()
}

func (s *Storage) RemoveAuthorizedID(ctx context.Context, id model.IdentityID) error {
	return s.client.SRem(ctx, allowListKey(), string(id)).Err()
}

// Operator operations

func (s *Storage) SaveOperator(ctx context.Context, op *model.Operator) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, operatorKey(op.ID), data, 0).Err()
}

func (s *Storage) GetOperator(ctx context.Context, id model.IdentityID) (*model.Operator, error) {
	data, err := s.client.Get(ctx, operatorKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrOperatorNotFound
		}
		return nil, err
	}

	var op model.Operator
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Time record operations

func (s *Storage) SaveTime(ctx context.Context, rec *model.TimeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, timeKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, timesIndexKey(), redis.Z{
			Score:  float64(rec.SubmittedAt.UnixMilli()),
			Member: string(rec.ID),
		})
		if rec.TrailName != "" {
			pipe.SAdd(ctx, trailTimesKey(rec.TrailName), string(rec.ID))
			pipe.SAdd(ctx, trailsKey(), rec.TrailName)
		}
		if rec.WorldName != "" {
			pipe.SAdd(ctx, worldsKey(), rec.WorldName)
		}
		return nil
	})
	return err
}

func (s *Storage) GetTime(ctx context.Context, id model.TimeID) (*model.TimeRecord, error) {
	data, err := s.client.Get(ctx, timeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTimeNotFound
		}
		return nil, err
	}

	var rec model.TimeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) SetTimeVerified(ctx context.Context, id model.TimeID, at time.Time) error {
	return s.updateTime(ctx, id, func(rec *model.TimeRecord) {
		rec.Verified = true
		rec.VerifiedAt = at
	})
}

func (s *Storage) SetTimeIgnored(ctx context.Context, id model.TimeID, ignored bool) error {
	return s.updateTime(ctx, id, func(rec *model.TimeRecord) {
		rec.Ignored = ignored
	})
}

// updateTime applies fn to a stored record inside a WATCH transaction so
// concurrent updates to the same record are not lost
func (s *Storage) updateTime(ctx context.Context, id model.TimeID, fn func(rec *model.TimeRecord)) error {
	key := timeKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrTimeNotFound
			}
			return err
		}

		var rec model.TimeRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		fn(&rec)

		updated, err := json.Marshal(&rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// Leaderboard and listing queries

func (s *Storage) GetLeaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error) {
	ids, err := s.client.SMembers(ctx, trailTimesKey(trail)).Result()
	if err != nil {
		return nil, err
	}
	recs, err := s.loadTimes(ctx, ids)
	if err != nil {
		return nil, err
	}
	return storage.RankLeaderboard(recs, trail, limit), nil
}

func (s *Storage) GetRecentTimes(ctx context.Context, limit int) ([]model.TimeRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, timesIndexKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	recs, err := s.loadTimes(ctx, ids)
	if err != nil {
		return nil, err
	}
	return storage.SortRecent(recs, limit), nil
}

func (s *Storage) GetTrails(ctx context.Context) ([]string, error) {
	return s.sortedMembers(ctx, trailsKey())
}

func (s *Storage) GetWorlds(ctx context.Context) ([]string, error) {
	return s.sortedMembers(ctx, worldsKey())
}

func (s *Storage) sortedMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}

// loadTimes fetches records by id, skipping ids whose record is gone
func (s *Storage) loadTimes(ctx context.Context, ids []string) ([]model.TimeRecord, error) {
	if len(ids) == 0 {
		return []model.TimeRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = timeKey(model.TimeID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	recs := make([]model.TimeRecord, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var rec model.TimeRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
