// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/storage"
	"github.com/nohumanman/descenders-modding/internal/storage/sqlite/migrations"
)

// Storage persists the allow-list, operators and time records in SQLite
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}

// Open opens a SQLite database at path and applies embedded migrations
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Allow-list operations

func (s *Storage) GetAuthorizedIDs(ctx context.Context) ([]model.IdentityID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identity_id FROM authorized_identities ORDER BY identity_id`)
	if err != nil {
		return nil, fmt.Errorf("query authorized identities: %w", err)
	}
	defer rows.Close()

	var ids []model.IdentityID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan authorized identity: %w", err)
		}
		ids = append(ids, model.IdentityID(id))
	}
	return ids, rows.Err()
}

func (s *Storage) AddAuthorizedID(ctx context.Context, id model.IdentityID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO authorized_identities (identity_id, added_at) VALUES (?, ?)`,
		string(id), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("add authorized identity: %w", err)
	}
	return nil
}

func (s *Storage) RemoveAuthorizedID(ctx context.Context, id model.IdentityID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM authorized_identities WHERE identity_id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("remove authorized identity: %w", err)
	}
	return nil
}

// Operator operations

func (s *Storage) SaveOperator(ctx context.Context, op *model.Operator) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operators (identity_id, username, email, steam_id, last_login_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (identity_id) DO UPDATE SET
		   username = excluded.username,
		   email = excluded.email,
		   steam_id = excluded.steam_id,
		   last_login_at = excluded.last_login_at`,
		string(op.ID), op.Username, op.Email, op.SteamID, toMillis(op.LastLoginAt),
	)
	if err != nil {
		return fmt.Errorf("save operator: %w", err)
	}
	return nil
}

func (s *Storage) GetOperator(ctx context.Context, id model.IdentityID) (*model.Operator, error) {
	var (
		op        model.Operator
		rawID     string
		lastLogin int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT identity_id, username, email, steam_id, last_login_at
		 FROM operators WHERE identity_id = ?`, string(id),
	).Scan(&rawID, &op.Username, &op.Email, &op.SteamID, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}
	op.ID = model.IdentityID(rawID)
	op.LastLoginAt = fromMillis(lastLogin)
	return &op, nil
}

// Time record operations

func (s *Storage) SaveTime(ctx context.Context, rec *model.TimeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO times (
		   time_id, player_id, player_name, trail_name, world_name, total_time,
		   bike_type, starting_speed, version, ignored, verified, submitted_at, verified_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (time_id) DO UPDATE SET
		   player_id = excluded.player_id,
		   player_name = excluded.player_name,
		   trail_name = excluded.trail_name,
		   world_name = excluded.world_name,
		   total_time = excluded.total_time,
		   bike_type = excluded.bike_type,
		   starting_speed = excluded.starting_speed,
		   version = excluded.version,
		   ignored = excluded.ignored,
		   verified = excluded.verified,
		   submitted_at = excluded.submitted_at,
		   verified_at = excluded.verified_at`,
		string(rec.ID),
		string(rec.PlayerID),
		rec.PlayerName,
		rec.TrailName,
		rec.WorldName,
		rec.TotalTime,
		string(rec.BikeType),
		rec.StartingSpeed,
		rec.Version,
		rec.Ignored,
		rec.Verified,
		toMillis(rec.SubmittedAt),
		toMillis(rec.VerifiedAt),
	)
	if err != nil {
		return fmt.Errorf("save time: %w", err)
	}
	return nil
}

const timeColumns = `time_id, player_id, player_name, trail_name, world_name, total_time,
        bike_type, starting_speed, version, ignored, verified, submitted_at, verified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTime(row rowScanner) (*model.TimeRecord, error) {
	var (
		rec                     model.TimeRecord
		rawID, playerID, bike   string
		submittedAt, verifiedAt int64
	)
	if err := row.Scan(
		&rawID,
		&playerID,
		&rec.PlayerName,
		&rec.TrailName,
		&rec.WorldName,
		&rec.TotalTime,
		&bike,
		&rec.StartingSpeed,
		&rec.Version,
		&rec.Ignored,
		&rec.Verified,
		&submittedAt,
		&verifiedAt,
	); err != nil {
		return nil, err
	}
	rec.ID = model.TimeID(rawID)
	rec.PlayerID = model.PlayerID(playerID)
	rec.BikeType = model.BikeType(bike)
	rec.SubmittedAt = fromMillis(submittedAt)
	rec.VerifiedAt = fromMillis(verifiedAt)
	return &rec, nil
}

func (s *Storage) GetTime(ctx context.Context, id model.TimeID) (*model.TimeRecord, error) {
	rec, err := scanTime(s.db.QueryRowContext(ctx,
		`SELECT `+timeColumns+` FROM times WHERE time_id = ?`, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTimeNotFound
		}
		return nil, fmt.Errorf("get time: %w", err)
	}
	return rec, nil
}

func (s *Storage) SetTimeVerified(ctx context.Context, id model.TimeID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE times SET verified = 1, verified_at = ? WHERE time_id = ?`,
		toMillis(at), string(id))
	if err != nil {
		return fmt.Errorf("verify time: %w", err)
	}
	return requireRow(res, model.ErrTimeNotFound)
}

func (s *Storage) SetTimeIgnored(ctx context.Context, id model.TimeID, ignored bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE times SET ignored = ? WHERE time_id = ?`, ignored, string(id))
	if err != nil {
		return fmt.Errorf("ignore time: %w", err)
	}
	return requireRow(res, model.ErrTimeNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Leaderboard and listing queries

// sqlLimit maps "no limit" onto SQLite's LIMIT -1
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (s *Storage) GetLeaderboard(ctx context.Context, trail string, limit int) ([]model.TimeRecord, error) {
	return s.queryTimes(ctx, "leaderboard",
		`SELECT `+timeColumns+` FROM (
		   SELECT *, ROW_NUMBER() OVER (
		     PARTITION BY player_id ORDER BY total_time, submitted_at, time_id
		   ) AS rank_in_player
		   FROM times WHERE trail_name = ? AND ignored = 0
		 )
		 WHERE rank_in_player = 1
		 ORDER BY total_time, submitted_at, time_id
		 LIMIT ?`,
		trail, sqlLimit(limit),
	)
}

func (s *Storage) GetRecentTimes(ctx context.Context, limit int) ([]model.TimeRecord, error) {
	return s.queryTimes(ctx, "recent times",
		`SELECT `+timeColumns+` FROM times
		 ORDER BY submitted_at DESC, time_id DESC
		 LIMIT ?`,
		sqlLimit(limit),
	)
}

func (s *Storage) GetTrails(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "trails",
		`SELECT DISTINCT trail_name FROM times WHERE trail_name <> '' ORDER BY trail_name`)
}

func (s *Storage) GetWorlds(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "worlds",
		`SELECT DISTINCT world_name FROM times WHERE world_name <> '' ORDER BY world_name`)
}

func (s *Storage) queryTimes(ctx context.Context, what, query string, args ...any) ([]model.TimeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	recs := []model.TimeRecord{}
	for rows.Next() {
		rec, err := scanTime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (s *Storage) queryStrings(ctx context.Context, what, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
