// Package persistence stores the broadcast journal and the host clock in
// SQLite.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/almanac/internal/herald"
	"github.com/talgya/almanac/internal/sampler"
)

// Meta keys.
const (
	MetaFullTime = "full_time"
	MetaSavedAt  = "saved_at"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS broadcasts (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		from_key TEXT NOT NULL,
		key TEXT NOT NULL,
		message TEXT NOT NULL,
		sent INTEGER NOT NULL,
		at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_broadcasts_at ON broadcasts(at_ms);
	CREATE INDEX IF NOT EXISTS idx_broadcasts_category ON broadcasts(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Broadcast is one journaled transition.
type Broadcast struct {
	ID       string           `json:"id"`
	Tick     uint64           `json:"tick"`
	Category sampler.Category `json:"category"`
	From     string           `json:"from"`
	Key      string           `json:"key"`
	Message  string           `json:"message"`
	Sent     bool             `json:"sent"`
	At       time.Time        `json:"at"`
}

type broadcastRow struct {
	ID       string `db:"id"`
	Tick     int64  `db:"tick"`
	Category string `db:"category"`
	FromKey  string `db:"from_key"`
	Key      string `db:"key"`
	Message  string `db:"message"`
	Sent     bool   `db:"sent"`
	AtMS     int64  `db:"at_ms"`
}

// SaveBroadcasts appends transitions to the journal.
func (db *DB) SaveBroadcasts(ts []herald.Transition) error {
	if len(ts) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range ts {
		_, err := tx.NamedExec(`INSERT INTO broadcasts
			(id, tick, category, from_key, key, message, sent, at_ms)
			VALUES (:id, :tick, :category, :from_key, :key, :message, :sent, :at_ms)`,
			broadcastRow{
				ID:       uuid.NewString(),
				Tick:     int64(t.Tick),
				Category: string(t.Category),
				FromKey:  t.From,
				Key:      t.Key,
				Message:  t.Message,
				Sent:     t.Sent,
				AtMS:     t.At.UnixMilli(),
			})
		if err != nil {
			return fmt.Errorf("insert broadcast %s/%s: %w", t.Category, t.Key, err)
		}
	}

	return tx.Commit()
}

// RecentBroadcasts returns the most recent N journal entries, newest first.
func (db *DB) RecentBroadcasts(limit int) ([]Broadcast, error) {
	var rows []broadcastRow
	err := db.conn.Select(&rows,
		"SELECT id, tick, category, from_key, key, message, sent, at_ms FROM broadcasts ORDER BY at_ms DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	out := make([]Broadcast, 0, len(rows))
	for _, r := range rows {
		out = append(out, Broadcast{
			ID:       r.ID,
			Tick:     uint64(r.Tick),
			Category: sampler.Category(r.Category),
			From:     r.FromKey,
			Key:      r.Key,
			Message:  r.Message,
			Sent:     r.Sent,
			At:       time.UnixMilli(r.AtMS),
		})
	}
	return out, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveClock stores the host world's full tick counter.
func (db *DB) SaveClock(fullTime uint64) error {
	if err := db.SaveMeta(MetaFullTime, strconv.FormatUint(fullTime, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(MetaSavedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Debug("clock saved", "full_time", fullTime)
	return nil
}

// LoadClock returns the saved full tick counter, or false when none was saved.
func (db *DB) LoadClock() (uint64, bool, error) {
	v, err := db.GetMeta(MetaFullTime)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load clock: %w", err)
	}
	full, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("load clock: %w", err)
	}
	return full, true, nil
}
