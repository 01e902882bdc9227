package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	version_id  TEXT PRIMARY KEY,
	tick        INTEGER NOT NULL,
	payload     BLOB NOT NULL,
	hash        TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	seq           INTEGER PRIMARY KEY,
	tick          INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	dimension     TEXT,
	motion        TEXT,
	delta         REAL NOT NULL DEFAULT 0,
	snapshot_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events_archive (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id      TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	tick          INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	dimension     TEXT,
	motion        TEXT,
	delta         REAL NOT NULL DEFAULT 0,
	snapshot_hash TEXT NOT NULL,
	archived_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_archive_batch ON events_archive(batch_id);
`

// #endregion schema

// ErrNoSnapshot is returned by LatestSnapshot when none has been saved.
var ErrNoSnapshot = errors.New("no snapshot stored")

// #region store-struct

// Store persists snapshots and the event journal in SQLite. The engine
// itself performs no I/O; the store is the persistence collaborator used by
// the API server and the offline tools.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region snapshots

// SaveSnapshot persists an encoded snapshot under a fresh version id.
func (s *Store) SaveSnapshot(snap field.Snapshot) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO snapshots (version_id, tick, payload, hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, int64(snap.Tick), snap.Encode(), snap.Hash(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recently saved snapshot and its version
// id. Ordering is by rowid: insertion order is exact, while the RFC3339Nano
// created_at strings are not (a fractional part that prefixes another sorts
// wrong lexicographically).
func (s *Store) LatestSnapshot() (field.Snapshot, string, error) {
	var id string
	var payload []byte
	err := s.db.QueryRow(
		`SELECT version_id, payload FROM snapshots ORDER BY rowid DESC LIMIT 1`,
	).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return field.Snapshot{}, "", ErrNoSnapshot
	}
	if err != nil {
		return field.Snapshot{}, "", fmt.Errorf("latest snapshot: %w", err)
	}
	snap, err := field.DecodeSnapshot(payload)
	if err != nil {
		return field.Snapshot{}, "", fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, id, nil
}

// GetSnapshot retrieves a specific snapshot by version id.
func (s *Store) GetSnapshot(id string) (field.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE version_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return field.Snapshot{}, &field.NotFoundError{Kind: "snapshot", Name: id}
	}
	if err != nil {
		return field.Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return field.DecodeSnapshot(payload)
}

// #endregion snapshots

// #region journal

// AppendEvent persists one journal event.
func (s *Store) AppendEvent(ev journal.Event) error {
	_, err := s.db.Exec(
		`INSERT INTO events (seq, tick, kind, dimension, motion, delta, snapshot_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(ev.Seq), int64(ev.Tick), string(ev.Kind),
		nullIfEmpty(ev.Dimension), nullIfEmpty(ev.Motion),
		ev.Delta, ev.SnapshotHash,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event %d: %w", ev.Seq, err)
	}
	return nil
}

// LoadJournal returns every live event ordered by sequence number.
func (s *Store) LoadJournal() ([]journal.Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, tick, kind, dimension, motion, delta, snapshot_hash
		 FROM events ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var ev journal.Event
		var seq, tick int64
		var kind string
		var dimension, motionName sql.NullString
		if err := rows.Scan(&seq, &tick, &kind, &dimension, &motionName, &ev.Delta, &ev.SnapshotHash); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Seq = uint64(seq)
		ev.Tick = uint64(tick)
		ev.Kind = journal.Kind(kind)
		if dimension.Valid {
			ev.Dimension = dimension.String
		}
		if motionName.Valid {
			ev.Motion = motionName.String
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ReplaceJournal atomically swaps the live journal for a new sequence,
// used after a successful replay against a modified log.
func (s *Store) ReplaceJournal(events []journal.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, ev := range events {
		_, err := tx.Exec(
			`INSERT INTO events (seq, tick, kind, dimension, motion, delta, snapshot_hash, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(ev.Seq), int64(ev.Tick), string(ev.Kind),
			nullIfEmpty(ev.Dimension), nullIfEmpty(ev.Motion),
			ev.Delta, ev.SnapshotHash, now,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", ev.Seq, err)
		}
	}
	return tx.Commit()
}

// ArchiveJournal moves the given events into the archive under a fresh
// batch id and clears the live journal, all in one transaction.
func (s *Store) ArchiveJournal(events []journal.Event) (string, error) {
	batchID := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		_, err := tx.Exec(
			`INSERT INTO events_archive (batch_id, seq, tick, kind, dimension, motion, delta, snapshot_hash, archived_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, int64(ev.Seq), int64(ev.Tick), string(ev.Kind),
			nullIfEmpty(ev.Dimension), nullIfEmpty(ev.Motion),
			ev.Delta, ev.SnapshotHash, now,
		)
		if err != nil {
			return "", fmt.Errorf("archive event %d: %w", ev.Seq, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return "", fmt.Errorf("clear journal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return batchID, nil
}

// #endregion journal

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
