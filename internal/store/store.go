package store

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/nova/internal/federation"
	"github.com/danielpatrickdp/nova/internal/generativity"
	"github.com/danielpatrickdp/nova/internal/governor"
	"github.com/danielpatrickdp/nova/internal/stability"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #endregion imports

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS cycle_snapshots (
	version_id      TEXT PRIMARY KEY,
	margin          REAL NOT NULL,
	hopf_distance   REAL NOT NULL,
	spectral_radius REAL NOT NULL,
	degraded        INTEGER NOT NULL DEFAULT 0,
	mode            TEXT NOT NULL,
	eta             REAL NOT NULL,
	frozen          INTEGER NOT NULL DEFAULT 0,
	g_star          REAL NOT NULL,
	progress        REAL NOT NULL,
	novelty         REAL NOT NULL,
	consistency     REAL NOT NULL,
	context         TEXT NOT NULL,
	peer_count      INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mode_transitions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	from_mode     TEXT NOT NULL,
	to_mode       TEXT NOT NULL,
	reason        TEXT,
	margin        REAL NOT NULL,
	hopf_distance REAL NOT NULL,
	eta           REAL NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES cycle_snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS peer_trust (
	endpoint             TEXT PRIMARY KEY,
	peer_id              TEXT,
	trust                REAL NOT NULL,
	consecutive_failures INTEGER NOT NULL DEFAULT 0,
	evicted              INTEGER NOT NULL DEFAULT 0,
	reported_g_star      REAL NOT NULL DEFAULT 0,
	last_seen            TEXT,
	updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id   TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	signals_json TEXT,
	decision     TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region records

// CycleRecord is one persisted governor cycle: the stability snapshot plus
// the governor and generativity state it produced.
type CycleRecord struct {
	VersionID string
	Snapshot  stability.Snapshot
	Governor  governor.State
	Gen       generativity.State
	PeerCount int
	CreatedAt time.Time
}

// TransitionRecord is one persisted mode transition with its trigger values.
type TransitionRecord struct {
	VersionID    string
	FromMode     governor.Mode
	ToMode       governor.Mode
	Reason       string
	Margin       float64
	HopfDistance float64
	Eta          float64
	CreatedAt    time.Time
}

// #endregion records

// #region store-struct

// Store persists cycle history, transitions, and peer trust in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
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

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region save-cycle

// NewVersionID mints a cycle version ID.
func NewVersionID() string {
	return uuid.New().String()
}

// SaveCycle inserts one completed cycle.
func (s *Store) SaveCycle(rec CycleRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO cycle_snapshots
		 (version_id, margin, hopf_distance, spectral_radius, degraded,
		  mode, eta, frozen, g_star, progress, novelty, consistency,
		  context, peer_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID,
		rec.Snapshot.Margin, rec.Snapshot.HopfDistance, rec.Snapshot.SpectralRadius, boolInt(rec.Snapshot.Degraded),
		string(rec.Governor.Mode), rec.Governor.Eta, boolInt(rec.Governor.Frozen),
		rec.Gen.GStar, rec.Gen.Progress, rec.Gen.Novelty, rec.Gen.Consistency,
		string(rec.Gen.Context), rec.PeerCount,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// #endregion save-cycle

// #region read-cycles

// GetCycle retrieves a specific cycle by version ID.
func (s *Store) GetCycle(versionID string) (CycleRecord, error) {
	row := s.db.QueryRow(
		`SELECT version_id, margin, hopf_distance, spectral_radius, degraded,
		        mode, eta, frozen, g_star, progress, novelty, consistency,
		        context, peer_count, created_at
		 FROM cycle_snapshots WHERE version_id = ?`, versionID,
	)
	rec, err := scanCycle(row)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("get cycle %s: %w", versionID, err)
	}
	return rec, nil
}

// RecentCycles returns the most recent cycles, newest first.
func (s *Store) RecentCycles(limit int) ([]CycleRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, margin, hopf_distance, spectral_radius, degraded,
		        mode, eta, frozen, g_star, progress, novelty, consistency,
		        context, peer_count, created_at
		 FROM cycle_snapshots ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (CycleRecord, error) {
	var rec CycleRecord
	var degraded, frozen int
	var mode, genCtx, createdStr string

	err := row.Scan(
		&rec.VersionID,
		&rec.Snapshot.Margin, &rec.Snapshot.HopfDistance, &rec.Snapshot.SpectralRadius, &degraded,
		&mode, &rec.Governor.Eta, &frozen,
		&rec.Gen.GStar, &rec.Gen.Progress, &rec.Gen.Novelty, &rec.Gen.Consistency,
		&genCtx, &rec.PeerCount, &createdStr,
	)
	if err != nil {
		return CycleRecord{}, err
	}
	rec.Snapshot.Degraded = degraded != 0
	rec.Governor.Mode = governor.Mode(mode)
	rec.Governor.Frozen = frozen != 0
	rec.Gen.Context = generativity.Context(genCtx)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.Snapshot.ComputedAt = rec.CreatedAt
	return rec, nil
}

// #endregion read-cycles

// #region transitions

// SaveTransition inserts one mode transition row.
func (s *Store) SaveTransition(rec TransitionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO mode_transitions
		 (version_id, from_mode, to_mode, reason, margin, hopf_distance, eta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, string(rec.FromMode), string(rec.ToMode), nullIfEmpty(rec.Reason),
		rec.Margin, rec.HopfDistance, rec.Eta,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// RecentTransitions returns the most recent mode transitions, newest first.
func (s *Store) RecentTransitions(limit int) ([]TransitionRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, from_mode, to_mode, reason, margin, hopf_distance, eta, created_at
		 FROM mode_transitions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var records []TransitionRecord
	for rows.Next() {
		var rec TransitionRecord
		var from, to, createdStr string
		var reason sql.NullString
		if err := rows.Scan(&rec.VersionID, &from, &to, &reason, &rec.Margin, &rec.HopfDistance, &rec.Eta, &createdStr); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.FromMode = governor.Mode(from)
		rec.ToMode = governor.Mode(to)
		if reason.Valid {
			rec.Reason = reason.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion transitions

// #region peer-trust

// UpsertPeer persists one peer trust row, keyed by endpoint. Historical
// trust survives process restarts the same way it survives eviction.
func (s *Store) UpsertPeer(rec federation.PeerRecord, now time.Time) error {
	var lastSeen any
	if !rec.LastSeen.IsZero() {
		lastSeen = rec.LastSeen.Format(time.RFC3339Nano)
	}
	_, err := s.db.Exec(
		`INSERT INTO peer_trust
		 (endpoint, peer_id, trust, consecutive_failures, evicted, reported_g_star, last_seen, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		   peer_id = excluded.peer_id,
		   trust = excluded.trust,
		   consecutive_failures = excluded.consecutive_failures,
		   evicted = excluded.evicted,
		   reported_g_star = excluded.reported_g_star,
		   last_seen = excluded.last_seen,
		   updated_at = excluded.updated_at`,
		rec.Endpoint, nullIfEmpty(rec.PeerID), rec.TrustScore, rec.ConsecutiveFailures,
		boolInt(rec.Evicted), rec.ReportedGStar, lastSeen,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert peer %s: %w", rec.Endpoint, err)
	}
	return nil
}

// Peers returns all persisted peer trust rows.
func (s *Store) Peers() ([]federation.PeerRecord, error) {
	rows, err := s.db.Query(
		`SELECT endpoint, peer_id, trust, consecutive_failures, evicted, reported_g_star, last_seen
		 FROM peer_trust ORDER BY endpoint`,
	)
	if err != nil {
		return nil, fmt.Errorf("list peers: %w", err)
	}
	defer rows.Close()

	var records []federation.PeerRecord
	for rows.Next() {
		var rec federation.PeerRecord
		var peerID, lastSeen sql.NullString
		var evicted int
		if err := rows.Scan(&rec.Endpoint, &peerID, &rec.TrustScore, &rec.ConsecutiveFailures, &evicted, &rec.ReportedGStar, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan peer: %w", err)
		}
		if peerID.Valid {
			rec.PeerID = peerID.String
		}
		rec.Evicted = evicted != 0
		if lastSeen.Valid {
			rec.LastSeen, _ = time.Parse(time.RFC3339Nano, lastSeen.String)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion peer-trust

// #region helpers

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
