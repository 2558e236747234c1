package proposaldb

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS proposals (
    id              TEXT PRIMARY KEY,
    spot_id_1       TEXT NOT NULL,
    spot_id_2       TEXT NOT NULL,
    pair_key        TEXT NOT NULL,
    status          TEXT NOT NULL,
    proposer        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    distance_meters REAL NOT NULL DEFAULT 0,
    name_similarity REAL NOT NULL DEFAULT 0,
    confidence      INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,
    decided_by      TEXT,
    decided_at      INTEGER,
    decision_reason TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_pending_pair
    ON proposals(pair_key) WHERE status = 'pending';

CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status);

CREATE TABLE IF NOT EXISTS proposal_votes (
    proposal_id TEXT NOT NULL,
    voter       TEXT NOT NULL,
    choice      TEXT NOT NULL,
    PRIMARY KEY (proposal_id, voter)
);

CREATE TABLE IF NOT EXISTS redirects (
    from_id    TEXT PRIMARY KEY,
    to_id      TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS merge_history (
    id            TEXT PRIMARY KEY,
    proposal_id   TEXT NOT NULL DEFAULT '',
    survivor_id   TEXT NOT NULL,
    absorbed_id   TEXT NOT NULL,
    survivor_json TEXT NOT NULL,
    absorbed_json TEXT NOT NULL,
    result_json   TEXT NOT NULL,
    merged_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS spots (
    id                TEXT PRIMARY KEY,
    lat               REAL,
    lon               REAL,
    origin_label      TEXT NOT NULL DEFAULT '',
    destination_label TEXT NOT NULL DEFAULT '',
    ratings_json      TEXT NOT NULL DEFAULT '',
    review_count      INTEGER NOT NULL DEFAULT 0,
    description       TEXT NOT NULL DEFAULT '',
    photo_url         TEXT NOT NULL DEFAULT '',
    checkin_count     INTEGER NOT NULL DEFAULT 0,
    created_at        INTEGER NOT NULL DEFAULT 0,
    last_used_at      INTEGER NOT NULL DEFAULT 0,
    verified          INTEGER NOT NULL DEFAULT 0,
    region            TEXT NOT NULL DEFAULT '',
    source            TEXT NOT NULL DEFAULT ''
);
`

// Client wraps the SQLite database holding proposals, votes, redirects,
// merge history, and (optionally) the spot collection itself.
type Client struct {
	DB     *sql.DB
	config Config
	logger *slog.Logger
}

// NewClient opens (or creates) the database at config.DBPath and applies the
// schema. With config.verbose set, statement-level activity is logged to
// stderr.
func NewClient(config Config) (*Client, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if config.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", config.DBPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", config.DBPath, err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent workflow mutations.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Debug("database ready", "path", config.DBPath, "env", config.Env.String())

	return &Client{DB: db, config: config, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}
