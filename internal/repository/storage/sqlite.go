package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	host_id    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'waiting',
	created_at DATETIME NOT NULL,
	started_at DATETIME
);

CREATE TABLE IF NOT EXISTS slots (
	room_id   TEXT NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
	conn_id   TEXT NOT NULL,
	color     TEXT NOT NULL,
	ready     BOOLEAN NOT NULL DEFAULT 0,
	joined_at DATETIME NOT NULL,
	PRIMARY KEY (room_id, conn_id)
);

CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms (status, created_at);
`

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// foreign keys are enabled per connection, so the pragma goes into the DSN.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

func (that *SQLiteStorage) Init(ctx context.Context) error {
	_, err := that.Connection.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
