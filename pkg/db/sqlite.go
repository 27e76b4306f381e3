package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// TimeFormat is how timestamps are stored. Fixed width UTC so that text
// comparison in SQL matches time order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

// Open opens the SQLite database at path and applies pending migrations
func Open(path string, logger *logging.Logger) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if _, err := migrations.NewMigrator(db, migrations.Embedded(), logger).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return db, nil
}

// FormatTime renders t for storage
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime reads a stored timestamp. Older rows may use SQLite's default format.
func ParseTime(value string) (time.Time, error) {
	formats := []string{
		TimeFormat,
		time.RFC3339Nano,
		"2006-01-02 15:04:05", // SQLite default format
	}

	var parseErr error
	for _, format := range formats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", value, parseErr)
}

// ParseNullTime reads an optional stored timestamp
func ParseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := ParseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NullTime renders an optional time for storage
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}
