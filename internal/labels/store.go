package labels

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"podium/internal/speech"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with another version are refused.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists label cells in SQLite. Every write is durable when the
// call returns; there is no separate flush step.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the label database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("label store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create label store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func encodeValue(v Value) (sql.NullInt64, sql.NullString, error) {
	switch v.Kind {
	case ValueInt:
		return sql.NullInt64{Int64: v.Int, Valid: true}, sql.NullString{}, nil
	case ValueText:
		return sql.NullInt64{}, sql.NullString{String: v.Text, Valid: true}, nil
	default:
		return sql.NullInt64{}, sql.NullString{}, fmt.Errorf("invalid value kind %d", v.Kind)
	}
}

func decodeValue(i sql.NullInt64, t sql.NullString) (Value, error) {
	switch {
	case i.Valid && !t.Valid:
		return Value{Kind: ValueInt, Int: i.Int64}, nil
	case t.Valid && !i.Valid:
		return Value{Kind: ValueText, Text: t.String}, nil
	default:
		return Value{}, errors.New("cell holds no usable value")
	}
}

// Get returns the cell for (key, column), reporting presence separately
// from errors. An absent cell is not an error.
func (s *Store) Get(ctx context.Context, key speech.Key, column string) (Value, bool, error) {
	var (
		i sql.NullInt64
		t sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT int_value, text_value FROM labels WHERE year = ? AND category = ? AND column_name = ?",
		key.Year, key.Category, column,
	).Scan(&i, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, false, nil
	}
	if err != nil {
		return Value{}, false, fmt.Errorf("get cell %s/%s: %w", key, column, err)
	}
	value, err := decodeValue(i, t)
	if err != nil {
		return Value{}, false, fmt.Errorf("decode cell %s/%s: %w", key, column, err)
	}
	return value, true, nil
}

// ColumnValues returns every present cell in the column, keyed by label key.
func (s *Store) ColumnValues(ctx context.Context, column string) (map[speech.Key]Value, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year, category, int_value, text_value FROM labels WHERE column_name = ?",
		column,
	)
	if err != nil {
		return nil, fmt.Errorf("query column %s: %w", column, err)
	}
	defer rows.Close()

	values := make(map[speech.Key]Value)
	for rows.Next() {
		var (
			key speech.Key
			i   sql.NullInt64
			t   sql.NullString
		)
		if err := rows.Scan(&key.Year, &key.Category, &i, &t); err != nil {
			return nil, fmt.Errorf("scan column %s: %w", column, err)
		}
		value, err := decodeValue(i, t)
		if err != nil {
			return nil, fmt.Errorf("decode cell %s/%s: %w", key, column, err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column %s: %w", column, err)
	}
	return values, nil
}

// Row returns every present cell for a key, keyed by column name.
func (s *Store) Row(ctx context.Context, key speech.Key) (map[string]Value, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT column_name, int_value, text_value FROM labels WHERE year = ? AND category = ?",
		key.Year, key.Category,
	)
	if err != nil {
		return nil, fmt.Errorf("query row %s: %w", key, err)
	}
	defer rows.Close()

	cells := make(map[string]Value)
	for rows.Next() {
		var (
			column string
			i      sql.NullInt64
			t      sql.NullString
		)
		if err := rows.Scan(&column, &i, &t); err != nil {
			return nil, fmt.Errorf("scan row %s: %w", key, err)
		}
		value, err := decodeValue(i, t)
		if err != nil {
			return nil, fmt.Errorf("decode cell %s/%s: %w", key, column, err)
		}
		cells[column] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate row %s: %w", key, err)
	}
	return cells, nil
}

// All returns the complete store contents as key -> column -> value.
func (s *Store) All(ctx context.Context) (map[speech.Key]map[string]Value, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year, category, column_name, int_value, text_value FROM labels",
	)
	if err != nil {
		return nil, fmt.Errorf("query all cells: %w", err)
	}
	defer rows.Close()

	all := make(map[speech.Key]map[string]Value)
	for rows.Next() {
		var (
			key    speech.Key
			column string
			i      sql.NullInt64
			t      sql.NullString
		)
		if err := rows.Scan(&key.Year, &key.Category, &column, &i, &t); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		value, err := decodeValue(i, t)
		if err != nil {
			return nil, fmt.Errorf("decode cell %s/%s: %w", key, column, err)
		}
		if all[key] == nil {
			all[key] = make(map[string]Value)
		}
		all[key][column] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}
	return all, nil
}

// ColumnCounts returns the number of present cells per column.
func (s *Store) ColumnCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT column_name, COUNT(1) FROM labels GROUP BY column_name",
	)
	if err != nil {
		return nil, fmt.Errorf("count columns: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			column string
			count  int
		)
		if err := rows.Scan(&column, &count); err != nil {
			return nil, fmt.Errorf("scan column count: %w", err)
		}
		counts[column] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column counts: %w", err)
	}
	return counts, nil
}

// MergeColumn writes each (key, value) into the column only where the
// existing cell is absent. Present cells are left untouched. The whole
// batch commits in one transaction; on error nothing is written. Returns
// the number of cells actually inserted.
func (s *Store) MergeColumn(ctx context.Context, column string, values map[speech.Key]Value) (int, error) {
	if column == "" {
		return 0, errors.New("column name is empty")
	}
	if len(values) == 0 {
		return 0, nil
	}

	keys := make([]speech.Key, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].Year != keys[b].Year {
			return keys[a].Year < keys[b].Year
		}
		return keys[a].Category < keys[b].Category
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	merged := 0
	for _, key := range keys {
		i, t, err := encodeValue(values[key])
		if err != nil {
			return 0, fmt.Errorf("encode cell %s/%s: %w", key, column, err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO labels (year, category, column_name, int_value, text_value, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (year, category, column_name) DO NOTHING`,
			key.Year, key.Category, column, i, t, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("merge cell %s/%s: %w", key, column, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("merge cell %s/%s: %w", key, column, err)
		}
		merged += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}
	return merged, nil
}

// SetCell unconditionally overwrites one cell, bypassing the merge-only
// rule. Reserved for targeted re-labeling.
func (s *Store) SetCell(ctx context.Context, key speech.Key, column string, value Value) error {
	if column == "" {
		return errors.New("column name is empty")
	}
	i, t, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode cell %s/%s: %w", key, column, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO labels (year, category, column_name, int_value, text_value, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (year, category, column_name) DO UPDATE SET
             int_value = excluded.int_value,
             text_value = excluded.text_value,
             updated_at = excluded.updated_at`,
		key.Year, key.Category, column, i, t, now, now,
	)
	if err != nil {
		return fmt.Errorf("set cell %s/%s: %w", key, column, err)
	}
	return nil
}
