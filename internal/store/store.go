package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lithic/internal/config"
)

// ErrLocked indicates another process holds the store lock.
var ErrLocked = errors.New("store is locked by another process")

const recordColumns = "id, source_path, operation, input_media_type, output_media_type, input_bytes, output_bytes, passthrough, detail_json, created_at"

// Store persists processed-asset records backed by SQLite. A file lock
// beside the database keeps concurrent lithic invocations from interleaving
// schema changes.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the asset database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StoreDir, "lithic.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.StoreDir, "assets.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
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
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the database connection and releases the store lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// RecordOperation inserts a record for a completed pipeline stage. Records
// without an ID are assigned one; CreatedAt is always stamped here.
func (s *Store) RecordOperation(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	if !record.Operation.Valid() {
		return fmt.Errorf("unknown operation %q", record.Operation)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO asset_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		nullableString(record.SourcePath),
		string(record.Operation),
		nullableString(record.InputMediaType),
		nullableString(record.OutputMediaType),
		record.InputBytes,
		record.OutputBytes,
		boolToInt(record.Passthrough),
		nullableString(record.DetailJSON),
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetByID fetches a record by identifier. Missing records return nil.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM asset_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// Recent returns the newest records, most recent first. A limit <= 0
// returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM asset_records ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// ByOperation returns records for one pipeline stage, most recent first.
func (s *Store) ByOperation(ctx context.Context, op Operation, limit int) ([]*Record, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	query := `SELECT ` + recordColumns + ` FROM asset_records WHERE operation = ? ORDER BY created_at DESC, id`
	args := []any{string(op)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// Summary aggregates per-operation totals across all records.
func (s *Store) Summary(ctx context.Context) ([]OperationCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT operation, COUNT(1), COALESCE(SUM(input_bytes), 0), COALESCE(SUM(output_bytes), 0)
         FROM asset_records GROUP BY operation ORDER BY operation`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var counts []OperationCount
	for rows.Next() {
		var entry OperationCount
		var op string
		if err := rows.Scan(&op, &entry.Count, &entry.InputBytes, &entry.OutputBytes); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		entry.Operation = Operation(op)
		counts = append(counts, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return counts, nil
}

// Clear removes all records and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM asset_records`)
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          string
		sourcePath  sql.NullString
		operation   string
		inputType   sql.NullString
		outputType  sql.NullString
		inputBytes  int64
		outputBytes int64
		passthrough sql.NullInt64
		detail      sql.NullString
		createdRaw  string
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&operation,
		&inputType,
		&outputType,
		&inputBytes,
		&outputBytes,
		&passthrough,
		&detail,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	created, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &Record{
		ID:              id,
		SourcePath:      sourcePath.String,
		Operation:       Operation(operation),
		InputMediaType:  inputType.String,
		OutputMediaType: outputType.String,
		InputBytes:      inputBytes,
		OutputBytes:     outputBytes,
		Passthrough:     passthrough.Int64 != 0,
		DetailJSON:      detail.String,
		CreatedAt:       created,
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
