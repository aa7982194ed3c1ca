package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"filament-inventory-api/internal/model"

	"golang.org/x/exp/slog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// sqliteTimeLayout is fixed-width so timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteFilamentRepository implements FilamentRepository using SQLite.
// Thread-safe with WAL mode for concurrent reads.
type SQLiteFilamentRepository struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *slog.Logger
}

// NewSQLiteFilamentRepository creates a new SQLite filament repository.
// dbPath is the path to the SQLite database file (e.g., "./data/filaments.db")
func NewSQLiteFilamentRepository(dbPath string, log *slog.Logger) (*SQLiteFilamentRepository, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log = log.With(slog.String("component", "sqlite_repository"))
	log.Info("initialized", slog.String("path", dbPath))
	return &SQLiteFilamentRepository{db: db, log: log}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS filaments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		brand TEXT NOT NULL,
		color TEXT NOT NULL,
		type TEXT NOT NULL,
		material TEXT NOT NULL,
		amount REAL NOT NULL DEFAULT 0 CHECK (amount >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_filaments_brand_color ON filaments(brand, color);
	`
	_, err := db.Exec(query)
	return err
}

const sqliteColumns = `id, brand, color, type, material, amount, created_at, updated_at`

func scanSQLiteFilament(row rowScanner) (*model.Filament, error) {
	var f model.Filament
	var createdAt, updatedAt string

	if err := row.Scan(&f.ID, &f.Brand, &f.Color, &f.Type, &f.Material, &f.Amount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if f.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if f.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &f, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// List returns every filament ordered by brand, then color.
func (r *SQLiteFilamentRepository) List(ctx context.Context) ([]model.Filament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM filaments ORDER BY brand ASC, color ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list filaments: %w", err)
	}
	defer rows.Close()

	filaments := []model.Filament{}
	for rows.Next() {
		f, err := scanSQLiteFilament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan filament: %w", err)
		}
		filaments = append(filaments, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list filaments: %w", err)
	}
	return filaments, nil
}

// Get returns one filament or ErrNotFound.
func (r *SQLiteFilamentRepository) Get(ctx context.Context, id int64) (*model.Filament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.get(ctx, id)
}

func (r *SQLiteFilamentRepository) get(ctx context.Context, id int64) (*model.Filament, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM filaments WHERE id = ?`, id)
	f, err := scanSQLiteFilament(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get filament %d: %w", id, err)
	}
	return f, nil
}

// Create inserts a filament stamped with at.
func (r *SQLiteFilamentRepository) Create(ctx context.Context, d model.Draft, at time.Time) (*model.Filament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := formatSQLiteTime(at)
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO filaments (brand, color, type, material, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Brand, d.Color, d.Type, d.Material, d.Amount, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert filament: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	r.log.Debug("created filament", slog.Int64("id", id))
	return r.get(ctx, id)
}

// Update overwrites the editable fields of id.
func (r *SQLiteFilamentRepository) Update(ctx context.Context, id int64, d model.Draft, at time.Time) (*model.Filament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `
		UPDATE filaments
		SET brand = ?, color = ?, type = ?, material = ?, amount = ?, updated_at = MAX(created_at, ?)
		WHERE id = ?`,
		d.Brand, d.Color, d.Type, d.Material, d.Amount, formatSQLiteTime(at), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update filament %d: %w", id, err)
	}
	if err := rowsAffected(result.RowsAffected()); err != nil {
		return nil, err
	}

	return r.get(ctx, id)
}

// Delete removes id.
func (r *SQLiteFilamentRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM filaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete filament %d: %w", id, err)
	}
	return rowsAffected(result.RowsAffected())
}

// GetStats returns statistics about the filament table.
func (r *SQLiteFilamentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	var total sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), SUM(amount) FROM filaments").Scan(&count, &total); err != nil {
		return nil, err
	}
	stats["total_filaments"] = count
	stats["total_spools"] = total.Float64

	var lastUpdate sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM filaments").Scan(&lastUpdate); err == nil && lastUpdate.Valid {
		stats["last_update"] = lastUpdate.String
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Ping checks the connection.
func (r *SQLiteFilamentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLiteFilamentRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteFilamentRepository implements FilamentRepository
var _ FilamentRepository = (*SQLiteFilamentRepository)(nil)
