package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"filament-inventory-api/internal/model"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/exp/slog"
)

// MySQLFilamentRepository implements FilamentRepository using MySQL.
type MySQLFilamentRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewMySQLFilamentRepository creates a new MySQL filament repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLFilamentRepository(dsn string, log *slog.Logger) (*MySQLFilamentRepository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Report matched rows, so an update that changes nothing is not a miss.
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure MySQL: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log = log.With(slog.String("component", "mysql_repository"))
	log.Info("initialized", slog.String("addr", cfg.Addr), slog.String("db", cfg.DBName))
	return &MySQLFilamentRepository{db: db, log: log}, nil
}

func createMySQLTables(ctx context.Context, db *sql.DB) error {
	// MySQL rejects multi-statement Exec unless multiStatements is set.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS filaments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			brand VARCHAR(255) NOT NULL,
			color VARCHAR(255) NOT NULL,
			type VARCHAR(255) NOT NULL,
			material VARCHAR(255) NOT NULL,
			amount DOUBLE NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_filaments_brand_color (brand, color)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const mysqlColumns = "id, brand, color, `type`, material, amount, created_at, updated_at"

// List returns every filament ordered by brand, then color.
func (r *MySQLFilamentRepository) List(ctx context.Context) ([]model.Filament, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mysqlColumns+` FROM filaments ORDER BY brand ASC, color ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list filaments: %w", err)
	}
	defer rows.Close()

	filaments := []model.Filament{}
	for rows.Next() {
		f, err := scanFilament(rows)
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
func (r *MySQLFilamentRepository) Get(ctx context.Context, id int64) (*model.Filament, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mysqlColumns+` FROM filaments WHERE id = ?`, id)
	f, err := scanFilament(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get filament %d: %w", id, err)
	}
	return f, nil
}

// Create inserts a filament and reads it back.
func (r *MySQLFilamentRepository) Create(ctx context.Context, d model.Draft, at time.Time) (*model.Filament, error) {
	ts := at.UTC()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO filaments (brand, color, `type`, material, amount, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		d.Brand, d.Color, d.Type, d.Material, d.Amount, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert filament: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	r.log.Debug("created filament", slog.Int64("id", id))
	return r.Get(ctx, id)
}

// Update overwrites the editable fields of id and reads it back.
func (r *MySQLFilamentRepository) Update(ctx context.Context, id int64, d model.Draft, at time.Time) (*model.Filament, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE filaments SET brand = ?, color = ?, `type` = ?, material = ?, amount = ?, updated_at = GREATEST(created_at, ?) WHERE id = ?",
		d.Brand, d.Color, d.Type, d.Material, d.Amount, at.UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update filament %d: %w", id, err)
	}
	if err := rowsAffected(result.RowsAffected()); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete removes id.
func (r *MySQLFilamentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM filaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete filament %d: %w", id, err)
	}
	return rowsAffected(result.RowsAffected())
}

// GetStats returns statistics about the filament table.
func (r *MySQLFilamentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	var total sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), SUM(amount) FROM filaments").Scan(&count, &total); err != nil {
		return nil, err
	}
	stats["total_filaments"] = count
	stats["total_spools"] = total.Float64

	var lastUpdate sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM filaments").Scan(&lastUpdate); err == nil && lastUpdate.Valid {
		stats["last_update"] = lastUpdate.Time
	}

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Ping checks the connection.
func (r *MySQLFilamentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (r *MySQLFilamentRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLFilamentRepository implements FilamentRepository
var _ FilamentRepository = (*MySQLFilamentRepository)(nil)
