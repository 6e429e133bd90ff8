package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/jameshartig/energyreport/pkg/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite stores settings and reports in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path, creating it and applying migrations
// when needed.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite only allows one writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func runMigrations(path string) error {
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// GetSettings implements Database.
func (s *SQLite) GetSettings(ctx context.Context) (types.Settings, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DefaultSettings(), nil
	}
	if err != nil {
		return types.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings types.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return types.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings.WithDefaults(), nil
}

// SetSettings implements Database.
func (s *SQLite) SetSettings(ctx context.Context, settings types.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to set settings: %w", err)
	}
	return nil
}

// InsertReport implements Database.
func (s *SQLite) InsertReport(ctx context.Context, r types.ReportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (
			id, generated_at, dashboard, period, start_date, end_date,
			location, language, metrics, estimated_consumption_kwh, untracked_kwh
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.GeneratedAt.UnixMilli(),
		r.Dashboard,
		string(r.Period),
		r.StartDate.Format(time.DateOnly),
		r.EndDate.Format(time.DateOnly),
		r.Location,
		r.Language,
		r.Metrics,
		r.EstimatedConsumptionKWH,
		r.UntrackedKWH,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReportHistory implements Database.
func (s *SQLite) GetReportHistory(ctx context.Context, start, end time.Time) ([]types.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, dashboard, period, start_date, end_date,
			location, language, metrics, estimated_consumption_kwh, untracked_kwh
		FROM reports
		WHERE generated_at >= ? AND generated_at < ?
		ORDER BY generated_at ASC`,
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var records []types.ReportRecord
	for rows.Next() {
		var (
			r                  types.ReportRecord
			generatedAt        int64
			period             string
			startDate, endDate string
		)
		if err := rows.Scan(
			&r.ID, &generatedAt, &r.Dashboard, &period, &startDate, &endDate,
			&r.Location, &r.Language, &r.Metrics, &r.EstimatedConsumptionKWH, &r.UntrackedKWH,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r.GeneratedAt = time.UnixMilli(generatedAt).UTC()
		r.Period = types.Period(period)
		if r.StartDate, err = time.Parse(time.DateOnly, startDate); err != nil {
			return nil, fmt.Errorf("invalid start date for report %s: %w", r.ID, err)
		}
		if r.EndDate, err = time.Parse(time.DateOnly, endDate); err != nil {
			return nil, fmt.Errorf("invalid end date for report %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return records, nil
}

// Close implements Database.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
