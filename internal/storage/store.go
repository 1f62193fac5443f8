package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	// Drivers selected at runtime through the database config section.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"busboard/internal/config"
	"busboard/internal/logging"
	"busboard/internal/logging/types"
	"busboard/pkg/models"
)

// tableNamePattern bounds what may be interpolated into DDL, since table
// names cannot be bound as query parameters.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store persists scraped records through database/sql. The driver is chosen
// by configuration: sqlite for local runs and tests, mysql in production.
type Store struct {
	db     *sql.DB
	logger types.Logger
}

// NewStore opens a database handle for the configured driver and DSN.
func NewStore(cfg *config.Config) (*Store, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db, logger: logging.GetGlobalLogger()}, nil
}

// NewStoreWithDB wraps an existing handle, used by tests.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, logger: logging.GetGlobalLogger()}
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace drops and recreates the table, then inserts all records inside a
// single transaction. Each run replaces the previous snapshot wholesale.
func (s *Store) Replace(ctx context.Context, table string, records []models.BusRecord) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	// Times and price are canonical strings; a numeric price column would
	// let sqlite's column affinity strip the 2-decimal form.
	createQuery := fmt.Sprintf(`CREATE TABLE %s (
		id INTEGER PRIMARY KEY,
		route VARCHAR(100),
		url VARCHAR(255),
		bus_id VARCHAR(255),
		bus_type VARCHAR(50),
		departure_time VARCHAR(8),
		duration VARCHAR(20),
		arrival_time VARCHAR(8),
		rating FLOAT,
		price VARCHAR(12),
		seats_available INT
	)`, table)
	if _, err := s.db.ExecContext(ctx, createQuery); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := fmt.Sprintf(`INSERT INTO %s
		(route, url, bus_id, bus_type, departure_time, duration, arrival_time, rating, price, seats_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Route,
			rec.URL,
			rec.BusName,
			rec.BusType,
			nullString(rec.DepartureTime),
			rec.Duration,
			nullString(rec.ArrivalTime),
			rec.Rating,
			rec.Price,
			rec.SeatsAvailable,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record for route %q: %w", rec.Route, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}

	s.logger.Info("Persisted scraped records", map[string]interface{}{
		"table":   table,
		"records": len(records),
	})
	return nil
}

// Records reads the whole table back as typed records, in insertion order.
func (s *Store) Records(ctx context.Context, table string) ([]models.BusRecord, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`SELECT route, url, bus_id, bus_type, departure_time,
		duration, arrival_time, rating, price, seats_available
		FROM %s ORDER BY id`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	var records []models.BusRecord
	for rows.Next() {
		var rec models.BusRecord
		var departure, arrival sql.NullString
		if err := rows.Scan(
			&rec.Route,
			&rec.URL,
			&rec.BusName,
			&rec.BusType,
			&departure,
			&rec.Duration,
			&arrival,
			&rec.Rating,
			&rec.Price,
			&rec.SeatsAvailable,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.DepartureTime = departure.String
		rec.ArrivalTime = arrival.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	return records, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
