// Package store reads and writes population records in Postgres.
//
// The table layout is fixed:
//
//	id          bigserial primary key   (load order)
//	year        integer  not null
//	state       text     not null
//	state_code  text     not null
//	population  bigint   not null
//
// Load returns the same *core.Dataset the CSV loader does, so the rest of
// the program does not care where the records came from.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImportTimeout bounds a whole Import, including the COPY.
// Can be overridden for testing or large files.
var ImportTimeout = 5 * time.Minute

// Columns are the data columns in COPY order.
var Columns = []string{"year", "state", "state_code", "population"}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Open creates a connection pool from cfg and pings it within
// cfg.ConnectTimeout.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Load reads every row of table in insertion order. An empty table is a
// DataLoadError of kind LoadEmpty, like an empty CSV.
func Load(ctx context.Context, q Querier, table string) (*core.Dataset, error) {
	source := "postgres:" + table

	rows, err := q.Query(ctx, selectSQL(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.PopulationRecord, error) {
		var r core.PopulationRecord
		err := row.Scan(&r.Year, &r.StateName, &r.StateCode, &r.Population)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	ds, err := core.NewDataset(source, records)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset loaded", "source", source, "records", ds.Len(), "years", len(ds.Years()))
	return ds, nil
}

// ImportOptions controls Import.
type ImportOptions struct {
	// Replace truncates the table before copying.
	Replace bool
}

// Import creates table if needed and copies every record of ds into it in
// one transaction. It returns the number of rows copied.
func Import(ctx context.Context, db Beginner, table string, ds *core.Dataset, opts ImportOptions) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ImportTimeout)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, createTableSQL(table)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	if opts.Replace {
		if _, err := tx.Exec(ctx, truncateSQL(table)); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	n, err := tx.CopyFrom(ctx, tableIdent(table), Columns, pgx.CopyFromRows(copyRows(ds.Records())))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("import timed out after %v: %w", ImportTimeout, err)
		}
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.Info("dataset imported", "table", table, "rows", n, "replace", opts.Replace, "source", ds.Source())
	return n, nil
}

// tableIdent splits a possibly schema-qualified name such as
// census.us_population into its quoted parts.
func tableIdent(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id bigserial PRIMARY KEY,
	year integer NOT NULL,
	state text NOT NULL,
	state_code text NOT NULL,
	population bigint NOT NULL CHECK (population >= 0)
)`, tableIdent(table).Sanitize())
}

func truncateSQL(table string) string {
	return "TRUNCATE " + tableIdent(table).Sanitize()
}

func selectSQL(table string) string {
	return "SELECT year, state, state_code, population FROM " + tableIdent(table).Sanitize() + " ORDER BY id"
}

// copyRows converts records to COPY rows in Columns order.
func copyRows(records []core.PopulationRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{int32(r.Year), r.StateName, r.StateCode, r.Population}
	}
	return rows
}
