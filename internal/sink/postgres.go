// Package sink persists dissected records.
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

const schema = `CREATE TABLE IF NOT EXISTS dissect_records (
	id         SERIAL PRIMARY KEY,
	source     TEXT NOT NULL,
	line_no    INTEGER NOT NULL,
	rule       TEXT NOT NULL,
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const insertRecord = `INSERT INTO dissect_records(source, line_no, rule, fields, created_at) VALUES ($1,$2,$3,$4,$5)`

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Postgres writes records to the dissect_records table.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewPostgres(db *sql.DB, logger *zap.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *Postgres) InitSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Write inserts records in a single transaction. Either all records are
// stored or none are.
func (p *Postgres) Write(ctx context.Context, records []tt.Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	createdAt := p.now()
	for _, r := range records {
		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encode fields of %s:%d: %w", r.Source, r.Line, err)
		}
		if _, err := stmt.ExecContext(ctx, r.Source, r.Line, r.Rule, string(fields), createdAt); err != nil {
			return fmt.Errorf("insert %s:%d: %w", r.Source, r.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if p.logger != nil {
		p.logger.Debug("records stored", zap.Int("count", len(records)))
	}
	return nil
}
