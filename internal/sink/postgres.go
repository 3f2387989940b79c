package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

const createRecordsTable = `CREATE TABLE IF NOT EXISTS weather_records (
    id         uuid PRIMARY KEY,
    ts         timestamptz NOT NULL,
    units      text NOT NULL,
    hardware   text NOT NULL DEFAULT '',
    vals       jsonb NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
)`

const insertRecord = `INSERT INTO weather_records (id, ts, units, hardware, vals)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores records in the weather_records table.
type PostgresSink struct {
	db   execer
	pool *pgxpool.Pool
}

// NewPostgresSink connects to databaseURL and makes sure the table exists.
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createRecordsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create weather_records: %w", err)
	}
	return &PostgresSink{db: pool, pool: pool}, nil
}

func (p *PostgresSink) Name() string {
	return "postgres"
}

func (p *PostgresSink) Publish(ctx context.Context, rec weather.Record) error {
	vals, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("serialize values: %w", err)
	}
	_, err = p.db.Exec(ctx, insertRecord, rec.ID, rec.Timestamp, string(rec.Units), rec.Hardware, vals)
	return err
}

func (p *PostgresSink) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
