// Package postgres implements storage.Store backed by PostgreSQL.
//
// Records live in a single table with a composite primary key
// (kind, record_id) that mirrors the key space used by the BBolt and
// in-memory backends. Payloads are stored as JSONB so ad-hoc reconciliation
// queries can reach into record fields.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salapa/vaultd/storage"
)

// Store implements storage.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// NewStore returns a Store backed by the given pgx connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewStoreFromDSN creates a connection pool from a DSN string, ensures the
// schema exists, and returns a new Store.
func NewStoreFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewStore(pool), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Put(kind, id string, data []byte) error {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO records (kind, record_id, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (kind, record_id) DO UPDATE SET payload = $3`,
		kind, id, data)
	return err
}

func (s *Store) Create(kind, id string, data []byte) error {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO records (kind, record_id, payload) VALUES ($1, $2, $3)`,
		kind, id, data)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s/%s: %w", kind, id, storage.ErrExists)
	}
	return err
}

func (s *Store) Get(kind, id string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(context.Background(),
		`SELECT payload FROM records WHERE kind = $1 AND record_id = $2`,
		kind, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Delete(kind, id string) error {
	tag, err := s.pool.Exec(context.Background(),
		`DELETE FROM records WHERE kind = $1 AND record_id = $2`,
		kind, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) List(kind string) ([]storage.Record, error) {
	rows, err := s.pool.Query(context.Background(),
		`SELECT record_id, payload FROM records WHERE kind = $1 ORDER BY inserted_at`,
		kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		var rec storage.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
