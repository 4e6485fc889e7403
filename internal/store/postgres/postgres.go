// Package postgres implements internal/store.Store against a Postgres
// database via pgx, in the style of the reference repo's
// internal/repo/postgres package: one file per aggregate, every statement
// wrapped in observe() for Prometheus DB metrics.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nullpulse/sentinel/internal/observability"
)

type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func New(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{pool: pool, prom: prom}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}
