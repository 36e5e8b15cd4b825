// Package repository is the persistence layer. Ownership scoping lives
// in the queries themselves: scoped lookups match on the owning teacher
// id and report a cross-tenant miss as pgx.ErrNoRows, indistinguishable
// from a genuinely absent row.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate reports a unique-index violation (email, invite code).
var ErrDuplicate = errors.New("duplicate value")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
