// Package store is the data-access layer over PostgreSQL. Reads run directly
// against the pool; booking writes go through InTx, which hands out a Tx that
// is committed when the callback returns nil and rolled back otherwise.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/padraicbc/matchapi/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateBookingNumber is returned when a generated booking number
	// collides with an existing one. The surrounding transaction is aborted.
	ErrDuplicateBookingNumber = errors.New("duplicate booking number")
)

// Store reads and writes trainers, sessions and bookings.
type Store struct {
	db *bun.DB
}

// New returns a Store backed by db.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SessionFilter narrows the available-session listing. Zero values mean "no filter".
type SessionFilter struct {
	Type      models.SessionType
	TrainerID int64
	// From is inclusive, Until exclusive; both bound start_time.
	From     time.Time
	Until    time.Time
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

func (f SessionFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.Type != "" {
		q = q.Where("s.type = ?", f.Type)
	}
	if f.TrainerID > 0 {
		q = q.Where("s.trainer_id = ?", f.TrainerID)
	}
	if !f.From.IsZero() {
		q = q.Where("s.start_time >= ?", f.From)
	}
	if !f.Until.IsZero() {
		q = q.Where("s.start_time < ?", f.Until)
	}
	if f.MinPrice != nil {
		q = q.Where("s.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("s.price <= ?", *f.MaxPrice)
	}
	return q
}

// eligible restricts q to sessions that can be offered or reserved at now.
func eligible(q *bun.SelectQuery, now time.Time) *bun.SelectQuery {
	return q.Where("s.status = ?", models.SessionAvailable).
		Where("s.start_time > ?", now)
}

// InTx runs fn inside a database transaction. The transaction commits only if
// fn returns nil; any error or panic rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &bunTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true

	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
