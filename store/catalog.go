package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/matchapi/models"
)

// AvailableSessions returns one page of eligible sessions matching f, ordered
// by start time, together with the total number of matches.
func (s *Store) AvailableSessions(ctx context.Context, f SessionFilter, now time.Time, limit, offset int) ([]models.Session, int, error) {
	sessions := []models.Session{}
	q := s.db.NewSelect().
		Model(&sessions).
		Relation("Trainer")
	q = f.apply(eligible(q, now))

	total, err := q.OrderExpr("s.start_time ASC, s.id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// GetSession returns one session with its trainer, whatever its status.
func (s *Store) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	session := &models.Session{}
	err := s.db.NewSelect().
		Model(session).
		Relation("Trainer").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

// ActiveTrainers returns all active trainers by name. A non-empty typ keeps
// only trainers specialised in it.
func (s *Store) ActiveTrainers(ctx context.Context, typ models.SessionType) ([]models.Trainer, error) {
	trainers := []models.Trainer{}
	q := s.db.NewSelect().
		Model(&trainers).
		Where("t.is_active = TRUE").
		OrderExpr("t.name ASC, t.id ASC")
	if typ != "" {
		q = q.Where("? = ANY(t.specializations)", string(typ))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	return trainers, nil
}

// ExistingSessionIDs returns which of ids exist, in any status.
func (s *Store) ExistingSessionIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := []int64{}
	if len(ids) == 0 {
		return found, nil
	}
	err := s.db.NewSelect().
		Model((*models.Session)(nil)).
		Column("s.id").
		Where("s.id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, fmt.Errorf("check sessions: %w", err)
	}
	return found, nil
}

// EligibleSessions returns the subset of ids that is eligible at now, with
// trainers, ordered by start time then id. It takes no locks.
func (s *Store) EligibleSessions(ctx context.Context, ids []int64, now time.Time) ([]models.Session, error) {
	sessions := []models.Session{}
	if len(ids) == 0 {
		return sessions, nil
	}
	q := s.db.NewSelect().
		Model(&sessions).
		Relation("Trainer").
		Where("s.id IN (?)", bun.In(ids))
	err := eligible(q, now).
		OrderExpr("s.start_time ASC, s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("eligible sessions: %w", err)
	}
	return sessions, nil
}
