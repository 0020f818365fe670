package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/padraicbc/matchapi/models"
)

// Tx is the set of writes a booking needs, bound to one open transaction.
type Tx interface {
	// LockEligibleSessions row-locks the eligible subset of ids until the
	// transaction ends and returns it ordered by id.
	LockEligibleSessions(ctx context.Context, ids []int64, now time.Time) ([]models.Session, error)
	// InsertBooking stores b and sets its ID.
	InsertBooking(ctx context.Context, b *models.Booking) error
	// InsertBookingSessions stores the price-snapshot links.
	InsertBookingSessions(ctx context.Context, links []*models.BookingSession) error
	// ReserveSeat takes one seat on a session if it is still eligible and not
	// full, flipping it to booked when it fills. It reports whether a seat was taken.
	ReserveSeat(ctx context.Context, sessionID int64, now time.Time) (bool, error)
}

type bunTx struct {
	tx bun.Tx
}

func (t *bunTx) LockEligibleSessions(ctx context.Context, ids []int64, now time.Time) ([]models.Session, error) {
	sessions := []models.Session{}
	if len(ids) == 0 {
		return sessions, nil
	}
	q := t.tx.NewSelect().
		Model(&sessions).
		Where("s.id IN (?)", bun.In(ids))
	err := eligible(q, now).
		OrderExpr("s.id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock sessions: %w", err)
	}
	return sessions, nil
}

func (t *bunTx) InsertBooking(ctx context.Context, b *models.Booking) error {
	if _, err := t.tx.NewInsert().Model(b).Exec(ctx); err != nil {
		if isBookingNumberConflict(err) {
			return ErrDuplicateBookingNumber
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (t *bunTx) InsertBookingSessions(ctx context.Context, links []*models.BookingSession) error {
	if len(links) == 0 {
		return nil
	}
	if _, err := t.tx.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("insert booking sessions: %w", err)
	}
	return nil
}

func (t *bunTx) ReserveSeat(ctx context.Context, sessionID int64, now time.Time) (bool, error) {
	// SET expressions read the pre-update row, hence the +1 in the CASE.
	res, err := t.tx.NewUpdate().
		TableExpr("sessions").
		Set("current_participants = current_participants + 1").
		Set("status = CASE WHEN current_participants + 1 >= max_participants THEN ? ELSE status END", models.SessionBooked).
		Set("updated_at = ?", now).
		Where("id = ?", sessionID).
		Where("status = ?", models.SessionAvailable).
		Where("start_time > ?", now).
		Where("current_participants < max_participants").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("reserve seat on session %d: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve seat on session %d: %w", sessionID, err)
	}
	return n == 1, nil
}

func isBookingNumberConflict(err error) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Field('C') == "23505" && strings.Contains(pgErr.Field('n'), "booking_number")
}

// GetBooking returns a booking with its linked sessions and their trainers.
func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	err := s.db.NewSelect().
		Model(booking).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}

	links := []*models.BookingSession{}
	err = s.db.NewSelect().
		Model(&links).
		Relation("Session").
		Relation("Session.Trainer").
		Where("bs.booking_id = ?", id).
		OrderExpr("bs.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booking sessions: %w", err)
	}
	booking.Sessions = links

	return booking, nil
}
