// Package booking prices and reserves sessions. A booking either reserves
// every requested session or nothing.
package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/events"
	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
	"github.com/padraicbc/matchapi/validation"
)

// maxNumberAttempts bounds retries after a booking number collision.
const maxNumberAttempts = 5

const publishTimeout = 5 * time.Second

var (
	// ErrSessionsUnavailable means at least one requested session is not
	// available, already started, or full. Nothing was reserved.
	ErrSessionsUnavailable = errors.New("one or more sessions are not available")

	// ErrCreateFailed wraps unexpected persistence failures. Nothing was reserved.
	ErrCreateFailed = errors.New("failed to create booking")
)

// Repository is the storage the engine needs.
type Repository interface {
	ExistingSessionIDs(ctx context.Context, ids []int64) ([]int64, error)
	EligibleSessions(ctx context.Context, ids []int64, now time.Time) ([]models.Session, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error
}

// Request is a customer's booking submission.
type Request struct {
	CustomerName  string  `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string  `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone string  `json:"customer_phone" validate:"required,max=20,phone"`
	SessionIDs    []int64 `json:"session_ids" validate:"required,min=1,dive,gt=0"`
	TermsAccepted bool    `json:"terms_accepted" validate:"accepted"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

// QuoteRequest asks for the price of a set of sessions.
type QuoteRequest struct {
	SessionIDs []int64 `json:"session_ids" validate:"required,min=1,dive,gt=0"`
}

// QuoteLine is one priced session in a Quote.
type QuoteLine struct {
	ID              int64
	Type            models.SessionType
	Trainer         string
	StartTime       time.Time
	DurationMinutes int
	Price           decimal.Decimal
}

// Quote prices the eligible subset of the requested sessions.
type Quote struct {
	Total     decimal.Decimal
	Breakdown []QuoteLine
}

// Count is the number of sessions priced.
func (q *Quote) Count() int {
	return len(q.Breakdown)
}

// Engine creates bookings and prices session selections.
type Engine struct {
	repo      Repository
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
	newNumber func() (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNumberGenerator replaces NewNumber.
func WithNumberGenerator(fn func() (string, error)) Option {
	return func(e *Engine) { e.newNumber = fn }
}

// NewEngine returns an Engine over repo. A nil publisher drops events.
func NewEngine(repo Repository, pub events.Publisher, log *zap.Logger, opts ...Option) *Engine {
	if pub == nil {
		pub = events.Noop{}
	}
	e := &Engine{
		repo:      repo,
		events:    pub,
		log:       log,
		now:       time.Now,
		newNumber: NewNumber,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateBooking reserves one seat on every requested session and records
// the booking, or reserves nothing. The returned booking carries its
// sessions with trainers.
func (e *Engine) CreateBooking(ctx context.Context, req Request) (*models.Booking, error) {
	if !req.TermsAccepted {
		return nil, validation.Errors{"terms_accepted": {"The terms accepted field must be accepted."}}
	}
	ids := distinct(req.SessionIDs)
	if len(ids) == 0 {
		return nil, validation.Errors{"session_ids": {"The session ids field is required."}}
	}
	if err := e.requireExisting(ctx, req.SessionIDs); err != nil {
		return nil, err
	}

	now := e.now()
	var (
		b   *models.Booking
		err error
	)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		b, err = e.reserve(ctx, req, ids, now)
		if !errors.Is(err, store.ErrDuplicateBookingNumber) {
			break
		}
		e.log.Warn("booking number collision", zap.Int("attempt", attempt))
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrSessionsUnavailable):
		e.log.Info("booking rejected",
			zap.Int64s("session_ids", ids),
			zap.String("reason", err.Error()),
		)
		return nil, err
	default:
		e.log.Error("booking failed",
			zap.Int64s("session_ids", ids),
			zap.String("customer_email", req.CustomerEmail),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	e.log.Info("booking confirmed",
		zap.Int64("booking_id", b.ID),
		zap.String("booking_number", b.BookingNumber),
		zap.String("total_amount", b.TotalAmount.StringFixed(2)),
		zap.Int("sessions", len(ids)),
	)

	full, err := e.repo.GetBooking(ctx, b.ID)
	if err != nil {
		e.log.Warn("reload booking", zap.Int64("booking_id", b.ID), zap.Error(err))
		full = b
	}
	e.publish(ctx, full)

	return full, nil
}

// reserve runs one booking attempt in a single transaction.
func (e *Engine) reserve(ctx context.Context, req Request, ids []int64, now time.Time) (*models.Booking, error) {
	number, err := e.newNumber()
	if err != nil {
		return nil, fmt.Errorf("generate booking number: %w", err)
	}

	var created *models.Booking
	err = e.repo.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		sessions, err := tx.LockEligibleSessions(ctx, ids, now)
		if err != nil {
			return err
		}
		if len(sessions) != len(ids) {
			return ErrSessionsUnavailable
		}

		total := decimal.Zero
		for _, s := range sessions {
			total = total.Add(s.Price)
		}

		b := &models.Booking{
			BookingNumber:    number,
			CustomerName:     req.CustomerName,
			CustomerEmail:    req.CustomerEmail,
			CustomerPhone:    req.CustomerPhone,
			SelectedSessions: ids,
			TotalAmount:      total,
			Status:           models.BookingConfirmed,
			Notes:            req.Notes,
			TermsAccepted:    req.TermsAccepted,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}

		links := make([]*models.BookingSession, 0, len(sessions))
		for i := range sessions {
			links = append(links, &models.BookingSession{
				BookingID: b.ID,
				SessionID: sessions[i].ID,
				PricePaid: sessions[i].Price,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := tx.InsertBookingSessions(ctx, links); err != nil {
			return err
		}

		for i := range sessions {
			ok, err := tx.ReserveSeat(ctx, sessions[i].ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return ErrSessionsUnavailable
			}
			links[i].Session = &sessions[i]
		}

		b.Sessions = links
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Engine) publish(ctx context.Context, b *models.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.events.BookingConfirmed(ctx, b); err != nil {
		e.log.Warn("publish booking event",
			zap.String("booking_number", b.BookingNumber),
			zap.Error(err),
		)
	}
}

// Quote prices the eligible subset of ids without reserving anything.
// Ineligible sessions are left out rather than reported.
func (e *Engine) Quote(ctx context.Context, ids []int64) (*Quote, error) {
	unique := distinct(ids)
	if len(unique) == 0 {
		return nil, validation.Errors{"session_ids": {"The session ids field is required."}}
	}
	if err := e.requireExisting(ctx, ids); err != nil {
		return nil, err
	}

	sessions, err := e.repo.EligibleSessions(ctx, unique, e.now())
	if err != nil {
		return nil, err
	}

	q := &Quote{Total: decimal.Zero, Breakdown: make([]QuoteLine, 0, len(sessions))}
	for _, s := range sessions {
		line := QuoteLine{
			ID:              s.ID,
			Type:            s.Type,
			StartTime:       s.StartTime,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
		if s.Trainer != nil {
			line.Trainer = s.Trainer.Name
		}
		q.Breakdown = append(q.Breakdown, line)
		q.Total = q.Total.Add(s.Price)
	}
	return q, nil
}

// GetBooking returns a booking with its sessions and trainers.
func (e *Engine) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := e.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", id, err)
	}
	return b, nil
}

// requireExisting reports every id that names no session, keyed by its
// position in the request.
func (e *Engine) requireExisting(ctx context.Context, ids []int64) error {
	found, err := e.repo.ExistingSessionIDs(ctx, distinct(ids))
	if err != nil {
		return err
	}

	verrs := validation.Errors{}
	for i, id := range ids {
		if !slices.Contains(found, id) {
			key := "session_ids." + strconv.Itoa(i)
			verrs.Add(key, fmt.Sprintf("The selected %s is invalid.", key))
		}
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// distinct drops repeated ids, keeping first occurrences in order.
func distinct(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
