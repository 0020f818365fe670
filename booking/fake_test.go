package booking

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
)

// memRepo is an in-memory Repository. Transactions run one at a time on a
// copy of the data that replaces the original only on success.
type memRepo struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
	trainers map[int64]*models.Trainer
	bookings []*models.Booking
	links    []*models.BookingSession

	failLinks error
	txCount   int
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: map[int64]models.Session{},
		trainers: map[int64]*models.Trainer{},
	}
}

func (r *memRepo) addTrainer(t *models.Trainer) {
	r.trainers[t.ID] = t
}

func (r *memRepo) addSession(s models.Session) {
	r.sessions[s.ID] = s
}

func (r *memRepo) session(id int64) models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *memRepo) setPrice(id int64, price string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	s.Price = decimal.RequireFromString(price)
	r.sessions[id] = s
}

func (r *memRepo) bookingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *memRepo) linksFor(sessionID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.links {
		if l.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (r *memRepo) ExistingSessionIDs(_ context.Context, ids []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int64{}
	for _, id := range ids {
		if _, ok := r.sessions[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memRepo) EligibleSessions(_ context.Context, ids []int64, now time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Session{}
	for _, id := range ids {
		s, ok := r.sessions[id]
		if !ok || !s.Eligible(now) {
			continue
		}
		s.Trainer = r.trainers[s.TrainerID]
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b models.Session) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *memRepo) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID != id {
			continue
		}
		out := *b
		out.Sessions = nil
		for _, l := range r.links {
			if l.BookingID != id {
				continue
			}
			link := *l
			s := r.sessions[l.SessionID]
			s.Trainer = r.trainers[s.TrainerID]
			link.Session = &s
			out.Sessions = append(out.Sessions, &link)
		}
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (r *memRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCount++

	tx := &memTx{
		repo:     r,
		sessions: make(map[int64]models.Session, len(r.sessions)),
		bookings: slices.Clone(r.bookings),
		links:    slices.Clone(r.links),
	}
	for id, s := range r.sessions {
		tx.sessions[id] = s
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.sessions = tx.sessions
	r.bookings = tx.bookings
	r.links = tx.links
	return nil
}

type memTx struct {
	repo     *memRepo
	sessions map[int64]models.Session
	bookings []*models.Booking
	links    []*models.BookingSession
}

func (t *memTx) LockEligibleSessions(_ context.Context, ids []int64, now time.Time) ([]models.Session, error) {
	out := []models.Session{}
	for _, id := range ids {
		if s, ok := t.sessions[id]; ok && s.Eligible(now) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.Session) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (t *memTx) InsertBooking(_ context.Context, b *models.Booking) error {
	for _, existing := range t.bookings {
		if existing.BookingNumber == b.BookingNumber {
			return store.ErrDuplicateBookingNumber
		}
	}
	b.ID = int64(len(t.bookings) + 1)
	stored := *b
	t.bookings = append(t.bookings, &stored)
	return nil
}

func (t *memTx) InsertBookingSessions(_ context.Context, links []*models.BookingSession) error {
	if t.repo.failLinks != nil {
		return t.repo.failLinks
	}
	for _, l := range links {
		stored := *l
		stored.ID = int64(len(t.links) + 1)
		t.links = append(t.links, &stored)
	}
	return nil
}

func (t *memTx) ReserveSeat(_ context.Context, sessionID int64, now time.Time) (bool, error) {
	s, ok := t.sessions[sessionID]
	if !ok {
		return false, errors.New("no such session")
	}
	if !s.Eligible(now) || !s.Reserve() {
		return false, nil
	}
	s.UpdatedAt = now
	t.sessions[sessionID] = s
	return true, nil
}

// recordingPublisher captures published bookings.
type recordingPublisher struct {
	mu  sync.Mutex
	got []string
	err error
}

func (p *recordingPublisher) BookingConfirmed(_ context.Context, b *models.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, b.BookingNumber)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.got)
}
